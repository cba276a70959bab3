package invoke

import (
	"context"
	"strconv"

	"github.com/wippyai/dllbridge/errors"
	"github.com/wippyai/dllbridge/library"
)

// ParseArgs parses every token as a base-10 int32.
func ParseArgs(tokens []string) ([]int32, error) {
	args := make([]int32, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return nil, errors.InvalidArgument(i, tok, err)
		}
		args[i] = int32(v)
	}
	return args, nil
}

// Invoke calls sym with the parsed tokens and returns the decimal result.
func Invoke(ctx context.Context, sym library.Symbol, tokens []string) (string, error) {
	args, err := ParseArgs(tokens)
	if err != nil {
		return "", err
	}

	result, err := sym.Call(ctx, args)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(int64(result), 10), nil
}
