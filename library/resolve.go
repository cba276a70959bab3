package library

import (
	stderrors "errors"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/dllbridge/errors"
)

// Resolve looks up the function called name in lib. Names with an embedded
// NUL byte are rejected before the loader sees them. Lookup failures carry
// the loader's diagnostic as the cause.
func Resolve(lib Library, name string) (Symbol, error) {
	if strings.IndexByte(name, 0) >= 0 {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Symbol(name).
			Detail("Invalid function name").
			Build()
	}

	sym, err := lib.Lookup(name)
	if err != nil {
		var berr *errors.Error
		if stderrors.As(err, &berr) {
			return nil, err
		}
		return nil, errors.NotFound(name, err)
	}

	Logger().Debug("symbol resolved", zap.String("name", name), zap.String("library", lib.Path()))
	return sym, nil
}
