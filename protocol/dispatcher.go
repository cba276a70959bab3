package protocol

import (
	"context"
	stderrors "errors"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/dllbridge/errors"
	"github.com/wippyai/dllbridge/invoke"
	"github.com/wippyai/dllbridge/library"
	"github.com/wippyai/dllbridge/signature"
)

// ErrorPrefix starts every error response.
const ErrorPrefix = "ERR "

// Resolver looks up functions by name. *library.Handle implements it.
type Resolver interface {
	Resolve(name string) (library.Symbol, error)
}

// Dispatcher turns request lines into responses
type Dispatcher struct {
	resolver Resolver
}

// NewDispatcher creates a dispatcher calling into the functions r resolves.
func NewDispatcher(r Resolver) *Dispatcher {
	return &Dispatcher{resolver: r}
}

// Handle processes one request line and returns the response line,
// including its terminator.
func (d *Dispatcher) Handle(ctx context.Context, line string) string {
	return FormatResponse(d.Dispatch(ctx, line))
}

// Dispatch processes one request line: it tokenizes the line, parses the
// signature, resolves the function and invokes it.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) (string, error) {
	req, err := ParseRequest(line)
	if err != nil {
		Logger().Debug("rejected request", zap.String("line", strings.TrimSpace(line)), zap.Error(err))
		return "", err
	}

	sig, err := signature.Parse(req.Signature)
	if err != nil {
		Logger().Debug("rejected signature", zap.String("function", req.Function), zap.Error(err))
		return "", err
	}
	Logger().Debug("using signature",
		zap.String("function", req.Function),
		zap.Stringer("signature", sig),
		zap.String("wit", sig.WIT()),
		zap.String("convention", sig.Convention))
	if len(req.Args) != sig.Arity() {
		Logger().Debug("argument count differs from signature",
			zap.String("function", req.Function),
			zap.Int("declared", sig.Arity()),
			zap.Int("supplied", len(req.Args)))
	}

	sym, err := d.resolver.Resolve(req.Function)
	if err != nil {
		Logger().Debug("resolve failed", zap.String("function", req.Function), zap.Error(err))
		return "", err
	}

	result, err := invoke.Invoke(ctx, sym, req.Args)
	if err != nil {
		Logger().Debug("invoke failed", zap.String("function", req.Function), zap.Error(err))
		return "", err
	}
	return result, nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// FormatResponse renders a result or an error as one response line.
func FormatResponse(result string, err error) string {
	if err != nil {
		return ErrorPrefix + lineBreaks.Replace(Message(err)) + "\n"
	}
	return result + "\n"
}

// Message returns the client-facing text of err.
func Message(err error) string {
	var berr *errors.Error
	if stderrors.As(err, &berr) {
		return berr.Message()
	}
	return err.Error()
}
