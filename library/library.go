package library

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Kind identifies the backend a Library was loaded with
type Kind string

const (
	KindNative Kind = "native"
	KindWasm   Kind = "wasm"
)

// Library is a loaded code library with named entry points
type Library interface {
	// Path returns the filesystem path the library was loaded from.
	Path() string
	// Kind returns the backend serving the library.
	Kind() Kind
	// Lookup resolves an exported function by name.
	Lookup(name string) (Symbol, error)
	// Close unloads the library.
	Close(ctx context.Context) error
}

// Symbol is a resolved function that takes and returns 32-bit integers
type Symbol interface {
	Name() string
	// Call invokes the function with args in order. Native calls run to
	// completion regardless of ctx.
	Call(ctx context.Context, args []int32) (int32, error)
}

// KindForPath returns the backend Open would use for path.
func KindForPath(path string) Kind {
	if strings.EqualFold(filepath.Ext(path), ".wasm") {
		return KindWasm
	}
	return KindNative
}

// Open loads the library at path and returns the owning Handle.
func Open(ctx context.Context, path string) (*Handle, error) {
	var (
		lib Library
		err error
	)
	switch KindForPath(path) {
	case KindWasm:
		lib, err = OpenWasm(ctx, path)
	default:
		lib, err = OpenNative(path)
	}
	if err != nil {
		return nil, err
	}

	Logger().Info("library loaded",
		zap.String("path", lib.Path()),
		zap.String("kind", string(lib.Kind())))
	return NewHandle(lib), nil
}
