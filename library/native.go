package library

import (
	"context"

	"github.com/wippyai/dllbridge/ffi"
)

type nativeLibrary struct {
	lib *ffi.Library
}

// OpenNative loads a shared library (.so, .dylib, .dll).
func OpenNative(path string) (Library, error) {
	lib, err := ffi.Open(path)
	if err != nil {
		return nil, err
	}
	return &nativeLibrary{lib: lib}, nil
}

func (n *nativeLibrary) Path() string { return n.lib.Path() }

func (n *nativeLibrary) Kind() Kind { return KindNative }

func (n *nativeLibrary) Lookup(name string) (Symbol, error) {
	addr, err := n.lib.Lookup(name)
	if err != nil {
		return nil, err
	}
	return &NativeSymbol{name: name, addr: addr}, nil
}

func (n *nativeLibrary) Close(context.Context) error {
	return n.lib.Close()
}

// NativeSymbol is a function address inside a shared library
type NativeSymbol struct {
	name string
	addr uintptr
}

func (s *NativeSymbol) Name() string { return s.name }

// Address returns the resolved code address.
func (s *NativeSymbol) Address() uintptr { return s.addr }

// Call builds a call interface for len(args) integers and runs it.
func (s *NativeSymbol) Call(_ context.Context, args []int32) (int32, error) {
	ci, err := ffi.NewCallInterface(len(args))
	if err != nil {
		return 0, err
	}
	return ci.Call(s.addr, args)
}
