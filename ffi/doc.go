// Package ffi is the only place in the module that turns a raw code address
// into something callable.
//
// It covers two operations:
//
//	Open / Lookup / Close   load a shared library and resolve symbol addresses
//	NewCallInterface / Call build a call description at runtime and execute it
//
// On Linux, macOS and FreeBSD libraries are loaded with dlopen through
// github.com/ebitengine/purego, so no C toolchain is needed to build the
// module. On Windows LoadLibrary and GetProcAddress from golang.org/x/sys
// are used instead.
//
// # Call interfaces
//
// A CallInterface describes a function taking N 32-bit signed integers and
// returning one. The concrete Go function type is assembled with
// reflect.FuncOf and bound to the target address with purego.RegisterFunc
// for every call:
//
//	ci, err := ffi.NewCallInterface(2)
//	if err != nil {
//	    return err
//	}
//	sum, err := ci.Call(addr, []int32{3, 4})
//
// # Safety
//
// Nothing here can verify that the address points to a function with the
// described signature. A mismatch, or a crash inside the callee, takes down
// the whole process. Calls are synchronous and cannot be cancelled.
package ffi
