//go:build !darwin && !freebsd && !linux && !windows

package ffi

import (
	"runtime"

	"github.com/wippyai/dllbridge/errors"
)

func unsupported() error {
	return errors.Unsupported(errors.PhaseLoad, "platform", runtime.GOOS+"/"+runtime.GOARCH)
}

func openLibrary(string) (uintptr, error) {
	return 0, unsupported()
}

func lookupSymbol(uintptr, string) (uintptr, error) {
	return 0, unsupported()
}

func closeLibrary(uintptr) error {
	return unsupported()
}

func bindFunc(any, uintptr) {
	panic(unsupported())
}
