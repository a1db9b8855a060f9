//go:build !darwin && !freebsd && !linux && !windows

package cffi

import (
	"errors"
	"runtime"
)

var errUnsupported = errors.New("foreign libraries are not supported on " + runtime.GOOS)

func openLibrary(string) (uintptr, func() error, error) {
	return 0, nil, errUnsupported
}

func lookupSymbol(uintptr, string) (uintptr, error) {
	return 0, errUnsupported
}

func bindFunc(any, uintptr) error {
	return errUnsupported
}
