//go:build windows

package cffi

import (
	"github.com/ebitengine/purego"
	"golang.org/x/sys/windows"
)

func openLibrary(path string) (uintptr, func() error, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return 0, nil, err
	}
	return uintptr(dll.Handle), dll.Release, nil
}

func lookupSymbol(handle uintptr, symbol string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), symbol)
}

func bindFunc(fptr any, addr uintptr) error {
	purego.RegisterFunc(fptr, addr)
	return nil
}
