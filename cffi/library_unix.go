//go:build darwin || freebsd || linux

package cffi

import "github.com/ebitengine/purego"

func openLibrary(path string) (uintptr, func() error, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, nil, err
	}
	return handle, func() error { return purego.Dlclose(handle) }, nil
}

func lookupSymbol(handle uintptr, symbol string) (uintptr, error) {
	return purego.Dlsym(handle, symbol)
}

func bindFunc(fptr any, addr uintptr) error {
	purego.RegisterFunc(fptr, addr)
	return nil
}
