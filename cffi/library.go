package cffi

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Library is an opened foreign library.
type Library struct {
	Name string
	Path string

	mu     sync.Mutex
	handle uintptr
	closer func() error
}

// LibraryFile returns the platform file name for a library base name.
func LibraryFile(name string) string {
	switch runtime.GOOS {
	case "windows":
		return name + ".dll"
	case "darwin", "ios":
		return "lib" + name + ".dylib"
	default:
		return "lib" + name + ".so"
	}
}

// Open loads the named library. When dir is non-empty the platform file in
// dir is tried first; otherwise the system loader search path applies.
func Open(dir, name string) (*Library, error) {
	path := LibraryFile(name)
	if dir != "" {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	slog.Debug("opening foreign library", "name", name, "path", path)
	handle, closer, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return &Library{Name: name, Path: path, handle: handle, closer: closer}, nil
}

// Lookup returns the address of symbol.
func (l *Library) Lookup(symbol string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return 0, fmt.Errorf("%s: %w", l.Name, ErrNotLoaded)
	}
	addr, err := lookupSymbol(l.handle, symbol)
	if err != nil {
		return 0, fmt.Errorf("%s: symbol %s: %w", l.Name, symbol, err)
	}
	return addr, nil
}

// Bind points the Go function variable fptr at symbol.
func (l *Library) Bind(fptr any, symbol string) (err error) {
	addr, err := l.Lookup(symbol)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: binding %s: %v", l.Name, symbol, r)
		}
	}()
	return bindFunc(fptr, addr)
}

// Close unloads the library. Bound functions must not be called afterwards.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return nil
	}
	l.handle = 0
	if l.closer == nil {
		return nil
	}
	return l.closer()
}
