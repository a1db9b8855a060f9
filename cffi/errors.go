// Package cffi is the runtime support package imported by generated Go
// bindings. It loads the foreign library, binds symbols and keeps
// converted arguments alive for the duration of a foreign call.
package cffi

import (
	"errors"
	"fmt"
)

var (
	// ErrInitialize is reported by the library's initializer when its
	// result fails the error predicate.
	ErrInitialize = errors.New("initialize error")
	// ErrFinalize is reported by the library's finalizer when its result
	// fails the error predicate.
	ErrFinalize = errors.New("finalize error")
	// ErrNullPointer is reported when a pointer result is null.
	ErrNullPointer = errors.New("null pointer returned")
	// ErrInteriorNUL is returned when text passed to a foreign function
	// contains a NUL byte.
	ErrInteriorNUL = errors.New("text contains a NUL byte")
	// ErrNotLoaded is returned by wrappers called before Load.
	ErrNotLoaded = errors.New("library not loaded")
)

// CallError reports a foreign call whose result failed its error check.
type CallError struct {
	Func   string
	Result any
	// Err is the failure kind, nil for a generic failure.
	Err error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v (result %v)", e.Func, e.Err, e.Result)
	}
	return fmt.Sprintf("Error in %s (result %v)", e.Func, e.Result)
}

func (e *CallError) Unwrap() error { return e.Err }
