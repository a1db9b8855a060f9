// Package resolver looks up annotations and resolves the effective
// configuration each declared function is generated under.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benn-herrera/cffigen/syntax"
)

// ErrMissingAnnotation is returned when a required annotation is absent.
var ErrMissingAnnotation = errors.New("missing required annotation")

// Annotations is an ordered annotation list. Lookups are first match wins.
type Annotations []syntax.Annotation

// Lookup returns the first annotation with the given key.
func (as Annotations) Lookup(key string) (syntax.Annotation, bool) {
	for _, a := range as {
		if a.Key == key {
			return a, true
		}
	}
	return syntax.Annotation{}, false
}

// Value returns the value of the first key = value annotation for key.
// A bare flag with the same key does not count.
func (as Annotations) Value(key string) (string, bool) {
	for _, a := range as {
		if a.Key == key && a.Kind != syntax.NoValue {
			return a.Value, true
		}
	}
	return "", false
}

// FirstValue returns the value for the first of keys that is present.
func (as Annotations) FirstValue(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := as.Value(k); ok {
			return v, true
		}
	}
	return "", false
}

// Flag reports whether key is set, either bare or as key = value. An
// explicit key = false clears it.
func (as Annotations) Flag(key string) bool {
	a, ok := as.Lookup(key)
	if !ok {
		return false
	}
	return a.Kind == syntax.NoValue || a.Value != "false"
}

// Require returns the value for key or an error wrapping
// ErrMissingAnnotation.
func (as Annotations) Require(key string) (string, error) {
	v, ok := as.Value(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingAnnotation, key)
	}
	return v, nil
}

// Expr parses the value of key as an expression fragment.
func (as Annotations) Expr(key string) (syntax.Expr, bool, error) {
	v, ok := as.Value(key)
	if !ok {
		return nil, false, nil
	}
	e, err := syntax.ParseExpr(v)
	if err != nil {
		return nil, true, fmt.Errorf("annotation %s: %w", key, err)
	}
	return e, true, nil
}

// DefaultValue decodes an option default. The words null, null_mut and
// default name a null pointer, a mutable null pointer and the zero value;
// anything else must parse as an expression.
func DefaultValue(word string) (syntax.Expr, error) {
	switch strings.TrimSpace(word) {
	case "null":
		return &syntax.NullPtr{}, nil
	case "null_mut":
		return &syntax.NullPtr{Mut: true}, nil
	case "default":
		return &syntax.ZeroValue{}, nil
	}
	e, err := syntax.ParseExpr(word)
	if err != nil {
		return nil, fmt.Errorf("option default %q: %w", word, err)
	}
	return e, nil
}

// ConversionEnabled reports whether an arg_convert mode turns on
// marshalling. Only "default" and "true" do; any other mode passes every
// parameter through unchanged.
func ConversionEnabled(mode string) bool {
	return strings.Contains(mode, "default") || strings.Contains(mode, "true")
}

// Parse parses raw annotation strings in order.
func Parse(srcs []string) (Annotations, error) {
	as, err := syntax.ParseAnnotations(srcs)
	if err != nil {
		return nil, err
	}
	return Annotations(as), nil
}
