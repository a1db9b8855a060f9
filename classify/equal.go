package classify

import (
	"github.com/benn-herrera/cffigen/syntax"
)

// TypeEq reports whether a and b are structurally the same type. Lifetimes
// are ignored wherever they appear, so &'a str equals &str and
// Cow<'a, str> equals Cow<str>. Array lengths compare by source text.
func TypeEq(a, b syntax.Type) bool {
	switch a := a.(type) {
	case *syntax.Path:
		b, ok := b.(*syntax.Path)
		if !ok || a.Global != b.Global || len(a.Segments) != len(b.Segments) {
			return false
		}
		for i := range a.Segments {
			if a.Segments[i].Name != b.Segments[i].Name {
				return false
			}
			if !typesEq(stripLifetimes(a.Segments[i].Args), stripLifetimes(b.Segments[i].Args)) {
				return false
			}
		}
		return true
	case *syntax.Ref:
		b, ok := b.(*syntax.Ref)
		return ok && a.Mut == b.Mut && TypeEq(a.Elem, b.Elem)
	case *syntax.Ptr:
		b, ok := b.(*syntax.Ptr)
		return ok && a.Mut == b.Mut && TypeEq(a.Elem, b.Elem)
	case *syntax.Slice:
		b, ok := b.(*syntax.Slice)
		return ok && TypeEq(a.Elem, b.Elem)
	case *syntax.Array:
		b, ok := b.(*syntax.Array)
		return ok && a.Len.String() == b.Len.String() && TypeEq(a.Elem, b.Elem)
	case *syntax.Tuple:
		b, ok := b.(*syntax.Tuple)
		return ok && typesEq(a.Elems, b.Elems)
	case *syntax.ImplTrait:
		b, ok := b.(*syntax.ImplTrait)
		if !ok || len(a.Bounds) != len(b.Bounds) {
			return false
		}
		for i := range a.Bounds {
			if !TypeEq(a.Bounds[i], b.Bounds[i]) {
				return false
			}
		}
		return true
	case *syntax.Lifetime:
		_, ok := b.(*syntax.Lifetime)
		return ok
	}
	return false
}

func typesEq(a, b []syntax.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !TypeEq(a[i], b[i]) {
			return false
		}
	}
	return true
}

func stripLifetimes(args []syntax.Type) []syntax.Type {
	out := args[:0:0]
	for _, a := range args {
		if _, ok := a.(*syntax.Lifetime); !ok {
			out = append(out, a)
		}
	}
	return out
}
