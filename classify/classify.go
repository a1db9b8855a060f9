// Package classify recognizes the parameter type shapes that drive
// marshalling decisions. Every predicate is pure and total: an
// unrecognized type simply fails to match.
package classify

import (
	"github.com/benn-herrera/cffigen/syntax"
)

// RefKind is how a value is passed: by value, shared borrow or mutable borrow.
type RefKind int

const (
	ByValue RefKind = iota
	Shared
	Mutable
)

func (k RefKind) String() string {
	switch k {
	case Shared:
		return "shared"
	case Mutable:
		return "mutable"
	}
	return "value"
}

// Kind is the shape a parameter classifies as, in match priority order.
type Kind int

const (
	PassThrough Kind = iota
	Optional
	AsRef
	AsMut
	Stringify
	IntoVec
	Array
	Slice
	Vec
	Text
)

var kindNames = map[Kind]string{
	PassThrough: "pass-through",
	Optional:    "option",
	AsRef:       "as-ref",
	AsMut:       "as-mut",
	Stringify:   "to-string",
	IntoVec:     "into-vec",
	Array:       "array",
	Slice:       "slice",
	Vec:         "vec",
	Text:        "text",
}

func (k Kind) String() string { return kindNames[k] }

// Shape is the result of classifying a declared type. Elem is the payload
// the matching predicate extracted: the option's inner type, the bound's
// target type, or the sequence element type.
type Shape struct {
	Kind Kind
	Ref  RefKind
	Elem syntax.Type
	// Owned is set for text passed as an owned String.
	Owned bool
}

// Classify runs the predicates in priority order and returns the first
// match. Types that match nothing classify as PassThrough.
func Classify(t syntax.Type) Shape {
	if inner, ok := OptionInner(t); ok {
		return Shape{Kind: Optional, Elem: inner}
	}
	if target, ref, ok := AsRefTarget(t); ok {
		return Shape{Kind: AsRef, Ref: ref, Elem: target}
	}
	if target, ok := AsMutTarget(t); ok {
		return Shape{Kind: AsMut, Ref: Mutable, Elem: target}
	}
	if ref, ok := StringifyBound(t); ok {
		return Shape{Kind: Stringify, Ref: ref}
	}
	if elem, ref, ok := IntoVecBound(t); ok {
		return Shape{Kind: IntoVec, Ref: ref, Elem: elem}
	}
	if elem, ref, ok := ArrayElem(t); ok {
		return Shape{Kind: Array, Ref: ref, Elem: elem}
	}
	if elem, ref, ok := SliceElem(t); ok {
		return Shape{Kind: Slice, Ref: ref, Elem: elem}
	}
	if elem, ref, ok := VecElem(t); ok {
		return Shape{Kind: Vec, Ref: ref, Elem: elem}
	}
	if ref, owned, ok := TextValue(t); ok {
		return Shape{Kind: Text, Ref: ref, Owned: owned}
	}
	return Shape{Kind: PassThrough}
}

// OptionInner matches Option<T>, by last path segment.
func OptionInner(t syntax.Type) (syntax.Type, bool) {
	p, ok := t.(*syntax.Path)
	if !ok || p.Last().Name != "Option" {
		return nil, false
	}
	args := p.TypeArgs()
	if len(args) != 1 {
		return nil, false
	}
	return args[0], true
}

// deref strips any number of references, reporting the outermost kind.
func deref(t syntax.Type) (syntax.Type, RefKind) {
	kind := ByValue
	for {
		r, ok := t.(*syntax.Ref)
		if !ok {
			return t, kind
		}
		if kind == ByValue {
			kind = Shared
			if r.Mut {
				kind = Mutable
			}
		}
		t = r.Elem
	}
}

// boundArg finds the first bound of an impl-trait type named trait and
// returns its single generic argument.
func boundArg(t syntax.Type, trait string) (syntax.Type, bool) {
	it, ok := t.(*syntax.ImplTrait)
	if !ok {
		return nil, false
	}
	for _, b := range it.Bounds {
		if b.Last().Name != trait {
			continue
		}
		args := b.TypeArgs()
		if len(args) == 1 {
			return args[0], true
		}
	}
	return nil, false
}

func hasBound(t syntax.Type, trait string) bool {
	it, ok := t.(*syntax.ImplTrait)
	if !ok {
		return false
	}
	for _, b := range it.Bounds {
		if b.Last().Name == trait && len(b.TypeArgs()) == 0 {
			return true
		}
	}
	return false
}

// AsRefTarget matches impl AsRef<T> where T is text, [T] or Vec<T>, also
// through & and &mut. Any other target is left to the later shapes.
func AsRefTarget(t syntax.Type) (syntax.Type, RefKind, bool) {
	inner, ref := deref(t)
	target, ok := boundArg(inner, "AsRef")
	if !ok {
		return nil, ByValue, false
	}
	if IsTextTarget(target) {
		return target, ref, true
	}
	if _, isSlice := target.(*syntax.Slice); isSlice {
		return target, ref, true
	}
	if _, _, isVec := VecElem(target); isVec {
		return target, ref, true
	}
	return nil, ByValue, false
}

// AsMutTarget matches impl AsMut<T> where T is a sequence ([T] or Vec<T>),
// also through references.
func AsMutTarget(t syntax.Type) (syntax.Type, bool) {
	inner, _ := deref(t)
	target, ok := boundArg(inner, "AsMut")
	if !ok {
		return nil, false
	}
	switch tt := target.(type) {
	case *syntax.Slice:
		return tt.Elem, true
	case *syntax.Path:
		if tt.Last().Name == "Vec" && len(tt.TypeArgs()) == 1 {
			return tt.TypeArgs()[0], true
		}
	}
	return nil, false
}

// StringifyBound matches impl ToString and impl Display.
func StringifyBound(t syntax.Type) (RefKind, bool) {
	inner, ref := deref(t)
	if hasBound(inner, "ToString") || hasBound(inner, "Display") {
		return ref, true
	}
	return ByValue, false
}

// IntoVecBound matches impl Into<Vec<T>> and returns T.
func IntoVecBound(t syntax.Type) (syntax.Type, RefKind, bool) {
	inner, ref := deref(t)
	target, ok := boundArg(inner, "Into")
	if !ok {
		return nil, ByValue, false
	}
	p, ok := target.(*syntax.Path)
	if !ok || p.Last().Name != "Vec" || len(p.TypeArgs()) != 1 {
		return nil, ByValue, false
	}
	return p.TypeArgs()[0], ref, true
}

// ArrayElem matches [T; N], &[T; N] and &mut [T; N].
func ArrayElem(t syntax.Type) (syntax.Type, RefKind, bool) {
	inner, ref := deref(t)
	if a, ok := inner.(*syntax.Array); ok {
		return a.Elem, ref, true
	}
	return nil, ByValue, false
}

// SliceElem matches &[T] and &mut [T].
func SliceElem(t syntax.Type) (syntax.Type, RefKind, bool) {
	inner, ref := deref(t)
	if ref == ByValue {
		return nil, ByValue, false
	}
	if s, ok := inner.(*syntax.Slice); ok {
		return s.Elem, ref, true
	}
	return nil, ByValue, false
}

// VecElem matches Vec<T>, &Vec<T> and &mut Vec<T>.
func VecElem(t syntax.Type) (syntax.Type, RefKind, bool) {
	inner, ref := deref(t)
	p, ok := inner.(*syntax.Path)
	if !ok || p.Last().Name != "Vec" || len(p.TypeArgs()) != 1 {
		return nil, ByValue, false
	}
	return p.TypeArgs()[0], ref, true
}

// UnsignedInt reports the name of an unsigned integer primitive.
func UnsignedInt(t syntax.Type) (string, bool) {
	p, ok := t.(*syntax.Path)
	if !ok || len(p.Segments) != 1 || len(p.TypeArgs()) != 0 {
		return "", false
	}
	switch name := p.Ident(); name {
	case "u8", "u16", "u32", "u64", "u128", "usize":
		return name, true
	}
	return "", false
}

// TextValue matches &str, String, &String and &mut String. owned is true
// for text declared as String in any position.
func TextValue(t syntax.Type) (ref RefKind, owned bool, ok bool) {
	inner, ref := deref(t)
	p, isPath := inner.(*syntax.Path)
	if !isPath {
		return ByValue, false, false
	}
	switch p.Ident() {
	case "str":
		return ref, false, ref != ByValue
	case "String":
		return ref, true, true
	}
	return ByValue, false, false
}

// IsTextTarget reports whether t is one of the byte-string targets that
// convert through a NUL-terminated copy: str, String or [u8].
func IsTextTarget(t syntax.Type) bool {
	for _, target := range textTargets {
		if TypeEq(t, target) {
			return true
		}
	}
	return false
}

var textTargets = []syntax.Type{
	syntax.NewPath("str"),
	syntax.NewPath("String"),
	&syntax.Slice{Elem: syntax.NewPath("u8")},
}
