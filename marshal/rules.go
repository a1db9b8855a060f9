package marshal

import (
	"github.com/benn-herrera/cffigen/classify"
	"github.com/benn-herrera/cffigen/syntax"
)

// RuleID names a conversion rule.
type RuleID string

const (
	RuleOption      RuleID = "option"
	RuleAsRef       RuleID = "as-ref"
	RuleAsMut       RuleID = "as-mut"
	RuleToString    RuleID = "to-string"
	RuleIntoVec     RuleID = "into-vec"
	RuleArray       RuleID = "array"
	RuleSlice       RuleID = "slice"
	RuleVec         RuleID = "vec"
	RuleText        RuleID = "text"
	RulePassThrough RuleID = "pass-through"
)

// Rule pairs a shape predicate with the plan it produces.
type Rule struct {
	ID    RuleID
	Match func(classify.Shape) bool
	Build func(p syntax.Param, s classify.Shape, opts Options) *ParameterPlan
}

func kindIs(k classify.Kind) func(classify.Shape) bool {
	return func(s classify.Shape) bool { return s.Kind == k }
}

// Rules is the conversion table in priority order. The first matching rule
// decides; later rules are never consulted.
var Rules = []Rule{
	{ID: RuleOption, Match: kindIs(classify.Optional), Build: buildOption},
	{ID: RuleAsRef, Match: kindIs(classify.AsRef), Build: buildAsRef},
	{ID: RuleAsMut, Match: kindIs(classify.AsMut), Build: buildAsMut},
	{ID: RuleToString, Match: kindIs(classify.Stringify), Build: buildToString},
	{ID: RuleIntoVec, Match: kindIs(classify.IntoVec), Build: buildIntoVec},
	{ID: RuleArray, Match: kindIs(classify.Array), Build: buildSequence},
	{ID: RuleSlice, Match: kindIs(classify.Slice), Build: buildSequence},
	{ID: RuleVec, Match: kindIs(classify.Vec), Build: buildSequence},
	{ID: RuleText, Match: kindIs(classify.Text), Build: buildText},
}

func buildOption(p syntax.Param, s classify.Shape, opts Options) *ParameterPlan {
	def := opts.Default
	if def == nil {
		def = &syntax.ZeroValue{}
	}
	bind := opts.bind(p.Name, valueSuffix)
	return &ParameterPlan{
		Name:    p.Name,
		Wrapper: p.Type,
		Raw:     s.Elem,
		Steps:   []Step{{Op: Unwrap, Source: p.Name, Bind: bind, Default: def}},
		CallArg: bind,
	}
}

// cstring holds a NUL-terminated copy of the source and derives a const
// char pointer from the holder, in that order.
func cstring(p syntax.Param, opts Options, access Access) *ParameterPlan {
	holder, ptr := opts.bind(p.Name, holderSuffix), opts.bind(p.Name, pointerSuffix)
	return &ParameterPlan{
		Name:    p.Name,
		Wrapper: p.Type,
		Raw:     constPtr(cChar),
		Steps: []Step{
			{Op: CString, Source: p.Name, Bind: holder, Access: access},
			{Op: Pointer, Source: holder, Bind: ptr, Elem: cChar},
		},
		CallArg:   ptr,
		Holder:    holder,
		Pointer:   ptr,
		Ownership: OwnedCString,
	}
}

// borrow derives a pointer straight from caller memory.
func borrow(p syntax.Param, opts Options, access Access, elem syntax.Type, mutable bool) *ParameterPlan {
	ptr := opts.bind(p.Name, pointerSuffix)
	raw := constPtr(elem)
	if mutable {
		raw = mutPtr(elem)
	}
	return &ParameterPlan{
		Name:    p.Name,
		Wrapper: p.Type,
		Raw:     raw,
		Steps: []Step{
			{Op: Pointer, Source: p.Name, Bind: ptr, Access: access, Mutable: mutable, Elem: elem},
		},
		CallArg:   ptr,
		Pointer:   ptr,
		Ownership: Borrowed,
	}
}

func buildAsRef(p syntax.Param, s classify.Shape, opts Options) *ParameterPlan {
	if classify.IsTextTarget(s.Elem) {
		return cstring(p, opts, ViaAsRef)
	}
	return borrow(p, opts, ViaAsRef, sequenceElem(s.Elem), false)
}

// sequenceElem returns T for [T] and Vec<T>, and the type itself otherwise.
func sequenceElem(t syntax.Type) syntax.Type {
	if sl, ok := t.(*syntax.Slice); ok {
		return sl.Elem
	}
	if elem, _, ok := classify.VecElem(t); ok {
		return elem
	}
	return t
}

func buildAsMut(p syntax.Param, s classify.Shape, opts Options) *ParameterPlan {
	return borrow(p, opts, ViaAsMut, s.Elem, true)
}

func buildToString(p syntax.Param, _ classify.Shape, opts Options) *ParameterPlan {
	return cstring(p, opts, ViaToString)
}

func buildIntoVec(p syntax.Param, s classify.Shape, opts Options) *ParameterPlan {
	if s.Ref != classify.ByValue {
		pp := borrow(p, opts, ViaInto, s.Elem, s.Ref == classify.Mutable)
		// renderers that cannot borrow through Into collect into this
		pp.Holder = opts.bind(p.Name, holderSuffix)
		return pp
	}
	holder, ptr := opts.bind(p.Name, holderSuffix), opts.bind(p.Name, pointerSuffix)
	return &ParameterPlan{
		Name:    p.Name,
		Wrapper: p.Type,
		Raw:     constPtr(s.Elem),
		Steps: []Step{
			{Op: Collect, Source: p.Name, Bind: holder, Access: ViaInto, Elem: s.Elem},
			{Op: Pointer, Source: holder, Bind: ptr, Elem: s.Elem},
		},
		CallArg:   ptr,
		Holder:    holder,
		Pointer:   ptr,
		Ownership: OwnedVec,
	}
}

// buildSequence covers arrays, slices and vectors: a const pointer unless
// the sequence is mutably borrowed.
func buildSequence(p syntax.Param, s classify.Shape, opts Options) *ParameterPlan {
	return borrow(p, opts, Value, s.Elem, s.Ref == classify.Mutable)
}

func buildText(p syntax.Param, s classify.Shape, opts Options) *ParameterPlan {
	if s.Ref != classify.Mutable {
		return cstring(p, opts, Value)
	}
	// &mut String: the copy is released to the foreign side and nothing
	// writes it back into the caller's String.
	ptr := opts.bind(p.Name, pointerSuffix)
	return &ParameterPlan{
		Name:    p.Name,
		Wrapper: p.Type,
		Raw:     mutPtr(cChar),
		Steps: []Step{
			{Op: LeakCString, Source: p.Name, Bind: ptr, Mutable: true, Elem: cChar},
		},
		CallArg:   ptr,
		Pointer:   ptr,
		Ownership: LeakedCString,
	}
}
