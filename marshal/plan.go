// Package marshal decides, per declared parameter, the wrapper-facing type,
// the raw C-facing type and the conversion steps bridging them.
package marshal

import (
	"fmt"
	"strings"

	"github.com/benn-herrera/cffigen/classify"
	"github.com/benn-herrera/cffigen/syntax"
)

// Ownership describes who owns the memory behind a converted argument.
type Ownership int

const (
	// NoTemporary: the value is passed as is, or unwrapped by value.
	NoTemporary Ownership = iota
	// OwnedCString: a NUL-terminated copy owned by the wrapper for the
	// duration of the call.
	OwnedCString
	// OwnedVec: a materialized vector owned by the wrapper for the
	// duration of the call.
	OwnedVec
	// LeakedCString: a NUL-terminated copy handed to the foreign side and
	// never reclaimed.
	LeakedCString
	// Borrowed: a pointer into caller-owned memory.
	Borrowed
)

var ownershipNames = map[Ownership]string{
	NoTemporary:   "none",
	OwnedCString:  "owned-cstring",
	OwnedVec:      "owned-vec",
	LeakedCString: "leaked-cstring",
	Borrowed:      "borrowed",
}

func (o Ownership) String() string { return ownershipNames[o] }

// OwnsTemporary reports whether the wrapper allocates a holder that must
// outlive the foreign call.
func (o Ownership) OwnsTemporary() bool {
	return o == OwnedCString || o == OwnedVec
}

// Op is a conversion step operation.
type Op int

const (
	// Unwrap binds Source's payload, or Default when it is absent.
	Unwrap Op = iota
	// CString binds an owned NUL-terminated copy of Source.
	CString
	// LeakCString binds a raw pointer to a NUL-terminated copy of Source
	// whose ownership passes to the foreign side.
	LeakCString
	// Collect binds an owned vector materialized from Source.
	Collect
	// Pointer binds a raw pointer to the first element of Source.
	Pointer
)

var opNames = map[Op]string{
	Unwrap:      "unwrap",
	CString:     "cstring",
	LeakCString: "leak-cstring",
	Collect:     "collect",
	Pointer:     "pointer",
}

func (o Op) String() string { return opNames[o] }

// Access is how a step views its source before converting it.
type Access int

const (
	Value Access = iota
	ViaAsRef
	ViaAsMut
	ViaToString
	ViaInto
)

var accessNames = map[Access]string{
	Value:       "value",
	ViaAsRef:    "as_ref",
	ViaAsMut:    "as_mut",
	ViaToString: "to_string",
	ViaInto:     "into",
}

func (a Access) String() string { return accessNames[a] }

// Step is one conversion statement: Bind = Op(Access(Source)).
type Step struct {
	Op      Op
	Source  string
	Bind    string
	Access  Access
	Mutable bool
	Default syntax.Expr
	Elem    syntax.Type
}

func (s Step) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s(%s", s.Bind, s.Op, s.Source)
	if s.Access != Value {
		fmt.Fprintf(&b, ".%s()", s.Access)
	}
	if s.Default != nil {
		fmt.Fprintf(&b, ", %s", s.Default)
	}
	b.WriteString(")")
	if s.Mutable {
		b.WriteString(" mut")
	}
	return b.String()
}

// ParameterPlan is the marshalling decision for one parameter.
type ParameterPlan struct {
	Name      string
	Shape     classify.Shape
	Rule      RuleID
	Wrapper   syntax.Type
	Raw       syntax.Type
	Steps     []Step
	CallArg   string
	Holder    string
	Pointer   string
	Ownership Ownership
}

const (
	holderSuffix  = "_holder"
	pointerSuffix = "_ptr"
	valueSuffix   = "_value"
)

// Options control planning for a single parameter.
type Options struct {
	// Convert enables the rule table. When false every parameter passes
	// through unchanged.
	Convert bool
	// Default is substituted for an absent optional value. nil means the
	// zero value.
	Default syntax.Expr
	// Taken holds the names already bound in the function: every
	// parameter name and the bindings planned so far. Bindings chosen for
	// this parameter are added to it. nil disables the check.
	Taken map[string]bool
}

// bind names a temporary for param, appending underscores until the name
// is free.
func (o Options) bind(param, suffix string) string {
	name := param + suffix
	for o.Taken[name] {
		name += "_"
	}
	if o.Taken != nil {
		o.Taken[name] = true
	}
	return name
}

// PlanParameter classifies the declared parameter once and applies the
// first rule that matches.
func PlanParameter(p syntax.Param, opts Options) *ParameterPlan {
	shape := classify.Classify(p.Type)
	if !opts.Convert {
		return passThrough(p, shape)
	}
	for _, r := range Rules {
		if r.Match(shape) {
			pp := r.Build(p, shape, opts)
			pp.Rule = r.ID
			pp.Shape = shape
			return pp
		}
	}
	return passThrough(p, shape)
}

func passThrough(p syntax.Param, shape classify.Shape) *ParameterPlan {
	return &ParameterPlan{
		Name:    p.Name,
		Shape:   shape,
		Rule:    RulePassThrough,
		Wrapper: p.Type,
		Raw:     p.Type,
		CallArg: p.Name,
	}
}

var cChar = syntax.NewPath("c_char")

func constPtr(elem syntax.Type) syntax.Type { return &syntax.Ptr{Elem: elem} }
func mutPtr(elem syntax.Type) syntax.Type   { return &syntax.Ptr{Mut: true, Elem: elem} }
