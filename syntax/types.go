package syntax

import (
	"strings"
)

// Type is a declared type in the source notation.
type Type interface {
	String() string
	typeNode()
}

// Segment is one component of a path, with its generic arguments.
// Lifetime arguments appear in Args as *Lifetime.
type Segment struct {
	Name string
	Args []Type
}

// Path is a (possibly qualified, possibly generic) named type such as
// i32, std::ffi::c_char or Option<Vec<u8>>.
type Path struct {
	Global   bool
	Segments []Segment
}

// Ref is a borrowed reference, &'a mut T.
type Ref struct {
	Mut      bool
	Lifetime string
	Elem     Type
}

// Ptr is a raw pointer, *const T or *mut T.
type Ptr struct {
	Mut  bool
	Elem Type
}

// Slice is an unsized sequence, [T].
type Slice struct {
	Elem Type
}

// Array is a fixed-size sequence, [T; N].
type Array struct {
	Elem Type
	Len  Expr
}

// ImplTrait is an anonymous generic parameter, impl A + B.
type ImplTrait struct {
	Bounds []*Path
}

// Tuple is a tuple type; the empty tuple is the unit type.
type Tuple struct {
	Elems []Type
}

// Lifetime is a lifetime generic argument such as 'a.
type Lifetime struct {
	Name string
}

func (*Path) typeNode()      {}
func (*Ref) typeNode()       {}
func (*Ptr) typeNode()       {}
func (*Slice) typeNode()     {}
func (*Array) typeNode()     {}
func (*ImplTrait) typeNode() {}
func (*Tuple) typeNode()     {}
func (*Lifetime) typeNode()  {}

// NewPath builds a single-segment path type.
func NewPath(name string, args ...Type) *Path {
	return &Path{Segments: []Segment{{Name: name, Args: args}}}
}

// Last returns the final segment of the path.
func (p *Path) Last() Segment {
	if len(p.Segments) == 0 {
		return Segment{}
	}
	return p.Segments[len(p.Segments)-1]
}

// Ident returns the name of a single-segment, non-generic path, or "".
func (p *Path) Ident() string {
	if p.Global || len(p.Segments) != 1 || len(p.Segments[0].Args) != 0 {
		return ""
	}
	return p.Segments[0].Name
}

// TypeArgs returns the non-lifetime generic arguments of the last segment.
func (p *Path) TypeArgs() []Type {
	var out []Type
	for _, a := range p.Last().Args {
		if _, ok := a.(*Lifetime); ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (p *Path) String() string {
	var b strings.Builder
	if p.Global {
		b.WriteString("::")
	}
	for i, s := range p.Segments {
		if i > 0 {
			b.WriteString("::")
		}
		b.WriteString(s.Name)
		if len(s.Args) > 0 {
			b.WriteString("<")
			for j, a := range s.Args {
				if j > 0 {
					b.WriteString(", ")
				}
				b.WriteString(a.String())
			}
			b.WriteString(">")
		}
	}
	return b.String()
}

func (r *Ref) String() string {
	var b strings.Builder
	b.WriteString("&")
	if r.Lifetime != "" {
		b.WriteString("'" + r.Lifetime + " ")
	}
	if r.Mut {
		b.WriteString("mut ")
	}
	b.WriteString(r.Elem.String())
	return b.String()
}

func (p *Ptr) String() string {
	if p.Mut {
		return "*mut " + p.Elem.String()
	}
	return "*const " + p.Elem.String()
}

func (s *Slice) String() string { return "[" + s.Elem.String() + "]" }

func (a *Array) String() string {
	return "[" + a.Elem.String() + "; " + a.Len.String() + "]"
}

func (t *ImplTrait) String() string {
	parts := make([]string, len(t.Bounds))
	for i, b := range t.Bounds {
		parts[i] = b.String()
	}
	return "impl " + strings.Join(parts, " + ")
}

func (t *Tuple) String() string {
	switch len(t.Elems) {
	case 0:
		return "()"
	case 1:
		return "(" + t.Elems[0].String() + ",)"
	}
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (l *Lifetime) String() string { return "'" + l.Name }

// IsUnit reports whether t is the empty tuple.
func IsUnit(t Type) bool {
	tup, ok := t.(*Tuple)
	return ok && len(tup.Elems) == 0
}

// ParseType parses a complete type.
func ParseType(src string) (Type, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustParseType is like ParseType but panics on error. For tests and
// package-level tables.
func MustParseType(src string) Type {
	t, err := ParseType(src)
	if err != nil {
		panic(err)
	}
	return t
}

func (p *parser) parseType() (Type, error) {
	tok := p.peek()
	switch {
	case p.is("&"), p.is("&&"):
		double := p.is("&&")
		p.next()
		r := &Ref{}
		if p.peek().Kind == LifetimeTok {
			r.Lifetime = p.next().Value
		}
		if p.accept("mut") {
			r.Mut = true
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		r.Elem = elem
		if double {
			return &Ref{Elem: r}, nil
		}
		return r, nil

	case p.is("*"):
		p.next()
		ptr := &Ptr{}
		switch {
		case p.accept("mut"):
			ptr.Mut = true
		case p.accept("const"):
		default:
			return nil, p.errorf(p.peek(), "expected const or mut after *")
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ptr.Elem = elem
		return ptr, nil

	case p.is("["):
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if p.accept(";") {
			n, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			return &Array{Elem: elem, Len: n}, nil
		}
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		return &Slice{Elem: elem}, nil

	case p.is("("):
		p.next()
		tup := &Tuple{}
		for !p.is(")") {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			tup.Elems = append(tup.Elems, t)
			if !p.accept(",") {
				break
			}
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		if len(tup.Elems) == 1 && p.toks[p.i-2].Text != "," {
			return tup.Elems[0], nil
		}
		return tup, nil

	case p.is("impl"):
		p.next()
		it := &ImplTrait{}
		for {
			if p.peek().Kind == LifetimeTok {
				p.next()
			} else {
				p.accept("?")
				b, err := p.parsePath()
				if err != nil {
					return nil, err
				}
				it.Bounds = append(it.Bounds, b)
			}
			if !p.accept("+") {
				break
			}
		}
		return it, nil

	case p.is("fn"), p.is("extern"), p.is("unsafe"):
		return nil, p.errorf(tok, "function pointer types are not supported")

	case p.is("dyn"):
		return nil, p.errorf(tok, "trait object types are not supported")

	case p.is("_"):
		return nil, p.errorf(tok, "inferred types are not supported")

	case tok.Kind == Ident || p.is("::"):
		return p.parsePath()
	}
	return nil, p.errorf(tok, "expected type, found %s", describe(tok))
}

func (p *parser) parsePath() (*Path, error) {
	path := &Path{}
	if p.accept("::") {
		path.Global = true
	}
	for {
		tok := p.peek()
		if tok.Kind != Ident {
			return nil, p.errorf(tok, "expected identifier in path, found %s", describe(tok))
		}
		p.next()
		seg := Segment{Name: tok.Text}
		if p.is("<") || (p.is("::") && p.peekAt(1).Text == "<") {
			p.accept("::")
			p.next()
			for !p.isCloseAngle() {
				if p.peek().Kind == LifetimeTok {
					seg.Args = append(seg.Args, &Lifetime{Name: p.next().Value})
				} else {
					a, err := p.parseType()
					if err != nil {
						return nil, err
					}
					seg.Args = append(seg.Args, a)
				}
				if !p.accept(",") {
					break
				}
			}
			if err := p.closeAngle(); err != nil {
				return nil, err
			}
		}
		path.Segments = append(path.Segments, seg)
		if !p.is("::") || p.peekAt(1).Kind != Ident {
			return path, nil
		}
		p.next()
	}
}
