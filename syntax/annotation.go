package syntax

import (
	"strconv"
)

// ValueKind describes the right-hand side of an annotation.
type ValueKind int

const (
	NoValue ValueKind = iota
	StringValue
	PathValue
	LiteralValue
)

// Annotation is a single key or key = value entry. Value holds the
// decoded string for StringValue and the source text otherwise.
type Annotation struct {
	Key   string
	Kind  ValueKind
	Value string
}

func (a Annotation) String() string {
	switch a.Kind {
	case NoValue:
		return a.Key
	case StringValue:
		return a.Key + " = " + strconv.Quote(a.Value)
	}
	return a.Key + " = " + a.Value
}

// ParseAnnotation parses one of
//
//	as_result
//	library_name = "DxLib_x64"
//	arg_convert = default
//	error_sentinel = -1
func ParseAnnotation(src string) (Annotation, error) {
	p, err := newParser(src)
	if err != nil {
		return Annotation{}, err
	}
	key := p.peek()
	if key.Kind != Ident {
		return Annotation{}, p.errorf(key, "expected annotation name, found %s", describe(key))
	}
	p.next()
	a := Annotation{Key: key.Text}
	if !p.accept("=") {
		if err := p.expectEOF(); err != nil {
			return Annotation{}, err
		}
		return a, nil
	}

	tok := p.peek()
	switch {
	case tok.Kind == String:
		p.next()
		a.Kind, a.Value = StringValue, tok.Value
	case tok.Kind == Ident && tok.Text != "true" && tok.Text != "false":
		path, err := p.parseOperand()
		if err != nil {
			return Annotation{}, err
		}
		a.Kind, a.Value = PathValue, path.String()
	default:
		lit, err := p.parseUnary()
		if err != nil {
			return Annotation{}, err
		}
		switch lit.(type) {
		case *Lit, *Unary:
		default:
			return Annotation{}, p.errorf(tok, "annotation %s must be a literal, string or path", a.Key)
		}
		a.Kind, a.Value = LiteralValue, lit.String()
	}
	if err := p.expectEOF(); err != nil {
		return Annotation{}, err
	}
	return a, nil
}

// ParseAnnotations parses each entry in order.
func ParseAnnotations(srcs []string) ([]Annotation, error) {
	out := make([]Annotation, 0, len(srcs))
	for _, s := range srcs {
		a, err := ParseAnnotation(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
