package gen

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/benn-herrera/cffigen/syntax"
)

// limits maps TYPE::MAX and TYPE::MIN to math package constants. An empty
// name means the literal zero.
var limits = map[string][2]string{
	"i8":    {"MaxInt8", "MinInt8"},
	"i16":   {"MaxInt16", "MinInt16"},
	"i32":   {"MaxInt32", "MinInt32"},
	"i64":   {"MaxInt64", "MinInt64"},
	"isize": {"MaxInt", "MinInt"},
	"u8":    {"MaxUint8", ""},
	"u16":   {"MaxUint16", ""},
	"u32":   {"MaxUint32", ""},
	"u64":   {"MaxUint64", ""},
	"usize": {"MaxUint", ""},
	"f32":   {"MaxFloat32", "-MaxFloat32"},
	"f64":   {"MaxFloat64", "-MaxFloat64"},
}

// goExprTranslator renders predicate and default fragments as Go.
type goExprTranslator struct {
	// resultPtr is set when the foreign result is a pointer, so that
	// integer casts of it go through uintptr.
	resultPtr bool
}

func (x goExprTranslator) expr(e syntax.Expr) (*jen.Statement, error) {
	switch e := e.(type) {
	case *syntax.Lit:
		switch e.Kind {
		case syntax.StrLit:
			return jen.Lit(e.Value), nil
		case syntax.CharLit:
			r := []rune(e.Value)
			if len(r) != 1 {
				return nil, fmt.Errorf("char literal %s", e)
			}
			return jen.LitRune(r[0]), nil
		}
		return jen.Id(e.Value), nil
	case *syntax.PathExpr:
		return x.path(e)
	case *syntax.Paren:
		inner, err := x.expr(e.X)
		if err != nil {
			return nil, err
		}
		return jen.Parens(inner), nil
	case *syntax.Unary:
		if e.Op != "-" && e.Op != "!" && e.Op != "*" {
			return nil, fmt.Errorf("operator %s is not supported in Go", e.Op)
		}
		inner, err := x.expr(e.X)
		if err != nil {
			return nil, err
		}
		return jen.Op(e.Op).Add(inner), nil
	case *syntax.Binary:
		l, err := x.expr(e.X)
		if err != nil {
			return nil, err
		}
		r, err := x.expr(e.Y)
		if err != nil {
			return nil, err
		}
		// Go ranks shifts and bitwise operators differently; nested
		// operations keep their parsed grouping.
		if _, ok := e.X.(*syntax.Binary); ok {
			l = jen.Parens(l)
		}
		if _, ok := e.Y.(*syntax.Binary); ok {
			r = jen.Parens(r)
		}
		return l.Op(e.Op).Add(r), nil
	case *syntax.Cast:
		return x.cast(e)
	case *syntax.Call:
		if isNullCall(e) {
			return jen.Nil(), nil
		}
	case *syntax.MethodCall:
		return x.method(e)
	case *syntax.NullPtr:
		return jen.Nil(), nil
	}
	return nil, fmt.Errorf("expression %s has no Go translation", e)
}

func (x goExprTranslator) path(e *syntax.PathExpr) (*jen.Statement, error) {
	segs := e.Segments
	switch len(segs) {
	case 1:
		switch segs[0] {
		case "null", "null_mut":
			return jen.Nil(), nil
		}
		return jen.Id(segs[0]), nil
	case 2:
		lim, ok := limits[segs[0]]
		if !ok {
			break
		}
		var name string
		switch segs[1] {
		case "MAX":
			name = lim[0]
		case "MIN":
			name = lim[1]
		default:
			return nil, fmt.Errorf("constant %s has no Go translation", e)
		}
		if name == "" {
			return jen.Lit(0), nil
		}
		if neg, ok := strings.CutPrefix(name, "-"); ok {
			return jen.Op("-").Qual("math", neg), nil
		}
		return jen.Qual("math", name), nil
	}
	return nil, fmt.Errorf("path %s has no Go translation", e)
}

func (x goExprTranslator) cast(e *syntax.Cast) (*jen.Statement, error) {
	to, err := goScalar(e.Type)
	if err != nil {
		return nil, fmt.Errorf("cast %s: %w", e, err)
	}
	inner, err := x.expr(e.X)
	if err != nil {
		return nil, err
	}
	if p, ok := e.X.(*syntax.PathExpr); ok && x.resultPtr && len(p.Segments) == 1 && p.Segments[0] == "result" {
		inner = jen.Id("uintptr").Call(jen.Qual("unsafe", "Pointer").Call(inner))
	}
	return to.Call(inner), nil
}

func (x goExprTranslator) method(e *syntax.MethodCall) (*jen.Statement, error) {
	if len(e.Args) != 0 {
		return nil, fmt.Errorf("method call %s has no Go translation", e)
	}
	recv, err := x.expr(e.Recv)
	if err != nil {
		return nil, err
	}
	switch e.Name {
	case "is_null":
		return recv.Op("==").Nil(), nil
	case "is_negative":
		return recv.Op("<").Lit(0), nil
	case "is_positive":
		return recv.Op(">").Lit(0), nil
	}
	return nil, fmt.Errorf("method call %s has no Go translation", e)
}

func isNullCall(c *syntax.Call) bool {
	if len(c.Args) != 0 {
		return false
	}
	p, ok := c.Fun.(*syntax.PathExpr)
	if !ok || len(p.Segments) == 0 {
		return false
	}
	last := p.Segments[len(p.Segments)-1]
	return last == "null" || last == "null_mut"
}

// isNullExpr reports whether e denotes a null pointer.
func isNullExpr(e syntax.Expr) bool {
	switch e := e.(type) {
	case *syntax.NullPtr:
		return true
	case *syntax.Call:
		return isNullCall(e)
	case *syntax.PathExpr:
		return len(e.Segments) == 1 && (e.Segments[0] == "null" || e.Segments[0] == "null_mut")
	}
	return false
}
