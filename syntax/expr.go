package syntax

import (
	"strings"
)

// Expr is an expression fragment, as used in error conditions, default
// values and array lengths.
type Expr interface {
	String() string
	exprNode()
}

// LitKind is the class of a literal.
type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	StrLit
	CharLit
	BoolLit
)

// Lit is a literal. Raw is the source text; Value is the decoded value
// without suffix or underscores.
type Lit struct {
	Kind   LitKind
	Raw    string
	Value  string
	Suffix string
}

// PathExpr names a value: a local (result), a constant (i32::MAX) or a
// function (std::ptr::null).
type PathExpr struct {
	Segments []string
}

type Unary struct {
	Op string // "-", "!", "*", "&", "&mut"
	X  Expr
}

type Binary struct {
	Op   string
	X, Y Expr
}

// Cast is X as T.
type Cast struct {
	X    Expr
	Type Type
}

type Call struct {
	Fun  Expr
	Args []Expr
}

type MethodCall struct {
	Recv Expr
	Name string
	Args []Expr
}

type Field struct {
	X    Expr
	Name string
}

type Paren struct {
	X Expr
}

// NullPtr is a null raw pointer of either mutability.
type NullPtr struct {
	Mut bool
}

// ZeroValue is the default value of whatever type is expected.
type ZeroValue struct{}

func (*Lit) exprNode()        {}
func (*PathExpr) exprNode()   {}
func (*Unary) exprNode()      {}
func (*Binary) exprNode()     {}
func (*Cast) exprNode()       {}
func (*Call) exprNode()       {}
func (*MethodCall) exprNode() {}
func (*Field) exprNode()      {}
func (*Paren) exprNode()      {}
func (*NullPtr) exprNode()    {}
func (*ZeroValue) exprNode()  {}

func (l *Lit) String() string      { return l.Raw }
func (p *PathExpr) String() string { return strings.Join(p.Segments, "::") }

func (u *Unary) String() string {
	if u.Op == "&mut" {
		return "&mut " + u.X.String()
	}
	return u.Op + u.X.String()
}

func (b *Binary) String() string { return b.X.String() + " " + b.Op + " " + b.Y.String() }
func (c *Cast) String() string   { return c.X.String() + " as " + c.Type.String() }

func (c *Call) String() string { return c.Fun.String() + "(" + joinExprs(c.Args) + ")" }

func (m *MethodCall) String() string {
	return m.Recv.String() + "." + m.Name + "(" + joinExprs(m.Args) + ")"
}

func (f *Field) String() string { return f.X.String() + "." + f.Name }
func (p *Paren) String() string { return "(" + p.X.String() + ")" }

func (n *NullPtr) String() string {
	if n.Mut {
		return "std::ptr::null_mut()"
	}
	return "std::ptr::null()"
}

func (*ZeroValue) String() string { return "Default::default()" }

func joinExprs(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// Binding powers, loosest first.
const (
	precOr = iota + 1
	precAnd
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdd
	precMul
	precCast
	precUnary
)

var binaryPrec = map[string]int{
	"||": precOr,
	"&&": precAnd,
	"==": precCompare, "!=": precCompare,
	"<": precCompare, ">": precCompare, "<=": precCompare, ">=": precCompare,
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"<<": precShift, ">>": precShift,
	"+": precAdd, "-": precAdd,
	"*": precMul, "/": precMul, "%": precMul,
}

// ParseExpr parses a complete expression fragment.
func ParseExpr(src string) (Expr, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	if p.peek().Kind == EOF {
		return nil, p.errorf(p.peek(), "empty expression")
	}
	e, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return e, nil
}

// MustParseExpr is like ParseExpr but panics on error.
func MustParseExpr(src string) Expr {
	e, err := ParseExpr(src)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) parseExpr(minPrec int) (Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind == Ident && tok.Text == "as" {
			if precCast <= minPrec {
				return x, nil
			}
			p.next()
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			x = &Cast{X: x, Type: t}
			continue
		}
		if tok.Kind != Punct {
			return x, nil
		}
		prec, ok := binaryPrec[tok.Text]
		if !ok || prec <= minPrec {
			return x, nil
		}
		p.next()
		y, err := p.parseExpr(prec)
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: tok.Text, X: x, Y: y}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	tok := p.peek()
	if tok.Kind == Punct {
		switch tok.Text {
		case "-", "!", "*", "&":
			p.next()
			op := tok.Text
			if op == "&" && p.accept("mut") {
				op = "&mut"
			}
			// binds tighter than as: -1 as i32 is (-1) as i32
			x, err := p.parseExpr(precCast)
			if err != nil {
				return nil, err
			}
			return &Unary{Op: op, X: x}, nil
		}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.is("("):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			x = &Call{Fun: x, Args: args}
		case p.is("."):
			p.next()
			name := p.next()
			if name.Kind != Ident && name.Kind != Int {
				return nil, p.errorf(name, "expected field or method name, found %s", describe(name))
			}
			if p.is("(") {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				x = &MethodCall{Recv: x, Name: name.Text, Args: args}
			} else {
				x = &Field{X: x, Name: name.Text}
			}
		default:
			return x, nil
		}
	}
}

func (p *parser) parseArgs() ([]Expr, error) {
	p.next() // (
	var args []Expr
	for !p.is(")") {
		a, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parseOperand() (Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case Int:
		p.next()
		return &Lit{Kind: IntLit, Raw: tok.Text, Value: tok.Value, Suffix: tok.Suffix}, nil
	case Float:
		p.next()
		return &Lit{Kind: FloatLit, Raw: tok.Text, Value: tok.Value, Suffix: tok.Suffix}, nil
	case String:
		p.next()
		return &Lit{Kind: StrLit, Raw: tok.Text, Value: tok.Value}, nil
	case Char:
		p.next()
		return &Lit{Kind: CharLit, Raw: tok.Text, Value: tok.Value}, nil
	case Ident:
		if tok.Text == "true" || tok.Text == "false" {
			p.next()
			return &Lit{Kind: BoolLit, Raw: tok.Text, Value: tok.Text}, nil
		}
		if tok.Text == "as" || tok.Text == "fn" || tok.Text == "let" {
			return nil, p.errorf(tok, "unexpected keyword %q", tok.Text)
		}
		path := &PathExpr{Segments: []string{p.next().Text}}
		for p.is("::") {
			p.next()
			seg := p.peek()
			if seg.Kind != Ident {
				return nil, p.errorf(seg, "expected identifier after ::, found %s", describe(seg))
			}
			path.Segments = append(path.Segments, p.next().Text)
		}
		return path, nil
	case Punct:
		if tok.Text == "(" {
			p.next()
			x, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
			return &Paren{X: x}, nil
		}
	}
	return nil, p.errorf(tok, "expected expression, found %s", describe(tok))
}
