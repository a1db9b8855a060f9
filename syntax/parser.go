package syntax

import (
	"fmt"
)

type parser struct {
	src  string
	toks []Token
	i    int
}

func newParser(src string) (*parser, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, toks: toks}, nil
}

func (p *parser) peek() Token { return p.peekAt(0) }

func (p *parser) peekAt(n int) Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return tok
}

// is reports whether the current token is the punctuation or keyword text.
func (p *parser) is(text string) bool {
	tok := p.peek()
	return (tok.Kind == Punct || tok.Kind == Ident) && tok.Text == text
}

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(text string) (Token, error) {
	if !p.is(text) {
		return Token{}, p.errorf(p.peek(), "expected %q, found %s", text, describe(p.peek()))
	}
	return p.next(), nil
}

func (p *parser) expectEOF() error {
	if tok := p.peek(); tok.Kind != EOF {
		return p.errorf(tok, "unexpected %s", describe(tok))
	}
	return nil
}

// isCloseAngle reports whether the current token starts with '>'.
func (p *parser) isCloseAngle() bool {
	tok := p.peek()
	return tok.Kind == Punct && (tok.Text == ">" || tok.Text == ">>" || tok.Text == ">=")
}

// closeAngle consumes a single '>', splitting ">>" and ">=" when generic
// argument lists close back to back.
func (p *parser) closeAngle() error {
	tok := p.peek()
	if tok.Kind != Punct {
		return p.errorf(tok, "expected \">\", found %s", describe(tok))
	}
	switch tok.Text {
	case ">":
		p.next()
		return nil
	case ">>", ">=":
		rest := Token{Kind: Punct, Text: tok.Text[1:], Value: tok.Text[1:], Pos: tok.Pos + 1}
		p.toks[p.i] = rest
		return nil
	}
	return p.errorf(tok, "expected \">\", found %s", describe(tok))
}

func (p *parser) errorf(tok Token, format string, args ...any) error {
	return &Error{Src: p.src, Offset: tok.Pos, Msg: fmt.Sprintf(format, args...)}
}

func describe(tok Token) string {
	if tok.Kind == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", tok.Kind, tok.Text)
}
