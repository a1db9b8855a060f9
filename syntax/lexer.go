// Package syntax parses the declaration notation used in definition files:
// parameter and return types, expression fragments (error conditions and
// default values), function signatures and key/value annotations.
package syntax

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	EOF TokenKind = iota
	Ident
	Int
	Float
	String
	Char
	LifetimeTok
	Punct
)

func (k TokenKind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Ident:
		return "identifier"
	case Int:
		return "integer literal"
	case Float:
		return "float literal"
	case String:
		return "string literal"
	case Char:
		return "char literal"
	case LifetimeTok:
		return "lifetime"
	case Punct:
		return "punctuation"
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is a single lexical unit. Text is the exact source text; for string
// and char literals Value holds the decoded contents, for numeric literals
// Value holds the digits and Suffix the type suffix (e.g. "i32").
type Token struct {
	Kind   TokenKind
	Text   string
	Value  string
	Suffix string
	Pos    int
}

// Error is a parse failure at a byte offset in the source.
type Error struct {
	Src    string
	Offset int
	Msg    string
}

func (e *Error) Error() string {
	if e.Src == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s at offset %d in %q", e.Msg, e.Offset, e.Src)
}

// multi-character operators, longest first
var puncts = []string{
	"::", "->", "=>", "==", "!=", "<=", ">=", "&&", "||", "<<", ">>", "...", "..",
}

type lexer struct {
	src  string
	pos  int
	toks []Token
}

// Tokenize splits src into tokens, terminated by an EOF token.
func Tokenize(src string) ([]Token, error) {
	lx := &lexer{src: src}
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		lx.toks = append(lx.toks, tok)
		if tok.Kind == EOF {
			return lx.toks, nil
		}
	}
}

func (lx *lexer) errorf(pos int, format string, args ...any) error {
	return &Error{Src: lx.src, Offset: pos, Msg: fmt.Sprintf(format, args...)}
}

func (lx *lexer) peekRune(off int) rune {
	if lx.pos+off >= len(lx.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos+off:])
	return r
}

func (lx *lexer) next() (Token, error) {
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		lx.pos += size
	}
	start := lx.pos
	if start >= len(lx.src) {
		return Token{Kind: EOF, Pos: start}, nil
	}

	c := lx.src[start]
	switch {
	case isIdentStart(rune(c)):
		lx.pos++
		for lx.pos < len(lx.src) && isIdentPart(rune(lx.src[lx.pos])) {
			lx.pos++
		}
		text := lx.src[start:lx.pos]
		return Token{Kind: Ident, Text: text, Value: text, Pos: start}, nil
	case c >= '0' && c <= '9':
		return lx.number(start)
	case c == '"':
		return lx.str(start)
	case c == '\'':
		return lx.quote(start)
	}

	for _, p := range puncts {
		if strings.HasPrefix(lx.src[start:], p) {
			lx.pos += len(p)
			return Token{Kind: Punct, Text: p, Value: p, Pos: start}, nil
		}
	}
	if strings.ContainsRune("()[]{}<>,;:=+-*/%&|^!.#?", rune(c)) {
		lx.pos++
		return Token{Kind: Punct, Text: string(c), Value: string(c), Pos: start}, nil
	}
	return Token{}, lx.errorf(start, "unexpected character %q", rune(c))
}

func (lx *lexer) number(start int) (Token, error) {
	kind := Int
	digits := func(ok func(byte) bool) {
		for lx.pos < len(lx.src) && (ok(lx.src[lx.pos]) || lx.src[lx.pos] == '_') {
			lx.pos++
		}
	}
	isDec := func(b byte) bool { return b >= '0' && b <= '9' }
	isHex := func(b byte) bool {
		return isDec(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
	}

	if strings.HasPrefix(lx.src[start:], "0x") || strings.HasPrefix(lx.src[start:], "0X") {
		lx.pos += 2
		digits(isHex)
	} else if strings.HasPrefix(lx.src[start:], "0b") || strings.HasPrefix(lx.src[start:], "0o") {
		lx.pos += 2
		digits(isDec)
	} else {
		digits(isDec)
		// "1.5" is a float, "1.max(2)" and "1..2" are not
		if lx.pos+1 < len(lx.src) && lx.src[lx.pos] == '.' && isDec(lx.src[lx.pos+1]) {
			kind = Float
			lx.pos++
			digits(isDec)
		}
		if lx.pos < len(lx.src) && (lx.src[lx.pos] == 'e' || lx.src[lx.pos] == 'E') {
			save := lx.pos
			lx.pos++
			if lx.pos < len(lx.src) && (lx.src[lx.pos] == '+' || lx.src[lx.pos] == '-') {
				lx.pos++
			}
			if lx.pos < len(lx.src) && isDec(lx.src[lx.pos]) {
				kind = Float
				digits(isDec)
			} else {
				lx.pos = save
			}
		}
	}
	value := lx.src[start:lx.pos]

	sufStart := lx.pos
	if lx.pos < len(lx.src) && isIdentStart(rune(lx.src[lx.pos])) {
		for lx.pos < len(lx.src) && isIdentPart(rune(lx.src[lx.pos])) {
			lx.pos++
		}
	}
	suffix := lx.src[sufStart:lx.pos]
	if suffix != "" && !validSuffix(suffix) {
		return Token{}, lx.errorf(sufStart, "invalid literal suffix %q", suffix)
	}
	if suffix == "f32" || suffix == "f64" {
		kind = Float
	}
	return Token{
		Kind:   kind,
		Text:   lx.src[start:lx.pos],
		Value:  strings.ReplaceAll(value, "_", ""),
		Suffix: suffix,
		Pos:    start,
	}, nil
}

func validSuffix(s string) bool {
	switch s {
	case "i8", "i16", "i32", "i64", "i128", "isize",
		"u8", "u16", "u32", "u64", "u128", "usize",
		"f32", "f64":
		return true
	}
	return false
}

func (lx *lexer) str(start int) (Token, error) {
	lx.pos++
	var b strings.Builder
	for {
		if lx.pos >= len(lx.src) {
			return Token{}, lx.errorf(start, "unterminated string literal")
		}
		c := lx.src[lx.pos]
		if c == '"' {
			lx.pos++
			break
		}
		if c == '\\' {
			r, err := lx.escape()
			if err != nil {
				return Token{}, err
			}
			b.WriteRune(r)
			continue
		}
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		b.WriteRune(r)
		lx.pos += size
	}
	return Token{Kind: String, Text: lx.src[start:lx.pos], Value: b.String(), Pos: start}, nil
}

// quote lexes either a lifetime ('a) or a char literal ('a').
func (lx *lexer) quote(start int) (Token, error) {
	if isIdentStart(lx.peekRune(1)) {
		end := lx.pos + 1
		for end < len(lx.src) && isIdentPart(rune(lx.src[end])) {
			end++
		}
		if end >= len(lx.src) || lx.src[end] != '\'' {
			lx.pos = end
			text := lx.src[start:end]
			return Token{Kind: LifetimeTok, Text: text, Value: text[1:], Pos: start}, nil
		}
	}
	lx.pos++
	var r rune
	if lx.pos < len(lx.src) && lx.src[lx.pos] == '\\' {
		var err error
		if r, err = lx.escape(); err != nil {
			return Token{}, err
		}
	} else {
		var size int
		r, size = utf8.DecodeRuneInString(lx.src[lx.pos:])
		if size == 0 {
			return Token{}, lx.errorf(start, "unterminated char literal")
		}
		lx.pos += size
	}
	if lx.pos >= len(lx.src) || lx.src[lx.pos] != '\'' {
		return Token{}, lx.errorf(start, "unterminated char literal")
	}
	lx.pos++
	return Token{Kind: Char, Text: lx.src[start:lx.pos], Value: string(r), Pos: start}, nil
}

func (lx *lexer) escape() (rune, error) {
	at := lx.pos
	lx.pos++ // backslash
	if lx.pos >= len(lx.src) {
		return 0, lx.errorf(at, "unterminated escape")
	}
	c := lx.src[lx.pos]
	lx.pos++
	switch c {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case '0':
		return 0, nil
	case '\\', '"', '\'':
		return rune(c), nil
	case 'x':
		if lx.pos+2 > len(lx.src) {
			return 0, lx.errorf(at, "short \\x escape")
		}
		var v rune
		for _, h := range lx.src[lx.pos : lx.pos+2] {
			d := hexVal(h)
			if d < 0 {
				return 0, lx.errorf(at, "invalid \\x escape")
			}
			v = v*16 + d
		}
		lx.pos += 2
		return v, nil
	case 'u':
		if lx.pos >= len(lx.src) || lx.src[lx.pos] != '{' {
			return 0, lx.errorf(at, "invalid \\u escape")
		}
		end := strings.IndexByte(lx.src[lx.pos:], '}')
		if end < 2 {
			return 0, lx.errorf(at, "invalid \\u escape")
		}
		var v rune
		for _, h := range lx.src[lx.pos+1 : lx.pos+end] {
			d := hexVal(h)
			if d < 0 {
				return 0, lx.errorf(at, "invalid \\u escape")
			}
			v = v*16 + d
		}
		lx.pos += end + 1
		return v, nil
	}
	return 0, lx.errorf(at, "unknown escape \\%c", c)
}

func hexVal(r rune) rune {
	switch {
	case r >= '0' && r <= '9':
		return r - '0'
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10
	case r >= 'A' && r <= 'F':
		return r - 'A' + 10
	}
	return -1
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// IsIdent reports whether s is a plain identifier.
func IsIdent(s string) bool {
	if s == "" || !isIdentStart(rune(s[0])) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(rune(s[i])) {
			return false
		}
	}
	return true
}
