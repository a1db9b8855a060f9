package gen

import (
	"fmt"
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/benn-herrera/cffigen/syntax"
)

const cffiPath = "github.com/benn-herrera/cffigen/cffi"

var goScalars = map[string]string{
	"i8":          "int8",
	"i16":         "int16",
	"i32":         "int32",
	"i64":         "int64",
	"u8":          "uint8",
	"u16":         "uint16",
	"u32":         "uint32",
	"u64":         "uint64",
	"isize":       "int",
	"usize":       "uint",
	"f32":         "float32",
	"f64":         "float64",
	"bool":        "bool",
	"c_char":      "byte",
	"c_schar":     "int8",
	"c_uchar":     "byte",
	"c_short":     "int16",
	"c_ushort":    "uint16",
	"c_int":       "int32",
	"c_uint":      "uint32",
	"c_longlong":  "int64",
	"c_ulonglong": "uint64",
	"c_float":     "float32",
	"c_double":    "float64",
}

// goScalar returns the Go type for a scalar foreign type.
func goScalar(t syntax.Type) (*jen.Statement, error) {
	if p, ok := t.(*syntax.Path); ok && len(p.TypeArgs()) == 0 {
		if g, ok := goScalars[p.Last().Name]; ok {
			return jen.Id(g), nil
		}
	}
	return nil, fmt.Errorf("type %s has no Go scalar representation", t)
}

// goRawType returns the Go type a value has when it crosses the foreign
// boundary unconverted. Text types map to string, which the call layer
// copies to a NUL-terminated buffer for the duration of the call.
func goRawType(t syntax.Type) (*jen.Statement, error) {
	switch t := t.(type) {
	case *syntax.Path:
		if len(t.TypeArgs()) == 0 {
			if g, ok := goScalars[t.Last().Name]; ok {
				return jen.Id(g), nil
			}
			if t.Last().Name == "String" {
				return jen.String(), nil
			}
		}
	case *syntax.Ref:
		if p, ok := t.Elem.(*syntax.Path); ok && !t.Mut && (p.Ident() == "str" || p.Ident() == "String") {
			return jen.String(), nil
		}
		return goPointer(t, t.Elem)
	case *syntax.Ptr:
		return goPointer(t, t.Elem)
	}
	return nil, fmt.Errorf("type %s cannot cross the foreign boundary without conversion", t)
}

// goPointer maps a pointer to a scalar to *T, a pointer to a pointer to
// **T, and a pointer to anything opaque to unsafe.Pointer.
func goPointer(whole, elem syntax.Type) (*jen.Statement, error) {
	switch e := elem.(type) {
	case *syntax.Path:
		if len(e.TypeArgs()) == 0 {
			name := e.Last().Name
			if g, ok := goScalars[name]; ok {
				return jen.Op("*").Id(g), nil
			}
			if !rustOnly[name] {
				return jen.Qual("unsafe", "Pointer"), nil
			}
		}
	case *syntax.Ptr:
		inner, err := goRawType(e)
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(inner), nil
	}
	return nil, fmt.Errorf("type %s cannot cross the foreign boundary without conversion", whole)
}

// isGoPointer reports whether t maps to a Go pointer type.
func isGoPointer(t syntax.Type) bool {
	switch t := t.(type) {
	case *syntax.Ptr:
		return true
	case *syntax.Ref:
		p, ok := t.Elem.(*syntax.Path)
		return !ok || t.Mut || (p.Ident() != "str" && p.Ident() != "String")
	}
	return false
}

// arrayLen returns the length of a possibly borrowed array type.
func arrayLen(t syntax.Type) (int, error) {
	for {
		r, ok := t.(*syntax.Ref)
		if !ok {
			break
		}
		t = r.Elem
	}
	a, ok := t.(*syntax.Array)
	if !ok {
		return 0, fmt.Errorf("type %s is not an array", t)
	}
	lit, ok := a.Len.(*syntax.Lit)
	if !ok || lit.Kind != syntax.IntLit {
		return 0, fmt.Errorf("array length %s must be an integer literal", a.Len)
	}
	n, err := strconv.ParseInt(lit.Value, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("array length %s: %w", a.Len, err)
	}
	return int(n), nil
}

var goReserved = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
	// names the generated code itself refers to
	"string": true, "len": true, "nil": true, "true": true, "false": true,
	"result": true, "err": true, "cffi": true, "fmt": true, "math": true,
	"unsafe": true, "library": true, "uintptr": true,
}

// goIdent escapes a declared parameter name that would clash with a Go
// keyword or a name the wrapper body uses.
func goIdent(name string) string {
	if goReserved[name] {
		return name + "_"
	}
	return name
}
