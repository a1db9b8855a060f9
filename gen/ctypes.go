package gen

import (
	"fmt"

	"github.com/benn-herrera/cffigen/syntax"
)

var cScalars = map[string]string{
	"i8":          "int8_t",
	"i16":         "int16_t",
	"i32":         "int32_t",
	"i64":         "int64_t",
	"u8":          "uint8_t",
	"u16":         "uint16_t",
	"u32":         "uint32_t",
	"u64":         "uint64_t",
	"isize":       "intptr_t",
	"usize":       "size_t",
	"f32":         "float",
	"f64":         "double",
	"bool":        "bool",
	"c_char":      "char",
	"c_schar":     "signed char",
	"c_uchar":     "unsigned char",
	"c_short":     "short",
	"c_ushort":    "unsigned short",
	"c_int":       "int",
	"c_uint":      "unsigned int",
	"c_long":      "long",
	"c_ulong":     "unsigned long",
	"c_longlong":  "long long",
	"c_ulonglong": "unsigned long long",
	"c_float":     "float",
	"c_double":    "double",
	"c_void":      "void",
}

// CType returns the C spelling of a raw foreign type. Raw pointers to
// named types the table does not know keep the name as an opaque struct.
func CType(t syntax.Type) (string, error) {
	switch t := t.(type) {
	case *syntax.Path:
		name := t.Last().Name
		if len(t.TypeArgs()) == 0 {
			if c, ok := cScalars[name]; ok {
				return c, nil
			}
		}
		return "", fmt.Errorf("type %s has no C representation", t)
	case *syntax.Ptr:
		elem, err := cPointee(t.Elem)
		if err != nil {
			return "", err
		}
		if t.Mut {
			return elem + "*", nil
		}
		return "const " + elem + "*", nil
	case *syntax.Ref:
		return CType(&syntax.Ptr{Mut: t.Mut, Elem: t.Elem})
	}
	return "", fmt.Errorf("type %s has no C representation", t)
}

// rustOnly names types that have no C layout, so a pointer to one is not
// an opaque struct pointer.
var rustOnly = map[string]bool{"str": true, "String": true, "Vec": true, "Option": true, "Box": true}

func cPointee(t syntax.Type) (string, error) {
	if p, ok := t.(*syntax.Path); ok && len(p.TypeArgs()) == 0 && !rustOnly[p.Last().Name] {
		if _, known := cScalars[p.Last().Name]; !known {
			return "struct " + p.Last().Name, nil
		}
	}
	return CType(t)
}

// CReturnType returns the C return type; nil is the unit type.
func CReturnType(t syntax.Type) (string, error) {
	if t == nil {
		return "void", nil
	}
	return CType(t)
}
