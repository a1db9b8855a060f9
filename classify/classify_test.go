package classify

import (
	"testing"

	"github.com/benn-herrera/cffigen/syntax"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		ref   RefKind
		elem  string
	}{
		{"Option<i32>", Optional, ByValue, "i32"},
		{"Option<&str>", Optional, ByValue, "&str"},
		{"impl AsRef<str>", AsRef, ByValue, "str"},
		{"&impl AsRef<[u8]>", AsRef, Shared, "[u8]"},
		{"&mut impl AsRef<String>", AsRef, Mutable, "String"},
		{"impl AsRef<[f32]>", AsRef, ByValue, "[f32]"},
		{"impl AsRef<Vec<u16>>", AsRef, ByValue, "Vec<u16>"},
		{"impl AsRef<i32>", PassThrough, ByValue, ""},
		{"&impl AsRef<Path>", PassThrough, ByValue, ""},
		{"&mut impl AsMut<[u8]>", AsMut, Mutable, "u8"},
		{"impl AsMut<Vec<i16>>", AsMut, Mutable, "i16"},
		{"impl ToString", Stringify, ByValue, ""},
		{"&impl Display", Stringify, Shared, ""},
		{"&impl Into<Vec<u8>>", IntoVec, Shared, "u8"},
		{"&mut impl Into<Vec<u32>>", IntoVec, Mutable, "u32"},
		{"impl Into<Vec<u8>>", IntoVec, ByValue, "u8"},
		{"[i32; 4]", Array, ByValue, "i32"},
		{"&[i32; 4]", Array, Shared, "i32"},
		{"&mut [u8; 256]", Array, Mutable, "u8"},
		{"&[f64]", Slice, Shared, "f64"},
		{"&mut [u8]", Slice, Mutable, "u8"},
		{"Vec<u8>", Vec, ByValue, "u8"},
		{"&Vec<i32>", Vec, Shared, "i32"},
		{"&mut Vec<i32>", Vec, Mutable, "i32"},
		{"&str", Text, Shared, ""},
		{"&'static str", Text, Shared, ""},
		{"String", Text, ByValue, ""},
		{"&String", Text, Shared, ""},
		{"&mut String", Text, Mutable, ""},
		{"i32", PassThrough, ByValue, ""},
		{"*const c_char", PassThrough, ByValue, ""},
		{"str", PassThrough, ByValue, ""},
		{"[u8]", PassThrough, ByValue, ""},
		{"impl AsMut<i32>", PassThrough, ByValue, ""},
		{"impl Into<String>", PassThrough, ByValue, ""},
		{"HashMap<String, i32>", PassThrough, ByValue, ""},
	}
	for _, tt := range tests {
		shape := Classify(syntax.MustParseType(tt.input))
		if shape.Kind != tt.kind {
			t.Errorf("Classify(%q).Kind = %s, want %s", tt.input, shape.Kind, tt.kind)
			continue
		}
		if shape.Kind == PassThrough {
			continue
		}
		if shape.Ref != tt.ref {
			t.Errorf("Classify(%q).Ref = %s, want %s", tt.input, shape.Ref, tt.ref)
		}
		got := ""
		if shape.Elem != nil {
			got = shape.Elem.String()
		}
		if got != tt.elem {
			t.Errorf("Classify(%q).Elem = %q, want %q", tt.input, got, tt.elem)
		}
	}
}

func TestClassify_OptionBeatsEverything(t *testing.T) {
	// An option of a text type is still an option; the payload is not
	// reclassified at this level.
	shape := Classify(syntax.MustParseType("Option<Vec<u8>>"))
	if shape.Kind != Optional {
		t.Fatalf("expected Optional, got %s", shape.Kind)
	}
	if Classify(shape.Elem).Kind != Vec {
		t.Errorf("expected inner type to classify as Vec")
	}
}

func TestClassify_OwnedText(t *testing.T) {
	if s := Classify(syntax.MustParseType("String")); !s.Owned {
		t.Error("expected String to be owned text")
	}
	if s := Classify(syntax.MustParseType("&str")); s.Owned {
		t.Error("expected &str to be borrowed text")
	}
}

func TestTypeEq(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"&'a str", "&str", true},
		{"&'a str", "&'b str", true},
		{"Cow<'a, str>", "Cow<str>", true},
		{"Vec<u8>", "Vec<u8>", true},
		{"Vec<u8>", "Vec<i8>", false},
		{"&str", "&mut str", false},
		{"*const u8", "*mut u8", false},
		{"[u8; 4]", "[u8; 4]", true},
		{"[u8; 4]", "[u8; 8]", false},
		{"[u8]", "[u8; 4]", false},
		{"std::ffi::c_char", "c_char", false},
		{"impl AsRef<str>", "impl AsRef<str>", true},
		{"(i32, u8)", "(i32, u8)", true},
		{"(i32, u8)", "(u8, i32)", false},
	}
	for _, tt := range tests {
		got := TypeEq(syntax.MustParseType(tt.a), syntax.MustParseType(tt.b))
		if got != tt.want {
			t.Errorf("TypeEq(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIsTextTarget(t *testing.T) {
	for input, want := range map[string]bool{
		"str":    true,
		"String": true,
		"[u8]":   true,
		"[i8]":   false,
		"Path":   false,
	} {
		if got := IsTextTarget(syntax.MustParseType(input)); got != want {
			t.Errorf("IsTextTarget(%q) = %v, want %v", input, got, want)
		}
	}
}
