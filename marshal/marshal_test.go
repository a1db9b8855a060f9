package marshal

import (
	"testing"

	"github.com/benn-herrera/cffigen/classify"
	"github.com/benn-herrera/cffigen/syntax"
)

func param(name, ty string) syntax.Param {
	return syntax.Param{Name: name, Type: syntax.MustParseType(ty)}
}

func TestPlanParameter_Rules(t *testing.T) {
	tests := []struct {
		ty        string
		rule      RuleID
		raw       string
		ownership Ownership
	}{
		{"Option<i32>", RuleOption, "i32", NoTemporary},
		{"impl AsRef<str>", RuleAsRef, "*const c_char", OwnedCString},
		{"&impl AsRef<String>", RuleAsRef, "*const c_char", OwnedCString},
		{"&mut impl AsRef<str>", RuleAsRef, "*const c_char", OwnedCString},
		{"impl AsRef<[u8]>", RuleAsRef, "*const c_char", OwnedCString},
		{"impl AsRef<[f32]>", RuleAsRef, "*const f32", Borrowed},
		{"impl AsRef<Vec<i16>>", RuleAsRef, "*const i16", Borrowed},
		{"impl AsRef<i32>", RulePassThrough, "impl AsRef<i32>", NoTemporary},
		{"impl AsRef<Path>", RulePassThrough, "impl AsRef<Path>", NoTemporary},
		{"&mut impl AsMut<[u8]>", RuleAsMut, "*mut u8", Borrowed},
		{"impl AsMut<Vec<i32>>", RuleAsMut, "*mut i32", Borrowed},
		{"impl ToString", RuleToString, "*const c_char", OwnedCString},
		{"impl Display", RuleToString, "*const c_char", OwnedCString},
		{"&impl Into<Vec<u8>>", RuleIntoVec, "*const u8", Borrowed},
		{"&mut impl Into<Vec<u8>>", RuleIntoVec, "*mut u8", Borrowed},
		{"impl Into<Vec<u16>>", RuleIntoVec, "*const u16", OwnedVec},
		{"[i32; 4]", RuleArray, "*const i32", Borrowed},
		{"&[i32; 4]", RuleArray, "*const i32", Borrowed},
		{"&mut [u8; 64]", RuleArray, "*mut u8", Borrowed},
		{"&[f64]", RuleSlice, "*const f64", Borrowed},
		{"&mut [f64]", RuleSlice, "*mut f64", Borrowed},
		{"Vec<u8>", RuleVec, "*const u8", Borrowed},
		{"&Vec<u8>", RuleVec, "*const u8", Borrowed},
		{"&mut Vec<u8>", RuleVec, "*mut u8", Borrowed},
		{"&str", RuleText, "*const c_char", OwnedCString},
		{"String", RuleText, "*const c_char", OwnedCString},
		{"&String", RuleText, "*const c_char", OwnedCString},
		{"&mut String", RuleText, "*mut c_char", LeakedCString},
		{"i32", RulePassThrough, "i32", NoTemporary},
		{"*mut c_void", RulePassThrough, "*mut c_void", NoTemporary},
	}
	for _, tt := range tests {
		pp := PlanParameter(param("p", tt.ty), Options{Convert: true})
		if pp.Rule != tt.rule {
			t.Errorf("%s: rule = %s, want %s", tt.ty, pp.Rule, tt.rule)
		}
		if pp.Raw.String() != tt.raw {
			t.Errorf("%s: raw = %s, want %s", tt.ty, pp.Raw, tt.raw)
		}
		if pp.Ownership != tt.ownership {
			t.Errorf("%s: ownership = %s, want %s", tt.ty, pp.Ownership, tt.ownership)
		}
		if pp.Wrapper.String() != syntax.MustParseType(tt.ty).String() {
			t.Errorf("%s: wrapper type changed to %s", tt.ty, pp.Wrapper)
		}
	}
}

func TestPlanParameter_RawIsPointerOrScalar(t *testing.T) {
	for _, ty := range []string{
		"impl AsRef<str>", "impl AsMut<[u8]>", "impl ToString", "&impl Into<Vec<u8>>",
		"[u8; 3]", "&[u8]", "Vec<u8>", "&str", "&mut String", "u32",
	} {
		pp := PlanParameter(param("p", ty), Options{Convert: true})
		switch raw := pp.Raw.(type) {
		case *syntax.Ptr:
		case *syntax.Path:
			if raw.Ident() == "" {
				t.Errorf("%s: raw type %s is not a scalar", ty, raw)
			}
		default:
			t.Errorf("%s: raw type %s (%T) is an aggregate", ty, raw, raw)
		}
	}
}

func TestPlanParameter_StrHolderBeforePointer(t *testing.T) {
	pp := PlanParameter(param("s", "&str"), Options{Convert: true})
	if pp.Raw.String() != "*const c_char" {
		t.Fatalf("expected *const c_char, got %s", pp.Raw)
	}
	if pp.Wrapper.String() != "&str" {
		t.Errorf("expected wrapper type &str, got %s", pp.Wrapper)
	}
	if len(pp.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(pp.Steps))
	}
	if pp.Steps[0].Op != CString || pp.Steps[0].Bind != "s_holder" {
		t.Errorf("first step must bind the holder, got %s", pp.Steps[0])
	}
	if pp.Steps[1].Op != Pointer || pp.Steps[1].Source != "s_holder" || pp.Steps[1].Bind != "s_ptr" {
		t.Errorf("second step must derive the pointer from the holder, got %s", pp.Steps[1])
	}
	if pp.CallArg != "s_ptr" {
		t.Errorf("expected call argument s_ptr, got %s", pp.CallArg)
	}
	if !pp.Ownership.OwnsTemporary() {
		t.Error("expected an owned temporary")
	}
}

func TestPlanParameter_OwnedTemporariesOrdered(t *testing.T) {
	for _, ty := range []string{"impl AsRef<str>", "impl ToString", "&str", "String", "&String", "impl Into<Vec<u8>>"} {
		pp := PlanParameter(param("v", ty), Options{Convert: true})
		holderAt, pointerAt := -1, -1
		for i, s := range pp.Steps {
			if s.Bind == pp.Holder {
				holderAt = i
			}
			if s.Bind == pp.Pointer {
				pointerAt = i
				if s.Source != pp.Holder {
					t.Errorf("%s: pointer derived from %q, not the holder", ty, s.Source)
				}
			}
		}
		if holderAt < 0 || pointerAt < 0 || holderAt >= pointerAt {
			t.Errorf("%s: holder step %d must precede pointer step %d", ty, holderAt, pointerAt)
		}
	}
}

func TestPlanParameter_OptionDefault(t *testing.T) {
	pp := PlanParameter(param("p", "Option<i32>"), Options{Convert: true})
	if _, ok := pp.Steps[0].Default.(*syntax.ZeroValue); !ok {
		t.Errorf("expected zero value default, got %v", pp.Steps[0].Default)
	}
	pp = PlanParameter(param("p", "Option<*const u8>"), Options{Convert: true, Default: &syntax.NullPtr{}})
	if pp.Steps[0].Default.String() != "std::ptr::null()" {
		t.Errorf("expected null default, got %s", pp.Steps[0].Default)
	}
	if pp.CallArg != "p_value" {
		t.Errorf("expected unwrapped binding p_value, got %s", pp.CallArg)
	}
}

func TestPlanParameter_ConversionDisabled(t *testing.T) {
	for _, ty := range []string{"&str", "Option<i32>", "impl AsRef<str>", "&mut [u8]"} {
		pp := PlanParameter(param("p", ty), Options{Convert: false})
		if pp.Rule != RulePassThrough {
			t.Errorf("%s: expected pass-through with conversion disabled, got %s", ty, pp.Rule)
		}
		if pp.Raw.String() != ty || len(pp.Steps) != 0 || pp.CallArg != "p" {
			t.Errorf("%s: expected unchanged parameter, got raw=%s steps=%d arg=%s", ty, pp.Raw, len(pp.Steps), pp.CallArg)
		}
	}
}

func TestRules_Order(t *testing.T) {
	want := []RuleID{
		RuleOption, RuleAsRef, RuleAsMut, RuleToString, RuleIntoVec,
		RuleArray, RuleSlice, RuleVec, RuleText,
	}
	if len(Rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(Rules))
	}
	for i, r := range Rules {
		if r.ID != want[i] {
			t.Errorf("rule %d = %s, want %s", i, r.ID, want[i])
		}
	}
}

func TestRules_FirstMatchWins(t *testing.T) {
	// Option<&str> would match the text rule on its payload, but the option
	// rule comes first and passes the payload through.
	pp := PlanParameter(param("p", "Option<&str>"), Options{Convert: true})
	if pp.Rule != RuleOption {
		t.Fatalf("expected option rule, got %s", pp.Rule)
	}
	if pp.Raw.String() != "&str" {
		t.Errorf("expected payload to pass through, got %s", pp.Raw)
	}
	if pp.Shape.Kind != classify.Optional {
		t.Errorf("expected recorded shape Optional, got %s", pp.Shape.Kind)
	}
}

func TestPlanParameter_MutStringLeaks(t *testing.T) {
	pp := PlanParameter(param("buf", "&mut String"), Options{Convert: true})
	if pp.Ownership != LeakedCString {
		t.Fatalf("expected leaked ownership, got %s", pp.Ownership)
	}
	if pp.Ownership.OwnsTemporary() {
		t.Error("a leaked copy is not a wrapper-owned temporary")
	}
	if pp.Holder != "" {
		t.Errorf("expected no holder binding, got %q", pp.Holder)
	}
}

func TestPlanParameter_BindingsAvoidTakenNames(t *testing.T) {
	taken := map[string]bool{"s": true, "s_ptr": true, "s_holder_": true}
	pp := PlanParameter(param("s", "&str"), Options{Convert: true, Taken: taken})
	if pp.Holder != "s_holder" || pp.Pointer != "s_ptr_" {
		t.Errorf("bindings = %q, %q; want s_holder, s_ptr_", pp.Holder, pp.Pointer)
	}
	if pp.CallArg != "s_ptr_" || pp.Steps[1].Source != "s_holder" {
		t.Errorf("steps not renamed: %v, call %s", pp.Steps, pp.CallArg)
	}
	if !taken["s_holder"] || !taken["s_ptr_"] {
		t.Error("chosen bindings must be recorded as taken")
	}

	opt := PlanParameter(param("v", "Option<i32>"), Options{Convert: true, Taken: map[string]bool{"v_value": true}})
	if opt.CallArg != "v_value_" {
		t.Errorf("option binding = %q, want v_value_", opt.CallArg)
	}
}
