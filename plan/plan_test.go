package plan

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/benn-herrera/cffigen/loader"
	"github.com/benn-herrera/cffigen/marshal"
	"github.com/benn-herrera/cffigen/model"
	"github.com/benn-herrera/cffigen/resolver"
)

func scopeFrom(t *testing.T, config []string, fns ...model.FunctionDef) *model.Scope {
	t.Helper()
	scope, err := loader.Parse(&model.Definition{Config: config, Functions: fns})
	if err != nil {
		t.Fatalf("parsing scope: %v", err)
	}
	return scope
}

func sig(s string, attrs ...string) model.FunctionDef {
	return model.FunctionDef{Sig: s, Attrs: attrs}
}

var baseConfig = []string{`library_name = "DxLib_x64"`, "arg_convert = default"}

func withBase(extra ...string) []string {
	return append(append([]string{}, baseConfig...), extra...)
}

func loadModule(t *testing.T, name string) *ModulePlan {
	t.Helper()
	_, scope, err := loader.LoadScope(filepath.Join("..", "testdata", name))
	if err != nil {
		t.Fatalf("loading %s: %v", name, err)
	}
	mp, err := BuildModule(scope)
	if err != nil {
		t.Fatalf("building %s: %v", name, err)
	}
	return mp
}

func TestBuildModule_DxLib(t *testing.T) {
	mp := loadModule(t, "dxlib.yaml")
	if mp.Library != "DxLib_x64" || mp.CallingConvention != "stdcall" || mp.LinkKind != "" {
		t.Errorf("unexpected module header: %+v", mp)
	}
	if len(mp.Functions) != 10 {
		t.Fatalf("expected 10 functions, got %d", len(mp.Functions))
	}

	byName := map[string]*FunctionPlan{}
	for _, f := range mp.Functions {
		byName[f.Name] = f
	}

	if f := byName["ChangeWindowMode"]; f.Strategy != ResultWrapped {
		t.Errorf("ChangeWindowMode: expected result strategy under scope as_result, got %s", f.Strategy)
	}
	if f := byName["WaitKey"]; f.ErrorCondition.String() != "result == i32::MAX" {
		t.Errorf("WaitKey: expected i32::MAX condition, got %s", f.ErrorCondition)
	}
	if f := byName["ScreenFlip"]; f.ErrorCondition.String() != "result as i32 == -1i32" {
		t.Errorf("ScreenFlip: expected default condition, got %s", f.ErrorCondition)
	}
	if f := byName["DrawString"]; f.Symbol != "dx_DrawString" || f.WrapperName != "DrawString" {
		t.Errorf("DrawString: symbol %q wrapper %q", f.Symbol, f.WrapperName)
	}
	if f := byName["TestFunc"]; f.WrapperName != "test_func" || f.Symbol != "dx_TestFunc" {
		t.Errorf("TestFunc: alias must rename the wrapper only, got symbol %q wrapper %q", f.Symbol, f.WrapperName)
	}
	if f := byName["TestFunc2"]; f.Params[0].Steps[0].Default.String() != "7" {
		t.Errorf("TestFunc2: expected default 7, got %s", f.Params[0].Steps[0].Default)
	}
}

func TestBuildModule_LifecycleFailures(t *testing.T) {
	for _, asResult := range []bool{true, false} {
		config := withBase()
		if asResult {
			config = append(config, "as_result")
		}
		mp, err := BuildModule(scopeFrom(t, config,
			sig("fn DxLib_Init() -> i32"),
			sig("fn DxLib_End() -> i32"),
			sig("fn ProcessMessage() -> i32"),
		))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []Failure{FailInitialize, FailFinalize, FailOther}
		for i, f := range mp.Functions {
			if f.Failure != want[i] {
				t.Errorf("as_result=%v %s: failure = %s, want %s", asResult, f.Name, f.Failure, want[i])
			}
		}
	}
}

func TestBuildModule_LifecycleByWrapperName(t *testing.T) {
	mp, err := BuildModule(scopeFrom(t, withBase(`initializer = "open"`),
		sig("fn lib_open() -> i32", `alias = "open"`),
		sig("fn DxLib_Init() -> i32"),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mp.Functions[0].Failure != FailInitialize {
		t.Errorf("expected aliased initializer to get the initialize variant, got %s", mp.Functions[0].Failure)
	}
	if mp.Functions[1].Failure != FailOther {
		t.Errorf("expected DxLib_Init to be generic once the initializer is renamed, got %s", mp.Functions[1].Failure)
	}
}

func TestBuild_FunctionPrecedence(t *testing.T) {
	mp, err := BuildModule(scopeFrom(t,
		withBase(`func_name_top_prefix = "dx_"`, `error_condition = "result == -1"`),
		sig("fn F(s: &str) -> i32",
			`func_name_top_prefix = "fn_"`,
			"as_result",
			`error_condition = "result == 0"`,
			"arg_convert = none"),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := mp.Functions[0]
	if f.Symbol != "fn_F" {
		t.Errorf("expected function prefix, got %q", f.Symbol)
	}
	if f.Strategy != ResultWrapped {
		t.Error("expected function as_result")
	}
	if f.ErrorCondition.String() != "result == 0" {
		t.Errorf("expected function error condition, got %s", f.ErrorCondition)
	}
	if f.Params[0].Rule != marshal.RulePassThrough {
		t.Errorf("expected function arg_convert to disable conversion, got %s", f.Params[0].Rule)
	}
}

func TestBuild_ParameterConvertOverride(t *testing.T) {
	mp, err := BuildModule(scopeFrom(t, withBase(), model.FunctionDef{
		Sig:  "fn F(a: &str, b: &str) -> i32",
		Args: map[string][]string{"b": {"arg_convert = none"}},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params := mp.Functions[0].Params
	if params[0].Rule != marshal.RuleText || params[1].Rule != marshal.RulePassThrough {
		t.Errorf("expected text then pass-through, got %s and %s", params[0].Rule, params[1].Rule)
	}
}

func TestBuild_PrefixResetsBetweenFunctions(t *testing.T) {
	mp, err := BuildModule(scopeFrom(t, withBase(`func_name_top_prefix = "dx_"`),
		sig("fn A() -> i32", `func_name_top_prefix = "a_"`),
		sig("fn B() -> i32"),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mp.Functions[1].Symbol != "dx_B" {
		t.Errorf("expected scope prefix for B, got %q", mp.Functions[1].Symbol)
	}
}

func TestBuild_PrefixCarriesWhenEnabled(t *testing.T) {
	mp, err := BuildModule(scopeFrom(t, withBase(`func_name_top_prefix = "dx_"`, "carry_prefix"),
		sig("fn A() -> i32", `func_name_top_prefix = "a_"`),
		sig("fn B() -> i32"),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mp.Functions[1].Symbol != "a_B" {
		t.Errorf("expected carried prefix for B, got %q", mp.Functions[1].Symbol)
	}
}

func TestBuild_UnitReturnUnchecked(t *testing.T) {
	mp, err := BuildModule(scopeFrom(t, withBase("as_result"), sig("fn Reset()")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := mp.Functions[0]
	if f.Checked() {
		t.Error("unit-returning function must not evaluate the error predicate")
	}
	if f.Strategy != ResultWrapped {
		t.Error("strategy still follows as_result for unit functions")
	}
}

func TestBuild_NotNull(t *testing.T) {
	mp, err := BuildModule(scopeFrom(t, withBase("not_null_assert"),
		sig("fn Name() -> *const u8"),
		sig("fn Count() -> i32"),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mp.Functions[0].NotNull {
		t.Error("expected null check on pointer result")
	}
	if mp.Functions[1].NotNull {
		t.Error("null check applies to pointer results only")
	}
}

func TestBuildModule_Errors(t *testing.T) {
	if _, err := BuildModule(scopeFrom(t, []string{`library_name = "x"`}, sig("fn F()"))); err == nil {
		t.Error("expected error for missing arg_convert")
	}

	_, err := BuildModule(scopeFrom(t, withBase(), model.FunctionDef{
		Sig:  "fn F(p: Option<i32>) -> i32",
		Args: map[string][]string{"p": {`option_default = "1 +"`}},
	}))
	if err == nil {
		t.Error("expected error for malformed option default")
	}

	_, err = BuildModule(scopeFrom(t, withBase(), sig("fn F() -> i32", `error_condition = "result =="`)))
	if err == nil {
		t.Error("expected error for malformed error condition")
	}
}

func TestBuild_Idempotent(t *testing.T) {
	scope := scopeFrom(t, withBase("as_result"),
		sig("fn DrawString(x: i32, s: &str) -> i32"),
		sig("fn Fill(buf: &mut [u8], v: Option<u8>) -> i32"),
	)
	cfg, err := resolver.ResolveScope(scope.Config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, fn := range scope.Functions {
		a, err := Build(fn, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := Build(fn, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: plans differ between runs", fn.Name)
		}
	}
}

func TestBuild_UnsignedSentinel(t *testing.T) {
	mp, err := BuildModule(scopeFrom(t, withBase(),
		sig("fn Count() -> u32"),
		sig("fn Size() -> usize"),
		sig("fn Level() -> i32"),
		sig("fn Mask() -> u8", "error_sentinel = 0"),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"u32::MAX", "usize::MAX", "-1", "0"}
	for i, f := range mp.Functions {
		if got := f.Sentinel.String(); got != want[i] {
			t.Errorf("%s: sentinel = %s, want %s", f.Name, got, want[i])
		}
	}
}

func TestBuild_BindingsAvoidParameters(t *testing.T) {
	mp, err := BuildModule(scopeFrom(t, withBase(),
		sig("fn F(s: &str, s_ptr: *const u8, s_holder: i32) -> i32"),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := mp.Functions[0].Params[0]
	if s.Holder != "s_holder_" || s.Pointer != "s_ptr_" || s.CallArg != "s_ptr_" {
		t.Errorf("bindings = %q, %q, call %q", s.Holder, s.Pointer, s.CallArg)
	}
	if other := mp.Functions[0].Params[1]; other.CallArg != "s_ptr" {
		t.Errorf("parameter s_ptr must pass itself, got %q", other.CallArg)
	}
}
