package gen

import (
	"strings"
	"testing"

	"github.com/benn-herrera/cffigen/marshal"
	"github.com/benn-herrera/cffigen/plan"
	"github.com/benn-herrera/cffigen/syntax"
)

func TestCHeaderGenerator_DxLib(t *testing.T) {
	ctx := loadTestModule(t, "dxlib.yaml")
	files, err := (&CHeaderGenerator{}).Generate(ctx)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if len(files) != 1 || files[0].Path != "dxlib.h" {
		t.Fatalf("expected dxlib.h, got %+v", files)
	}
	out := string(files[0].Content)

	assertContains(t, out,
		"/* Code generated by cffigen from dxlib.yaml. DO NOT EDIT. */",
		"#ifndef DXLIB_H",
		"#define DXLIB_H",
		"#include <stdint.h>",
		"#define DXLIB_CALL __stdcall",
		"extern \"C\" {",
		"int32_t DXLIB_CALL dx_DxLib_Init(void);",
		"/* Initializes the library. Must be called before any other function. */",
		"int32_t DXLIB_CALL dx_TestFunc(const char* p);",
		"int32_t DXLIB_CALL dx_TestFunc2(int32_t p);",
	)

	// long prototypes are split one parameter per line
	assertContains(t, out,
		"int32_t DXLIB_CALL dx_SetGraphMode(\n    int32_t width,\n    int32_t height,\n    int32_t color_bits);\n",
		"int32_t DXLIB_CALL dx_DrawString(\n",
		"    const char* s,\n",
		"    uint32_t color);\n",
	)

	if !strings.HasSuffix(strings.TrimSpace(out), "#endif") {
		t.Error("header must end with the include guard")
	}
}

func TestCHeaderGenerator_Pointers(t *testing.T) {
	ctx := inlineModule(t, `
package: ptrs
config:
  - library_name = "ptrs"
  - arg_convert = default
functions:
  - 'fn Fill(buf: &mut [u8], n: usize) -> *mut u8'
  - 'fn Name(h: *const Handle, s: &mut String)'
`)
	out := generateOne(t, &CHeaderGenerator{}, ctx)

	assertContains(t, out,
		"uint8_t* PTRS_CALL Fill(uint8_t* buf, size_t n);",
		"void PTRS_CALL Name(const struct Handle* h, char* s);",
	)
}

func TestCHeaderGenerator_RustOnlyType(t *testing.T) {
	ctx := loadTestModule(t, "full.yaml")
	_, err := (&CHeaderGenerator{}).Generate(ctx)
	if err == nil {
		t.Fatal("expected an error for a pass-through &str parameter")
	}
	if !strings.Contains(err.Error(), "Raw") || !strings.Contains(err.Error(), "no C representation") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWriteCPrototype_WrapWidth(t *testing.T) {
	// "int32_t X_CALL F(int32_t " + name + ")" is 26 bytes plus the name.
	tests := []struct {
		nameLen int
		want    string
	}{
		{maxPrototypeWidth - 26, "int32_t X_CALL F(int32_t %s);\n"},
		{maxPrototypeWidth - 25, "int32_t X_CALL F(\n    int32_t %s);\n"},
	}
	for _, tt := range tests {
		name := strings.Repeat("a", tt.nameLen)
		fp := &plan.FunctionPlan{
			Symbol: "F",
			Return: syntax.MustParseType("i32"),
			Params: []*marshal.ParameterPlan{{Name: name, Raw: syntax.MustParseType("i32")}},
		}
		var b strings.Builder
		if err := writeCPrototype(&b, "X_CALL", fp); err != nil {
			t.Fatal(err)
		}
		if want := strings.Replace(tt.want, "%s", name, 1); b.String() != want {
			t.Errorf("name length %d: got %q, want %q", tt.nameLen, b.String(), want)
		}
	}

	var b strings.Builder
	long := &plan.FunctionPlan{Symbol: strings.Repeat("F", 100)}
	if err := writeCPrototype(&b, "X_CALL", long); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(b.String(), "(void);\n") {
		t.Errorf("parameterless prototype must stay on one line, got %q", b.String())
	}
}
