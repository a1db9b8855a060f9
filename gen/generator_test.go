package gen

import (
	"reflect"
	"strings"
	"testing"
)

func TestRegistry_All(t *testing.T) {
	got := All()
	want := []string{"cheader", "go", "rust"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}
	for _, name := range want {
		g, ok := Get(name)
		if !ok || g.Name() != name {
			t.Errorf("Get(%q) returned %v, %v", name, g, ok)
		}
	}
	if _, ok := Get("cobol"); ok {
		t.Error("expected unknown generator lookup to fail")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	Register("go", func() Generator { return &GoGenerator{} })
}

func TestParseTargets(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		wantErr string
	}{
		{"", []string{"go"}, ""},
		{" , ", []string{"go"}, ""},
		{"rust", []string{"rust"}, ""},
		{"go, rust,cheader", []string{"go", "rust", "cheader"}, ""},
		{"rust,rust,go", []string{"rust", "go"}, ""},
		{"go,java", nil, `unknown target "java"`},
	}
	for _, tt := range tests {
		got, err := ParseTargets(tt.input)
		if tt.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ParseTargets(%q) error = %v, want %q", tt.input, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTargets(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTargets(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestContext_PackageName(t *testing.T) {
	ctx := loadTestModule(t, "dxlib.yaml")
	if got := ctx.PackageName(); got != "dxlib" {
		t.Errorf("expected package from definition, got %q", got)
	}
	ctx.Module.Package = ""
	if got := ctx.PackageName(); got != "dxlib_x64" {
		t.Errorf("expected package from library name, got %q", got)
	}
	ctx.Package = "custom"
	if got := ctx.PackageName(); got != "custom" {
		t.Errorf("expected override, got %q", got)
	}
}
