package gen

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/benn-herrera/cffigen/loader"
	"github.com/benn-herrera/cffigen/model"
	"github.com/benn-herrera/cffigen/plan"
)

// loadTestModule loads a testdata definition and plans it.
func loadTestModule(t *testing.T, name string) *Context {
	t.Helper()
	path := filepath.Join("..", "testdata", name)
	_, scope, err := loader.LoadScope(path)
	if err != nil {
		t.Fatalf("loading %s: %v", name, err)
	}
	mp, err := plan.BuildModule(scope)
	if err != nil {
		t.Fatalf("planning %s: %v", name, err)
	}
	return NewContext(mp, path, t.TempDir())
}

// inlineModule plans a definition given as YAML text.
func inlineModule(t *testing.T, src string) *Context {
	t.Helper()
	def, err := loader.LoadDefinitionBytes([]byte(src))
	if err != nil {
		t.Fatalf("loading inline definition: %v", err)
	}
	return planDefinition(t, def)
}

func planDefinition(t *testing.T, def *model.Definition) *Context {
	t.Helper()
	scope, err := loader.Parse(def)
	if err != nil {
		t.Fatalf("parsing inline definition: %v", err)
	}
	mp, err := plan.BuildModule(scope)
	if err != nil {
		t.Fatalf("planning inline definition: %v", err)
	}
	return NewContext(mp, "inline.yaml", t.TempDir())
}

// generateOne runs a generator expecting exactly one output file.
func generateOne(t *testing.T, g Generator, ctx *Context) string {
	t.Helper()
	files, err := g.Generate(ctx)
	if err != nil {
		t.Fatalf("%s generation failed: %v", g.Name(), err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 output file, got %d", len(files))
	}
	return string(files[0].Content)
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
