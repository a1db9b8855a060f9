package loader

import (
	"fmt"
	"os"
	"sort"

	"github.com/benn-herrera/cffigen/model"
	"github.com/benn-herrera/cffigen/resolver"
	"github.com/benn-herrera/cffigen/syntax"
	"gopkg.in/yaml.v3"
)

// LoadDefinition reads and parses a YAML definition file.
// It validates the YAML against the JSON Schema before unmarshalling.
func LoadDefinition(path string) (*model.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition: %w", err)
	}
	return LoadDefinitionBytes(data)
}

// LoadDefinitionBytes is LoadDefinition for in-memory YAML.
func LoadDefinitionBytes(data []byte) (*model.Definition, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	return LoadDefinitionNoValidate(data)
}

// LoadDefinitionNoValidate parses without schema validation.
// Used internally when schema validation has already been performed.
func LoadDefinitionNoValidate(data []byte) (*model.Definition, error) {
	var def model.Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing definition: %w", err)
	}
	return &def, nil
}

// LoadScope loads a definition file and parses it into a scope.
func LoadScope(path string) (*model.Definition, *model.Scope, error) {
	def, err := LoadDefinition(path)
	if err != nil {
		return nil, nil, err
	}
	scope, err := Parse(def)
	if err != nil {
		return nil, nil, err
	}
	return def, scope, nil
}

// Parse parses every signature and annotation of a definition.
func Parse(def *model.Definition) (*model.Scope, error) {
	cfg, err := resolver.Parse(def.Config)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	scope := &model.Scope{
		Package:     def.Package,
		Description: def.Description,
		Config:      cfg,
	}
	for i, fd := range def.Functions {
		fn, err := ParseFunction(fd)
		if err != nil {
			return nil, fmt.Errorf("functions[%d]: %w", i, err)
		}
		scope.Functions = append(scope.Functions, fn)
	}
	return scope, nil
}

// ParseFunction parses one function declaration and its annotations.
func ParseFunction(fd model.FunctionDef) (*model.DeclaredFunction, error) {
	sig, err := syntax.ParseSignature(fd.Sig)
	if err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	attrs, err := resolver.Parse(fd.Attrs)
	if err != nil {
		return nil, fmt.Errorf("%s attrs: %w", sig.Name, err)
	}
	fn := &model.DeclaredFunction{
		Name:   sig.Name,
		Return: sig.Return,
		Attrs:  attrs,
		Doc:    fd.Doc,
	}
	for _, p := range sig.Params {
		pattrs, err := resolver.Parse(fd.Args[p.Name])
		if err != nil {
			return nil, fmt.Errorf("%s parameter %s: %w", sig.Name, p.Name, err)
		}
		fn.Params = append(fn.Params, &model.DeclaredParameter{Name: p.Name, Type: p.Type, Attrs: pattrs})
	}
	var unknown []string
	for name := range fd.Args {
		if fn.Param(name) == nil {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%s: args entry for unknown parameter %q", sig.Name, unknown[0])
	}
	return fn, nil
}
