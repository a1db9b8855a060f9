package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition is the top-level structure of a cffigen definition YAML file.
// One file describes one configuration scope: a single foreign library.
type Definition struct {
	Package     string        `yaml:"package,omitempty"`
	Description string        `yaml:"description,omitempty"`
	Config      []string      `yaml:"config"`
	Functions   []FunctionDef `yaml:"functions"`
}

// FunctionDef declares one foreign function. In YAML it is either a bare
// signature string or a mapping with the signature under sig.
type FunctionDef struct {
	Sig   string              `yaml:"sig"`
	Doc   string              `yaml:"doc,omitempty"`
	Attrs []string            `yaml:"attrs,omitempty"`
	Args  map[string][]string `yaml:"args,omitempty"`
}

// UnmarshalYAML accepts the bare string form as well as the mapping form.
func (f *FunctionDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		f.Sig = node.Value
		return nil
	case yaml.MappingNode:
		type plain FunctionDef
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*f = FunctionDef(p)
		return nil
	}
	return fmt.Errorf("line %d: function must be a signature string or a mapping", node.Line)
}

// MarshalYAML writes functions without annotations in the bare form.
func (f FunctionDef) MarshalYAML() (interface{}, error) {
	if f.Doc == "" && len(f.Attrs) == 0 && len(f.Args) == 0 {
		return f.Sig, nil
	}
	type plain FunctionDef
	return plain(f), nil
}

// LinkKinds lists the accepted link_type values.
var LinkKinds = []string{"dylib", "static", "framework", "raw-dylib"}

// IsLinkKind reports whether kind is an accepted link_type value.
func IsLinkKind(kind string) bool {
	for _, k := range LinkKinds {
		if k == kind {
			return true
		}
	}
	return false
}
