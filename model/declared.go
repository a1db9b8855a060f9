package model

import (
	"github.com/benn-herrera/cffigen/resolver"
	"github.com/benn-herrera/cffigen/syntax"
)

// Scope is a parsed definition: the scope annotations and the declared
// functions in declaration order.
type Scope struct {
	Package     string
	Description string
	Config      resolver.Annotations
	Functions   []*DeclaredFunction
}

// DeclaredFunction is a foreign function as declared. It is never
// modified after parsing.
type DeclaredFunction struct {
	Name   string
	Params []*DeclaredParameter
	// Return is nil for functions returning the unit type.
	Return syntax.Type
	Attrs  resolver.Annotations
	Doc    string
}

// DeclaredParameter is one parameter with its own annotations.
type DeclaredParameter struct {
	Name  string
	Type  syntax.Type
	Attrs resolver.Annotations
}

// Param returns the parameter with the given name, or nil.
func (f *DeclaredFunction) Param(name string) *DeclaredParameter {
	for _, p := range f.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Signature returns the syntax-level signature.
func (f *DeclaredFunction) Signature() *syntax.Signature {
	sig := &syntax.Signature{Name: f.Name, Return: f.Return}
	for _, p := range f.Params {
		sig.Params = append(sig.Params, syntax.Param{Name: p.Name, Type: p.Type})
	}
	return sig
}
