package gen

import (
	"github.com/benn-herrera/cffigen/plan"
)

// Context holds everything a generator needs to produce output.
type Context struct {
	Module     *plan.ModulePlan
	SourcePath string // Path to the definition YAML, named in generated headers
	OutputDir  string
	Package    string // Overrides the module's package name when set
}

// NewContext creates a new generation context.
func NewContext(module *plan.ModulePlan, sourcePath, outputDir string) *Context {
	return &Context{
		Module:     module,
		SourcePath: sourcePath,
		OutputDir:  outputDir,
	}
}

// PackageName returns the package or crate name generated code lives in:
// the override, else the definition's package, else one derived from the
// library name.
func (c *Context) PackageName() string {
	if c.Package != "" {
		return c.Package
	}
	if c.Module.Package != "" {
		return c.Module.Package
	}
	return SanitizeName(c.Module.Library)
}
