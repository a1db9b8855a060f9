package validate

import (
	"fmt"
	"strings"

	"github.com/benn-herrera/cffigen/classify"
	"github.com/benn-herrera/cffigen/model"
	"github.com/benn-herrera/cffigen/resolver"
	"github.com/benn-herrera/cffigen/syntax"
)

// ValidationError represents a single semantic validation error.
type ValidationError struct {
	Path    string // e.g., "functions[3].args.p"
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationResult holds all validation errors.
type ValidationResult struct {
	Errors []ValidationError
}

func (r *ValidationResult) addError(path, message string) {
	r.Errors = append(r.Errors, ValidationError{Path: path, Message: message})
}

func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) Error() string {
	if r.IsValid() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

var scopeKeys = keySet(
	resolver.KeyLibraryName, resolver.KeyLinkType, resolver.KeyAsResult,
	resolver.KeyErrorType, resolver.KeyTopPrefix, resolver.KeyDownPrefix,
	resolver.KeyErrorCondition, resolver.KeyArgConvert, resolver.KeyNotNullAssert,
	resolver.KeySentinel, resolver.KeyInitializer, resolver.KeyFinalizer,
	resolver.KeyCarryPrefix,
)

var functionKeys = keySet(
	resolver.KeyAsResult, resolver.KeyTopPrefix, resolver.KeyDownPrefix,
	resolver.KeyErrorCondition, resolver.KeyArgConvert, resolver.KeyAlias,
	resolver.KeyFuncAlias, resolver.KeyNotNullAssert, resolver.KeySentinel,
)

var paramKeys = keySet(resolver.KeyArgConvert, resolver.KeyOptionDefault)

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// goReserved are the package-level names every generated Go package
// declares itself.
var goReserved = map[string]bool{"Load": true, "Close": true, "unbind": true}

// Validate performs semantic validation on a parsed scope. targets names
// the generators the scope will be rendered with; target-specific checks
// are skipped for targets not listed.
func Validate(scope *model.Scope, targets []string) *ValidationResult {
	result := &ValidationResult{}
	goTarget := contains(targets, "go")

	validateScopeConfig(result, scope.Config, goTarget)

	names := make(map[string]int)
	wrappers := make(map[string]int)
	exported := make(map[string]int)
	for i, fn := range scope.Functions {
		path := fmt.Sprintf("functions[%d]", i)

		if prev, dup := names[fn.Name]; dup {
			result.addError(path+".sig", fmt.Sprintf("duplicate function %q (first declared at functions[%d] as %s)", fn.Name, prev, scope.Functions[prev].Signature()))
		} else {
			names[fn.Name] = i
		}

		wrapper := resolver.WrapperName(fn.Name, fn.Attrs)
		if wrapper == "" || !syntax.IsIdent(wrapper) {
			result.addError(path+".attrs", fmt.Sprintf("alias %q is not a valid identifier", wrapper))
		} else if prev, dup := wrappers[wrapper]; dup && fn.Name != scope.Functions[prev].Name {
			result.addError(path+".attrs", fmt.Sprintf("wrapper name %q collides with functions[%d]", wrapper, prev))
		} else {
			wrappers[wrapper] = i
		}

		if goTarget {
			up := upperFirst(wrapper)
			if goReserved[up] {
				result.addError(path, fmt.Sprintf("wrapper name %q collides with the generated Go %s function", wrapper, up))
			} else if prev, dup := exported[up]; dup && wrappers[wrapper] == i {
				result.addError(path, fmt.Sprintf("exported Go name %q collides with functions[%d]", up, prev))
			} else {
				exported[up] = i
			}
		}

		validateFunction(result, path, fn)
	}

	for _, key := range []string{resolver.KeyInitializer, resolver.KeyFinalizer} {
		if name, ok := scope.Config.Value(key); ok {
			if _, found := wrappers[name]; !found {
				result.addError("config", fmt.Sprintf("%s %q names no declared function", key, name))
			}
		}
	}

	return result
}

func validateScopeConfig(result *ValidationResult, cfg resolver.Annotations, goTarget bool) {
	for _, key := range []string{resolver.KeyLibraryName, resolver.KeyArgConvert} {
		if v, ok := cfg.Value(key); !ok || v == "" {
			result.addError("config", fmt.Sprintf("missing required annotation %s", key))
		}
	}
	checkKeys(result, "config", cfg, scopeKeys)

	if kind, ok := cfg.Value(resolver.KeyLinkType); ok {
		switch {
		case !model.IsLinkKind(kind):
			result.addError("config", fmt.Sprintf("unknown link_type %q (expected one of %s)", kind, strings.Join(model.LinkKinds, ", ")))
		case kind == "static" && goTarget:
			result.addError("config", "link_type static cannot be loaded at run time by the go target")
		}
	}
	checkExprs(result, "config", cfg)
}

func validateFunction(result *ValidationResult, path string, fn *model.DeclaredFunction) {
	checkKeys(result, path+".attrs", fn.Attrs, functionKeys)
	checkExprs(result, path+".attrs", fn.Attrs)

	if fn.Attrs.Flag(resolver.KeyNotNullAssert) {
		if _, isPtr := fn.Return.(*syntax.Ptr); !isPtr {
			result.addError(path+".attrs", fmt.Sprintf("not_null_assert on %s, which does not return a raw pointer", fn.Name))
		}
	}

	seen := make(map[string]bool)
	for _, p := range fn.Params {
		ppath := fmt.Sprintf("%s.args.%s", path, p.Name)
		if seen[p.Name] {
			result.addError(path+".sig", fmt.Sprintf("duplicate parameter %q", p.Name))
		}
		seen[p.Name] = true

		checkKeys(result, ppath, p.Attrs, paramKeys)
		if _, ok := p.Attrs.Value(resolver.KeyOptionDefault); ok {
			if _, isOption := classify.OptionInner(p.Type); !isOption {
				result.addError(ppath, fmt.Sprintf("option_default on %s, which is not an Option", p.Type))
			}
			if _, err := resolver.OptionDefault(p.Attrs); err != nil {
				result.addError(ppath, err.Error())
			}
		}
	}
}

func checkKeys(result *ValidationResult, path string, as resolver.Annotations, allowed map[string]bool) {
	for _, a := range as {
		if !allowed[a.Key] {
			result.addError(path, fmt.Sprintf("annotation %s is not recognized here", a.Key))
		}
	}
}

func checkExprs(result *ValidationResult, path string, as resolver.Annotations) {
	for _, key := range []string{resolver.KeyErrorCondition, resolver.KeySentinel} {
		if _, _, err := as.Expr(key); err != nil {
			result.addError(path, err.Error())
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
