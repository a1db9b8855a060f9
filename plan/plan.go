// Package plan folds declared functions and their effective configuration
// into renderer-neutral wrapper plans.
package plan

import (
	"fmt"
	"log/slog"

	"github.com/benn-herrera/cffigen/classify"
	"github.com/benn-herrera/cffigen/marshal"
	"github.com/benn-herrera/cffigen/model"
	"github.com/benn-herrera/cffigen/resolver"
	"github.com/benn-herrera/cffigen/syntax"
)

// Strategy is how a wrapper reports the foreign result. It is fixed once
// the plan is built.
type Strategy int

const (
	// RawPassthrough returns the raw value, or the sentinel when the error
	// predicate holds.
	RawPassthrough Strategy = iota
	// ResultWrapped returns a success/failure result.
	ResultWrapped
)

func (s Strategy) String() string {
	if s == ResultWrapped {
		return "result"
	}
	return "raw"
}

// Failure is the failure variant a wrapper reports.
type Failure int

const (
	FailOther Failure = iota
	FailInitialize
	FailFinalize
)

func (f Failure) String() string {
	switch f {
	case FailInitialize:
		return "initialize"
	case FailFinalize:
		return "finalize"
	}
	return "other"
}

// FunctionPlan is everything a renderer needs to emit one foreign
// declaration and its wrapper.
type FunctionPlan struct {
	Name        string
	WrapperName string
	Symbol      string
	Params      []*marshal.ParameterPlan
	// Return is nil for functions returning the unit type; such wrappers
	// never evaluate the error predicate.
	Return         syntax.Type
	Strategy       Strategy
	Failure        Failure
	ErrorCondition syntax.Expr
	Sentinel       syntax.Expr
	// NotNull adds a null check on a raw pointer result, reported as its
	// own failure before the error predicate runs.
	NotNull bool
	Doc     string
}

// Checked reports whether the wrapper inspects the foreign result.
func (f *FunctionPlan) Checked() bool { return f.Return != nil }

// ModulePlan is the plan for one configuration scope.
type ModulePlan struct {
	Package           string
	Description       string
	Library           string
	LinkKind          string
	CallingConvention string
	ErrorType         string
	Functions         []*FunctionPlan
}

// Build plans a single function under its effective configuration.
func Build(fn *model.DeclaredFunction, cfg resolver.EffectiveConfig) (*FunctionPlan, error) {
	wrapper := resolver.WrapperName(fn.Name, fn.Attrs)
	fp := &FunctionPlan{
		Name:           fn.Name,
		WrapperName:    wrapper,
		Symbol:         cfg.Symbol(fn.Name),
		Return:         fn.Return,
		ErrorCondition: cfg.ErrorCondition,
		Sentinel:       cfg.Sentinel,
		Doc:            fn.Doc,
	}
	if cfg.AsResult {
		fp.Strategy = ResultWrapped
	}
	switch wrapper {
	case cfg.Initializer:
		fp.Failure = FailInitialize
	case cfg.Finalizer:
		fp.Failure = FailFinalize
	}
	// -1 on an unsigned result means all bits set
	if name, ok := classify.UnsignedInt(fn.Return); ok && isMinusOne(fp.Sentinel) {
		fp.Sentinel = &syntax.PathExpr{Segments: []string{name, "MAX"}}
	}
	if _, isPtr := fn.Return.(*syntax.Ptr); isPtr && cfg.NotNullAssert {
		fp.NotNull = true
	}

	// temporaries never shadow a parameter or the call result
	taken := map[string]bool{"result": true}
	for _, p := range fn.Params {
		taken[p.Name] = true
	}
	for _, p := range fn.Params {
		def, err := resolver.OptionDefault(p.Attrs)
		if err != nil {
			return nil, fmt.Errorf("function %s parameter %s: %w", fn.Name, p.Name, err)
		}
		pp := marshal.PlanParameter(
			syntax.Param{Name: p.Name, Type: p.Type},
			marshal.Options{Convert: cfg.ParamConvert(p.Attrs), Default: def, Taken: taken},
		)
		slog.Debug("planned parameter",
			"function", fn.Name,
			"param", p.Name,
			"rule", string(pp.Rule),
			"wrapper", pp.Wrapper.String(),
			"raw", pp.Raw.String(),
			"ownership", pp.Ownership.String())
		fp.Params = append(fp.Params, pp)
	}

	slog.Debug("planned function",
		"function", fn.Name,
		"wrapper", fp.WrapperName,
		"symbol", fp.Symbol,
		"strategy", fp.Strategy.String(),
		"failure", fp.Failure.String())
	return fp, nil
}

func isMinusOne(e syntax.Expr) bool {
	u, ok := e.(*syntax.Unary)
	if !ok || u.Op != "-" {
		return false
	}
	lit, ok := u.X.(*syntax.Lit)
	return ok && lit.Kind == syntax.IntLit && lit.Value == "1"
}

// BuildModule resolves the scope configuration and plans every function in
// declaration order. The first error aborts the whole scope.
func BuildModule(scope *model.Scope) (*ModulePlan, error) {
	cfg, err := resolver.ResolveScope(scope.Config)
	if err != nil {
		return nil, fmt.Errorf("resolving scope configuration: %w", err)
	}
	mp := &ModulePlan{
		Package:           scope.Package,
		Description:       scope.Description,
		Library:           cfg.Library,
		LinkKind:          cfg.LinkKind,
		CallingConvention: cfg.CallingConvention,
		ErrorType:         cfg.ErrorType,
	}

	state := cfg
	for _, fn := range scope.Functions {
		eff, next, err := state.Step(fn.Attrs)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
		fp, err := Build(fn, eff)
		if err != nil {
			return nil, err
		}
		mp.Functions = append(mp.Functions, fp)
		state = next
	}
	return mp, nil
}
