package resolver

import (
	"fmt"

	"github.com/benn-herrera/cffigen/syntax"
)

// Annotation keys.
const (
	KeyLibraryName    = "library_name"
	KeyLinkType       = "link_type"
	KeyAsResult       = "as_result"
	KeyErrorType      = "as_result_error_type"
	KeyTopPrefix      = "func_name_top_prefix"
	KeyDownPrefix     = "func_name_down_prefix"
	KeyErrorCondition = "error_condition"
	KeyArgConvert     = "arg_convert"
	KeyAlias          = "alias"
	KeyFuncAlias      = "func_alias"
	KeyNotNullAssert  = "not_null_assert"
	KeyOptionDefault  = "option_default"
	KeySentinel       = "error_sentinel"
	KeyInitializer    = "initializer"
	KeyFinalizer      = "finalizer"
	KeyCarryPrefix    = "carry_prefix"
)

// CallingConvention is the single convention every foreign declaration
// is emitted under.
const CallingConvention = "stdcall"

// Scope defaults applied when the corresponding annotation is absent.
const (
	DefaultErrorType   = "FfiError"
	DefaultInitializer = "DxLib_Init"
	DefaultFinalizer   = "DxLib_End"
)

// DefaultErrorCondition returns the predicate used when neither the
// function nor the scope supplies one: the raw result, read as a 32-bit
// integer, equals -1.
func DefaultErrorCondition() syntax.Expr {
	return syntax.MustParseExpr("result as i32 == -1i32")
}

// DefaultSentinel returns the value raw-passthrough wrappers return when
// the error predicate holds.
func DefaultSentinel() syntax.Expr {
	return syntax.MustParseExpr("-1")
}

// EffectiveConfig is the configuration a single function is generated
// under. The scope-level value is resolved once; each function derives its
// own copy with ForFunction and never mutates the scope value.
type EffectiveConfig struct {
	Library           string
	LinkKind          string
	CallingConvention string
	TopPrefix         string
	DownPrefix        string
	ErrorCondition    syntax.Expr
	Sentinel          syntax.Expr
	AsResult          bool
	NotNullAssert     bool
	ArgConvert        string
	ErrorType         string
	Initializer       string
	Finalizer         string
	// CarryPrefix threads a function-level prefix forward to every later
	// function in the scope instead of resetting it.
	CarryPrefix bool
}

// ResolveScope resolves the scope-level configuration. library_name and
// arg_convert are required.
func ResolveScope(as Annotations) (EffectiveConfig, error) {
	lib, err := as.Require(KeyLibraryName)
	if err != nil {
		return EffectiveConfig{}, err
	}
	conv, err := as.Require(KeyArgConvert)
	if err != nil {
		return EffectiveConfig{}, err
	}

	cfg := EffectiveConfig{
		Library:           lib,
		CallingConvention: CallingConvention,
		ArgConvert:        conv,
		AsResult:          as.Flag(KeyAsResult),
		NotNullAssert:     as.Flag(KeyNotNullAssert),
		CarryPrefix:       as.Flag(KeyCarryPrefix),
		ErrorType:         DefaultErrorType,
		Initializer:       DefaultInitializer,
		Finalizer:         DefaultFinalizer,
		ErrorCondition:    DefaultErrorCondition(),
		Sentinel:          DefaultSentinel(),
	}
	if v, ok := as.Value(KeyLinkType); ok {
		cfg.LinkKind = v
	}
	if v, ok := as.Value(KeyTopPrefix); ok {
		cfg.TopPrefix = v
	}
	if v, ok := as.Value(KeyDownPrefix); ok {
		cfg.DownPrefix = v
	}
	if v, ok := as.Value(KeyErrorType); ok {
		cfg.ErrorType = v
	}
	if v, ok := as.Value(KeyInitializer); ok {
		cfg.Initializer = v
	}
	if v, ok := as.Value(KeyFinalizer); ok {
		cfg.Finalizer = v
	}
	if e, ok, err := as.Expr(KeyErrorCondition); err != nil {
		return EffectiveConfig{}, err
	} else if ok {
		cfg.ErrorCondition = e
	}
	if e, ok, err := as.Expr(KeySentinel); err != nil {
		return EffectiveConfig{}, err
	} else if ok {
		cfg.Sentinel = e
	}
	return cfg, nil
}

// ForFunction derives the configuration for one function. Every value the
// function sets wins over the scope value; as_result and not_null_assert
// are OR-ed with the scope flag. A function-level prefix of either kind
// replaces the scope's prefix pair.
func (c EffectiveConfig) ForFunction(fn Annotations) (EffectiveConfig, error) {
	out := c
	if v, ok := fn.Value(KeyArgConvert); ok {
		out.ArgConvert = v
	}
	out.AsResult = c.AsResult || fn.Flag(KeyAsResult)
	out.NotNullAssert = c.NotNullAssert || fn.Flag(KeyNotNullAssert)

	top, hasTop := fn.Value(KeyTopPrefix)
	down, hasDown := fn.Value(KeyDownPrefix)
	if hasTop || hasDown {
		out.TopPrefix, out.DownPrefix = top, down
	}

	if e, ok, err := fn.Expr(KeyErrorCondition); err != nil {
		return EffectiveConfig{}, err
	} else if ok {
		out.ErrorCondition = e
	}
	if e, ok, err := fn.Expr(KeySentinel); err != nil {
		return EffectiveConfig{}, err
	} else if ok {
		out.Sentinel = e
	}
	return out, nil
}

// Step resolves the configuration for the next function in a scope. c is
// the current fold state, starting from the scope default. It returns the
// function's configuration and the state for the function after it: the
// unchanged state, unless CarryPrefix is set and the function declared a
// prefix of its own.
func (c EffectiveConfig) Step(fn Annotations) (eff, next EffectiveConfig, err error) {
	eff, err = c.ForFunction(fn)
	if err != nil {
		return EffectiveConfig{}, c, err
	}
	next = c
	if c.CarryPrefix {
		next.TopPrefix, next.DownPrefix = eff.TopPrefix, eff.DownPrefix
	}
	return eff, next, nil
}

// Prefix returns the active name prefix; top wins over down.
func (c EffectiveConfig) Prefix() string {
	if c.TopPrefix != "" {
		return c.TopPrefix
	}
	return c.DownPrefix
}

// Symbol returns the foreign symbol for a declared function name.
func (c EffectiveConfig) Symbol(name string) string {
	return c.Prefix() + name
}

// ConvertArgs reports whether parameters are marshalled under this
// configuration.
func (c EffectiveConfig) ConvertArgs() bool {
	return ConversionEnabled(c.ArgConvert)
}

// WrapperName returns the alias if the function declares one, otherwise
// the declared name.
func WrapperName(name string, fn Annotations) string {
	if alias, ok := fn.FirstValue(KeyAlias, KeyFuncAlias); ok {
		return alias
	}
	return name
}

// ParamConvert returns the conversion mode for one parameter: its own
// arg_convert if present, otherwise the function's.
func (c EffectiveConfig) ParamConvert(param Annotations) bool {
	if v, ok := param.Value(KeyArgConvert); ok {
		return ConversionEnabled(v)
	}
	return c.ConvertArgs()
}

// OptionDefault returns the decoded option_default for a parameter, or the
// zero value when none is given.
func OptionDefault(param Annotations) (syntax.Expr, error) {
	v, ok := param.Value(KeyOptionDefault)
	if !ok {
		return &syntax.ZeroValue{}, nil
	}
	e, err := DefaultValue(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyOptionDefault, err)
	}
	return e, nil
}
