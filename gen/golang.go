package gen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/benn-herrera/cffigen/classify"
	"github.com/benn-herrera/cffigen/marshal"
	"github.com/benn-herrera/cffigen/plan"
	"github.com/benn-herrera/cffigen/syntax"
)

func init() {
	Register("go", func() Generator { return &GoGenerator{} })
}

// GoGenerator produces a Go package that loads the foreign library at run
// time and exposes one safe wrapper per declared function.
type GoGenerator struct{}

func (g *GoGenerator) Name() string { return "go" }

// goLoaderNames are the package-level functions every generated package
// declares.
var goLoaderNames = map[string]bool{"Load": true, "Close": true, "unbind": true}

func (g *GoGenerator) Generate(ctx *Context) ([]*OutputFile, error) {
	mp := ctx.Module
	if mp.LinkKind == "static" {
		return nil, fmt.Errorf("link kind static cannot be loaded at run time by the go target")
	}
	pkg := ctx.PackageName()

	var fns []*goFunc
	for _, fp := range mp.Functions {
		gf, err := newGoFunc(fp)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fp.Name, err)
		}
		fns = append(fns, gf)
	}

	f := jen.NewFile(pkg)
	f.HeaderComment(generatedNotice(ctx))
	f.PackageComment(fmt.Sprintf("Package %s wraps the foreign functions of %s.", pkg, mp.Library))
	if mp.Description != "" {
		f.PackageComment(mp.Description)
	}

	defs := make([]jen.Code, 0, len(fns))
	for _, gf := range fns {
		def := jen.Id(gf.rawVar).Func().Params(gf.rawParams()...)
		if gf.resultType != nil {
			def.Add(gf.resultType.Clone())
		}
		defs = append(defs, def)
	}
	f.Comment("Foreign entry points, bound by Load.")
	f.Var().Defs(defs...)
	f.Line()
	f.Var().Id("library").Op("*").Qual(cffiPath, "Library")
	f.Line()

	writeGoLoader(f, mp, fns)

	for _, gf := range fns {
		if err := gf.render(f); err != nil {
			return nil, fmt.Errorf("function %s: %w", gf.fp.Name, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering Go source: %w", err)
	}
	return []*OutputFile{
		{Path: pkg + ".go", Content: buf.Bytes()},
	}, nil
}

func writeGoLoader(f *jen.File, mp *plan.ModulePlan, fns []*goFunc) {
	bindings := make([]jen.Code, 0, len(fns))
	resets := make([]jen.Code, 0, len(fns))
	for _, gf := range fns {
		bindings = append(bindings, jen.Values(jen.Op("&").Id(gf.rawVar), jen.Lit(gf.fp.Symbol)))
		resets = append(resets, jen.Id(gf.rawVar).Op("=").Nil())
	}

	f.Commentf("Load opens %s and binds every foreign function. dir is searched", mp.Library)
	f.Comment("before the system loader path; an empty dir uses the system path only.")
	f.Func().Id("Load").Params(jen.Id("dir").String()).Error().Block(
		jen.List(jen.Id("lib"), jen.Err()).Op(":=").Qual(cffiPath, "Open").Call(jen.Id("dir"), jen.Lit(mp.Library)),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
		jen.For(
			jen.List(jen.Id("_"), jen.Id("b")).Op(":=").Range().Index().Struct(
				jen.Id("fptr").Interface(),
				jen.Id("symbol").String(),
			).Custom(jen.Options{Open: "{", Close: "}", Separator: ",", Multi: true}, bindings...),
		).Block(
			jen.If(jen.Err().Op(":=").Id("lib").Dot("Bind").Call(jen.Id("b").Dot("fptr"), jen.Id("b").Dot("symbol")), jen.Err().Op("!=").Nil()).Block(
				jen.Id("unbind").Call(),
				jen.Id("lib").Dot("Close").Call(),
				jen.Return(jen.Err()),
			),
		),
		jen.Id("library").Op("=").Id("lib"),
		jen.Return(jen.Nil()),
	)
	f.Line()

	f.Commentf("Close unbinds the foreign functions and unloads %s.", mp.Library)
	f.Func().Id("Close").Params().Error().Block(
		jen.If(jen.Id("library").Op("==").Nil()).Block(jen.Return(jen.Nil())),
		jen.Id("unbind").Call(),
		jen.Err().Op(":=").Id("library").Dot("Close").Call(),
		jen.Id("library").Op("=").Nil(),
		jen.Return(jen.Err()),
	)
	f.Line()

	f.Func().Id("unbind").Params().Block(resets...)
}

// goFunc is one wrapper being rendered.
type goFunc struct {
	fp         *plan.FunctionPlan
	name       string
	rawVar     string
	params     []*goParam
	resultType *jen.Statement // nil for unit
	resultPtr  bool
}

type goParam struct {
	pp        *marshal.ParameterPlan
	id        string
	wrapper   *jen.Statement
	raw       *jen.Statement
	typeParam *jen.Statement
	arrayLen  int

	holderID, pointerID, valueID string
}

func (p *goParam) holder() string  { return p.holderID }
func (p *goParam) pointer() string { return p.pointerID }
func (p *goParam) value() string   { return p.valueID }

// nameLocals picks the temporaries of every parameter so that none shadows
// a parameter, the named results or another temporary.
func nameLocals(params []*goParam) {
	taken := map[string]bool{"result": true, "err": true}
	for _, gp := range params {
		taken[gp.id] = true
	}
	pick := func(name string) string {
		for taken[name] {
			name += "_"
		}
		taken[name] = true
		return name
	}
	for _, gp := range params {
		gp.holderID = pick(gp.id + "Holder")
		gp.pointerID = pick(gp.id + "Ptr")
		gp.valueID = pick(gp.id + "Value")
	}
}

func newGoFunc(fp *plan.FunctionPlan) (*goFunc, error) {
	gf := &goFunc{
		fp:     fp,
		name:   exportName(fp.WrapperName),
		rawVar: "ffi_" + fp.Symbol,
	}
	if goLoaderNames[gf.name] {
		return nil, fmt.Errorf("wrapper name %s collides with the generated %s function", gf.name, gf.name)
	}
	if fp.Return != nil {
		rt, err := goRawType(fp.Return)
		if err != nil {
			return nil, fmt.Errorf("return type: %w", err)
		}
		gf.resultType = rt
		gf.resultPtr = isGoPointer(fp.Return)
	}
	if gf.resultPtr && fp.Strategy == plan.RawPassthrough && fp.Checked() && !isNullExpr(fp.Sentinel) {
		return nil, fmt.Errorf("pointer result in raw mode needs error_sentinel = null, got %s", fp.Sentinel)
	}
	for _, pp := range fp.Params {
		gp, err := newGoParam(pp)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", pp.Name, err)
		}
		gf.params = append(gf.params, gp)
	}
	nameLocals(gf.params)
	return gf, nil
}

func newGoParam(pp *marshal.ParameterPlan) (*goParam, error) {
	gp := &goParam{pp: pp, id: goIdent(pp.Name)}
	bytePtr := jen.Op("*").Byte()

	switch pp.Rule {
	case marshal.RulePassThrough:
		t, err := goRawType(pp.Raw)
		if err != nil {
			return nil, err
		}
		gp.wrapper, gp.raw = t, t.Clone()
	case marshal.RuleOption:
		t, err := goRawType(pp.Raw)
		if err != nil {
			return nil, fmt.Errorf("option payload: %w", err)
		}
		gp.wrapper, gp.raw = jen.Op("*").Add(t), t.Clone()
	case marshal.RuleAsRef:
		if pp.Ownership == marshal.OwnedCString {
			name := ToPascalCase(pp.Name) + "Text"
			gp.typeParam = jen.Id(name).Qual(cffiPath, "Text")
			gp.wrapper, gp.raw = jen.Id(name), bytePtr
			break
		}
		return gp.sequence(pp.Steps[0].Elem)
	case marshal.RuleAsMut:
		return gp.sequence(pp.Steps[0].Elem)
	case marshal.RuleIntoVec, marshal.RuleSlice, marshal.RuleVec:
		return gp.sequence(pp.Shape.Elem)
	case marshal.RuleArray:
		elem, err := goScalar(pp.Shape.Elem)
		if err != nil {
			return nil, err
		}
		n, err := arrayLen(pp.Wrapper)
		if err != nil {
			return nil, err
		}
		gp.arrayLen = n
		gp.wrapper = jen.Index(jen.Lit(n)).Add(elem)
		if pp.Shape.Ref != classify.ByValue {
			gp.wrapper = jen.Op("*").Add(gp.wrapper)
		}
		gp.raw = jen.Op("*").Add(elem.Clone())
	case marshal.RuleToString:
		gp.wrapper, gp.raw = jen.Qual("fmt", "Stringer"), bytePtr
	case marshal.RuleText:
		gp.wrapper, gp.raw = jen.String(), bytePtr
		if pp.Ownership == marshal.LeakedCString {
			gp.wrapper = jen.Op("*").String()
		}
	default:
		return nil, fmt.Errorf("rule %s has no Go rendering", pp.Rule)
	}
	return gp, nil
}

// sequence maps a parameter viewed as a run of elements to a Go slice.
func (p *goParam) sequence(elemType syntax.Type) (*goParam, error) {
	elem, err := goScalar(elemType)
	if err != nil {
		return nil, err
	}
	p.wrapper = jen.Index().Add(elem)
	p.raw = jen.Op("*").Add(elem.Clone())
	return p, nil
}

func (gf *goFunc) rawParams() []jen.Code {
	out := make([]jen.Code, 0, len(gf.params))
	for _, gp := range gf.params {
		out = append(out, jen.Id(gp.id).Add(gp.raw.Clone()))
	}
	return out
}

func (gf *goFunc) resultMode() bool { return gf.fp.Strategy == plan.ResultWrapped }

// fail returns the early-return statement for a failed conversion.
func (gf *goFunc) fail() jen.Code {
	if gf.resultType == nil {
		return jen.Return(jen.Err())
	}
	return jen.Return(jen.Id("result"), jen.Err())
}

func (gf *goFunc) render(f *jen.File) error {
	fp := gf.fp
	if fp.Symbol == fp.WrapperName {
		f.Commentf("%s calls the foreign function of the same name.", gf.name)
	} else {
		f.Commentf("%s calls %s.", gf.name, fp.Symbol)
	}
	if fp.Doc != "" {
		f.Comment("")
		for _, line := range strings.Split(strings.TrimSpace(fp.Doc), "\n") {
			f.Comment(line)
		}
	}

	var body []jen.Code
	if gf.resultMode() {
		body = append(body, jen.If(jen.Id(gf.rawVar).Op("==").Nil()).Block(gf.returnErr(jen.Qual(cffiPath, "ErrNotLoaded"))))
	}

	args := make([]jen.Code, 0, len(gf.params))
	var typeParams, params []jen.Code
	for _, gp := range gf.params {
		if gp.typeParam != nil {
			typeParams = append(typeParams, gp.typeParam)
		}
		params = append(params, jen.Id(gp.id).Add(gp.wrapper))
		stmts, arg, err := gf.convert(gp)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", gp.pp.Name, err)
		}
		body = append(body, stmts...)
		args = append(args, arg)
	}

	call := jen.Id(gf.rawVar).Call(args...)
	checks, err := gf.checks()
	if err != nil {
		return err
	}
	switch {
	case gf.resultType == nil:
		body = append(body, call)
		if gf.resultMode() {
			body = append(body, jen.Return(jen.Nil()))
		}
	case gf.resultMode():
		body = append(body, jen.Id("result").Op("=").Add(call))
		body = append(body, checks...)
		body = append(body, jen.Return(jen.Id("result"), jen.Nil()))
	default:
		body = append(body, jen.Id("result").Op(":=").Add(call))
		body = append(body, checks...)
		body = append(body, jen.Return(jen.Id("result")))
	}

	stmt := f.Func().Id(gf.name)
	if len(typeParams) > 0 {
		stmt.Types(typeParams...)
	}
	stmt.Params(params...)
	switch {
	case gf.resultMode() && gf.resultType != nil:
		stmt.Params(jen.Id("result").Add(gf.resultType.Clone()), jen.Err().Error())
	case gf.resultMode():
		stmt.Params(jen.Err().Error())
	case gf.resultType != nil:
		stmt.Add(gf.resultType.Clone())
	}
	stmt.Block(body...)
	f.Line()
	return nil
}

func (gf *goFunc) returnErr(e jen.Code) jen.Code {
	if gf.resultType == nil {
		return jen.Return(e)
	}
	return jen.Return(jen.Id("result"), e)
}

// convert renders the plan's steps for one parameter in order and returns
// the argument passed to the foreign call.
func (gf *goFunc) convert(gp *goParam) ([]jen.Code, jen.Code, error) {
	pp := gp.pp
	var out []jen.Code
	for _, st := range pp.Steps {
		switch st.Op {
		case marshal.Unwrap:
			stmts, err := gf.unwrap(gp, st)
			if err != nil {
				return nil, nil, err
			}
			out = append(out, stmts...)
		case marshal.CString:
			src := jen.Id(gp.id)
			switch st.Access {
			case marshal.ViaAsRef:
				src = jen.String().Call(jen.Id(gp.id))
			case marshal.ViaToString:
				src = jen.Id(gp.id).Dot("String").Call()
			}
			if gf.resultMode() {
				out = append(out,
					jen.List(jen.Id(gp.holder()), jen.Err()).Op(":=").Qual(cffiPath, "NewCString").Call(src),
					jen.If(jen.Err().Op("!=").Nil()).Block(gf.fail()),
				)
			} else {
				out = append(out, jen.Id(gp.holder()).Op(":=").Qual(cffiPath, "MustCString").Call(src))
			}
			out = append(out, jen.Defer().Id(gp.holder()).Dot("Release").Call())
		case marshal.LeakCString:
			src := jen.Op("*").Id(gp.id)
			if gf.resultMode() {
				out = append(out,
					jen.List(jen.Id(gp.pointer()), jen.Err()).Op(":=").Qual(cffiPath, "LeakCString").Call(src),
					jen.If(jen.Err().Op("!=").Nil()).Block(gf.fail()),
				)
			} else {
				out = append(out, jen.Id(gp.pointer()).Op(":=").Qual(cffiPath, "MustLeakCString").Call(src))
			}
		case marshal.Collect:
			out = append(out,
				jen.Id(gp.holder()).Op(":=").Qual(cffiPath, "NewBuffer").Call(jen.Id(gp.id)),
				jen.Defer().Id(gp.holder()).Dot("Release").Call(),
			)
		case marshal.Pointer:
			var src jen.Code
			switch {
			case st.Source == pp.Holder:
				src = jen.Id(gp.holder()).Dot("Ptr").Call()
			case pp.Rule == marshal.RuleArray && gp.arrayLen == 0:
				// a zero-length array has no first element to point at
				src = jen.Parens(gp.raw.Clone()).Call(jen.Nil())
			case pp.Rule == marshal.RuleArray:
				src = jen.Op("&").Id(gp.id).Index(jen.Lit(0))
			default:
				src = jen.Qual(cffiPath, "SlicePtr").Call(jen.Id(gp.id))
			}
			out = append(out, jen.Id(gp.pointer()).Op(":=").Add(src))
		default:
			return nil, nil, fmt.Errorf("step %s has no Go rendering", st.Op)
		}
	}

	switch {
	case pp.Pointer != "":
		return out, jen.Id(gp.pointer()), nil
	case pp.Rule == marshal.RuleOption:
		return out, jen.Id(gp.value()), nil
	}
	return out, jen.Id(gp.id), nil
}

func (gf *goFunc) unwrap(gp *goParam, st marshal.Step) ([]jen.Code, error) {
	v := gp.value()
	// the zero value and null both render as the Go zero value
	decl := jen.Var().Id(v).Add(gp.raw.Clone())
	if _, zero := st.Default.(*syntax.ZeroValue); !zero && !isNullExpr(st.Default) {
		e, err := (goExprTranslator{}).expr(st.Default)
		if err != nil {
			return nil, fmt.Errorf("option_default: %w", err)
		}
		decl.Op("=").Add(e)
	}
	return []jen.Code{
		decl,
		jen.If(jen.Id(gp.id).Op("!=").Nil()).Block(
			jen.Id(v).Op("=").Op("*").Id(gp.id),
		),
	}, nil
}

// checks renders the null check and the error predicate on result.
func (gf *goFunc) checks() ([]jen.Code, error) {
	fp := gf.fp
	if !fp.Checked() {
		return nil, nil
	}
	tr := goExprTranslator{resultPtr: gf.resultPtr}
	var out []jen.Code

	if fp.NotNull && gf.resultPtr {
		nullErr := jen.Op("&").Qual(cffiPath, "CallError").Values(jen.Dict{
			jen.Id("Func"): jen.Lit(gf.fp.WrapperName),
			jen.Id("Err"):  jen.Qual(cffiPath, "ErrNullPointer"),
		})
		if gf.resultMode() {
			out = append(out, jen.If(jen.Id("result").Op("==").Nil()).Block(jen.Return(jen.Id("result"), nullErr)))
		} else {
			out = append(out, jen.If(jen.Id("result").Op("==").Nil()).Block(jen.Panic(nullErr)))
		}
	}

	cond, err := tr.expr(fp.ErrorCondition)
	if err != nil {
		return nil, fmt.Errorf("error_condition: %w", err)
	}
	if gf.resultMode() {
		out = append(out, jen.If(cond).Block(jen.Return(jen.Id("result"), gf.failure())))
		return out, nil
	}
	sentinel, err := tr.expr(fp.Sentinel)
	if err != nil {
		return nil, fmt.Errorf("error_sentinel: %w", err)
	}
	out = append(out, jen.If(cond).Block(jen.Return(sentinel)))
	return out, nil
}

// failure renders the error value a result-mode wrapper reports when the
// predicate holds.
func (gf *goFunc) failure() jen.Code {
	fields := jen.Dict{
		jen.Id("Func"):   jen.Lit(gf.fp.WrapperName),
		jen.Id("Result"): jen.Id("result"),
	}
	switch gf.fp.Failure {
	case plan.FailInitialize:
		fields[jen.Id("Err")] = jen.Qual(cffiPath, "ErrInitialize")
	case plan.FailFinalize:
		fields[jen.Id("Err")] = jen.Qual(cffiPath, "ErrFinalize")
	}
	return jen.Op("&").Qual(cffiPath, "CallError").Values(fields)
}
