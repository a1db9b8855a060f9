package gen

import (
	"fmt"
	"strings"

	"github.com/benn-herrera/cffigen/marshal"
	"github.com/benn-herrera/cffigen/plan"
)

func init() {
	Register("rust", func() Generator { return &RustGenerator{} })
}

// RustGenerator produces a Rust module with one foreign declaration block
// for the scope and one safe wrapper per declared function.
type RustGenerator struct{}

func (g *RustGenerator) Name() string { return "rust" }

func (g *RustGenerator) Generate(ctx *Context) ([]*OutputFile, error) {
	mp := ctx.Module
	var b strings.Builder

	b.WriteString(GeneratedFileHeader(ctx, "//"))
	fmt.Fprintf(&b, "//! Safe wrappers for the foreign functions of %s.\n", mp.Library)
	if mp.Description != "" {
		fmt.Fprintf(&b, "//!\n//! %s\n", mp.Description)
	}
	b.WriteString("#![allow(non_snake_case, dead_code)]\n\n")
	b.WriteString("use std::ffi::CString;\n")
	b.WriteString("use std::os::raw::c_char;\n\n")

	writeRustPrelude(&b, mp.ErrorType)

	// Foreign declarations
	b.WriteString("mod ffi {\n")
	b.WriteString("    #[allow(unused_imports)]\n")
	b.WriteString("    use std::os::raw::*;\n\n")
	if mp.LinkKind != "" {
		fmt.Fprintf(&b, "    #[link(name = %q, kind = %q)]\n", mp.Library, mp.LinkKind)
	} else {
		fmt.Fprintf(&b, "    #[link(name = %q)]\n", mp.Library)
	}
	fmt.Fprintf(&b, "    extern %q {\n", mp.CallingConvention)
	for _, fp := range mp.Functions {
		writeRustExtern(&b, fp)
	}
	b.WriteString("    }\n}\n")

	for _, fp := range mp.Functions {
		b.WriteString("\n")
		if err := writeRustWrapper(&b, mp, fp); err != nil {
			return nil, fmt.Errorf("function %s: %w", fp.Name, err)
		}
	}

	return []*OutputFile{
		{Path: ctx.PackageName() + ".rs", Content: []byte(b.String())},
	}, nil
}

func writeRustPrelude(b *strings.Builder, errorType string) {
	b.WriteString("/// Holds a NUL-terminated copy of a string for the duration of a foreign call.\n")
	b.WriteString("pub struct CStringHolder(CString);\n\n")
	b.WriteString("impl CStringHolder {\n")
	b.WriteString("    pub fn new<T: AsRef<[u8]> + ?Sized>(s: &T) -> Self {\n")
	b.WriteString("        CStringHolder(CString::new(s.as_ref()).expect(\"string passed to a foreign function contains a NUL byte\"))\n")
	b.WriteString("    }\n\n")
	b.WriteString("    pub fn as_ptr(&self) -> *const c_char {\n")
	b.WriteString("        self.0.as_ptr()\n")
	b.WriteString("    }\n")
	b.WriteString("}\n\n")

	b.WriteString("#[derive(Debug, thiserror::Error)]\n")
	fmt.Fprintf(b, "pub enum %s {\n", errorType)
	b.WriteString("    #[error(\"initialize error\")]\n    InitializeError,\n")
	b.WriteString("    #[error(\"finalize error\")]\n    FinalizeError,\n")
	b.WriteString("    #[error(\"null pointer returned\")]\n    NullAssertError,\n")
	b.WriteString("    #[error(transparent)]\n    Other(#[from] anyhow::Error),\n")
	b.WriteString("}\n\n")
}

func writeRustExtern(b *strings.Builder, fp *plan.FunctionPlan) {
	var params []string
	for _, pp := range fp.Params {
		params = append(params, fmt.Sprintf("%s: %s", pp.Name, pp.Raw))
	}
	fmt.Fprintf(b, "        pub fn %s(%s)", fp.Symbol, strings.Join(params, ", "))
	if fp.Return != nil {
		fmt.Fprintf(b, " -> %s", fp.Return)
	}
	b.WriteString(";\n")
}

func writeRustWrapper(b *strings.Builder, mp *plan.ModulePlan, fp *plan.FunctionPlan) error {
	resultMode := fp.Strategy == plan.ResultWrapped

	if fp.Doc != "" {
		for _, line := range strings.Split(strings.TrimSpace(fp.Doc), "\n") {
			fmt.Fprintf(b, "/// %s\n", line)
		}
	}

	var params, body, args []string
	for _, pp := range fp.Params {
		wrapper, stmts, err := rustConvert(pp)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", pp.Name, err)
		}
		params = append(params, fmt.Sprintf("%s: %s", pp.Name, wrapper))
		body = append(body, stmts...)
		args = append(args, pp.CallArg)
	}

	ret := "()"
	if fp.Return != nil {
		ret = fp.Return.String()
	}
	fmt.Fprintf(b, "pub fn %s(%s)", fp.WrapperName, strings.Join(params, ", "))
	switch {
	case resultMode:
		fmt.Fprintf(b, " -> Result<%s, %s>", ret, mp.ErrorType)
	case fp.Return != nil:
		fmt.Fprintf(b, " -> %s", ret)
	}
	b.WriteString(" {\n")
	for _, s := range body {
		fmt.Fprintf(b, "    %s\n", s)
	}

	call := fmt.Sprintf("unsafe { ffi::%s(%s) }", fp.Symbol, strings.Join(args, ", "))
	if !fp.Checked() {
		if resultMode {
			fmt.Fprintf(b, "    %s;\n    Ok(())\n}\n", call)
		} else {
			fmt.Fprintf(b, "    %s\n}\n", call)
		}
		return nil
	}

	fmt.Fprintf(b, "    let result = %s;\n", call)
	if fp.NotNull {
		if resultMode {
			fmt.Fprintf(b, "    if result.is_null() {\n        return Err(%s::NullAssertError);\n    }\n", mp.ErrorType)
		} else {
			fmt.Fprintf(b, "    assert!(!result.is_null(), \"{} returned a null pointer\", stringify!(%s));\n", fp.WrapperName)
		}
	}
	fmt.Fprintf(b, "    if %s {\n", fp.ErrorCondition)
	if resultMode {
		fmt.Fprintf(b, "        return Err(%s);\n", rustFailure(mp.ErrorType, fp))
		b.WriteString("    }\n    Ok(result)\n}\n")
	} else {
		fmt.Fprintf(b, "        return %s;\n", fp.Sentinel)
		b.WriteString("    }\n    result\n}\n")
	}
	return nil
}

func rustFailure(errorType string, fp *plan.FunctionPlan) string {
	switch fp.Failure {
	case plan.FailInitialize:
		return errorType + "::InitializeError"
	case plan.FailFinalize:
		return errorType + "::FinalizeError"
	}
	return fmt.Sprintf("%s::Other(anyhow::anyhow!(\"Error in {}\", stringify!(%s)))", errorType, fp.WrapperName)
}

// rustConvert returns the wrapper parameter type and the conversion
// statements for one parameter, in plan order.
func rustConvert(pp *marshal.ParameterPlan) (string, []string, error) {
	wrapper := pp.Wrapper.String()

	// A borrowed Into<Vec<T>> cannot be converted without taking it, so
	// the wrapper takes the bound by value and materializes it.
	if pp.Rule == marshal.RuleIntoVec && pp.Ownership != marshal.OwnedVec {
		elem := pp.Shape.Elem.String()
		holder, ptr := pp.Holder, pp.Pointer
		binding, method := "let", "as_ptr"
		if pp.Steps[0].Mutable {
			binding, method = "let mut", "as_mut_ptr"
		}
		return fmt.Sprintf("impl Into<Vec<%s>>", elem), []string{
			fmt.Sprintf("%s %s: Vec<%s> = %s.into();", binding, holder, elem, pp.Name),
			fmt.Sprintf("let %s = %s.%s();", ptr, holder, method),
		}, nil
	}

	var out []string
	for _, st := range pp.Steps {
		switch st.Op {
		case marshal.Unwrap:
			out = append(out, fmt.Sprintf("let %s = %s.unwrap_or(%s);", st.Bind, st.Source, st.Default))
		case marshal.CString:
			var src string
			switch st.Access {
			case marshal.ViaAsRef:
				src = st.Source + ".as_ref()"
			case marshal.ViaToString:
				src = "&" + st.Source + ".to_string()"
			default:
				src = "&" + st.Source
			}
			out = append(out, fmt.Sprintf("let %s = CStringHolder::new(%s);", st.Bind, src))
		case marshal.LeakCString:
			out = append(out, fmt.Sprintf(
				"let %s = CString::new(%s.as_str()).expect(\"string passed to a foreign function contains a NUL byte\").into_raw();",
				st.Bind, st.Source))
		case marshal.Collect:
			out = append(out, fmt.Sprintf("let %s: Vec<%s> = %s.into();", st.Bind, st.Elem, st.Source))
		case marshal.Pointer:
			out = append(out, fmt.Sprintf("let %s = %s;", st.Bind, rustPointer(st)))
		default:
			return "", nil, fmt.Errorf("step %s has no Rust rendering", st.Op)
		}
	}
	return wrapper, out, nil
}

func rustPointer(st marshal.Step) string {
	switch st.Access {
	case marshal.ViaAsRef:
		return st.Source + ".as_ref().as_ptr()"
	case marshal.ViaAsMut:
		return st.Source + ".as_mut().as_mut_ptr()"
	}
	if st.Mutable {
		return st.Source + ".as_mut_ptr()"
	}
	return st.Source + ".as_ptr()"
}
