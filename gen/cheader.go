package gen

import (
	"fmt"
	"strings"

	"github.com/benn-herrera/cffigen/plan"
)

func init() {
	Register("cheader", func() Generator { return &CHeaderGenerator{} })
}

// CHeaderGenerator produces a C header declaring every foreign function
// of the module with its raw signature.
type CHeaderGenerator struct{}

func (g *CHeaderGenerator) Name() string { return "cheader" }

func (g *CHeaderGenerator) Generate(ctx *Context) ([]*OutputFile, error) {
	mp := ctx.Module
	pkg := ctx.PackageName()
	guardName := UpperSnakeCase(pkg) + "_H"
	callMacro := UpperSnakeCase(pkg) + "_CALL"

	var b strings.Builder
	fmt.Fprintf(&b, "/* %s */\n\n", generatedNotice(ctx))

	// Include guard
	fmt.Fprintf(&b, "#ifndef %s\n", guardName)
	fmt.Fprintf(&b, "#define %s\n\n", guardName)

	// Standard includes
	b.WriteString("#include <stddef.h>\n")
	b.WriteString("#include <stdint.h>\n")
	b.WriteString("#include <stdbool.h>\n\n")

	// Calling convention
	fmt.Fprintf(&b, "#if defined(_WIN32) && !defined(_WIN64)\n")
	fmt.Fprintf(&b, "#define %s __%s\n", callMacro, mp.CallingConvention)
	b.WriteString("#else\n")
	fmt.Fprintf(&b, "#define %s\n", callMacro)
	b.WriteString("#endif\n\n")

	b.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n")

	fmt.Fprintf(&b, "/* %s */\n", mp.Library)
	for _, fp := range mp.Functions {
		if err := writeCPrototype(&b, callMacro, fp); err != nil {
			return nil, fmt.Errorf("function %s: %w", fp.Name, err)
		}
	}

	b.WriteString("\n#ifdef __cplusplus\n}\n#endif\n\n")
	fmt.Fprintf(&b, "#endif\n")

	return []*OutputFile{
		{Path: pkg + ".h", Content: []byte(b.String())},
	}, nil
}

// maxPrototypeWidth is the longest prototype, without the semicolon, kept
// on one line. Longer ones get one parameter per line.
const maxPrototypeWidth = 80

func writeCPrototype(b *strings.Builder, callMacro string, fp *plan.FunctionPlan) error {
	returnType, err := CReturnType(fp.Return)
	if err != nil {
		return err
	}

	var params []string
	for _, pp := range fp.Params {
		ct, err := CType(pp.Raw)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", pp.Name, err)
		}
		params = append(params, ct+" "+pp.Name)
	}
	paramStr := strings.Join(params, ", ")
	if paramStr == "" {
		paramStr = "void"
	}

	if fp.Doc != "" {
		fmt.Fprintf(b, "/* %s */\n", strings.ReplaceAll(fp.Doc, "*/", "* /"))
	}

	// Decide formatting: single line or multi-line
	sig := fmt.Sprintf("%s %s %s(%s)", returnType, callMacro, fp.Symbol, paramStr)
	if len(sig) > maxPrototypeWidth && len(params) > 0 {
		fmt.Fprintf(b, "%s %s %s(\n", returnType, callMacro, fp.Symbol)
		for i, p := range params {
			if i < len(params)-1 {
				fmt.Fprintf(b, "    %s,\n", p)
			} else {
				fmt.Fprintf(b, "    %s);\n", p)
			}
		}
		return nil
	}
	fmt.Fprintf(b, "%s;\n", sig)
	return nil
}
