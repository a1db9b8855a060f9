package gen

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// GeneratedFileHeader returns the "do not edit" banner for a generated
// file, using the given line comment prefix.
func GeneratedFileHeader(ctx *Context, comment string) string {
	return fmt.Sprintf("%s %s\n", comment, generatedNotice(ctx))
}

func generatedNotice(ctx *Context) string {
	if ctx.SourcePath == "" {
		return "Code generated by cffigen. DO NOT EDIT."
	}
	return fmt.Sprintf("Code generated by cffigen from %s. DO NOT EDIT.", filepath.Base(ctx.SourcePath))
}

// UpperSnakeCase converts a snake_case string to UPPER_SNAKE_CASE.
func UpperSnakeCase(s string) string {
	return strings.ToUpper(s)
}

// ToPascalCase converts a snake_case string to PascalCase.
func ToPascalCase(s string) string {
	parts := strings.Split(s, "_")
	var result strings.Builder
	for _, part := range parts {
		if len(part) == 0 {
			continue
		}
		result.WriteString(strings.ToUpper(part[:1]))
		if len(part) > 1 {
			result.WriteString(part[1:])
		}
	}
	return result.String()
}

// SanitizeName lowercases s and replaces every character that cannot
// appear in a package or crate name with '_'.
// e.g., "DxLib_x64" → "dxlib_x64", "my-lib" → "my_lib"
func SanitizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || !unicode.IsLetter(rune(out[0])) {
		out = "lib" + out
	}
	return out
}

// exportName upper-cases the first letter so a wrapper is visible outside
// its Go package; the rest of the name is kept.
func exportName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
