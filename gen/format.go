package gen

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"
)

// Formatter is an external tool that rewrites generated files in place.
type Formatter struct {
	Tool string   // binary name looked up in PATH
	Env  string   // environment variable holding an explicit path
	Args []string // arguments placed before the file list
	Ext  string   // extension of the files it formats
}

// The Go renderer formats its own output.
var formatters = map[string]Formatter{
	"rust":    {Tool: "rustfmt", Env: "CFFIGEN_RUSTFMT", Args: []string{"--edition", "2021"}, Ext: ".rs"},
	"cheader": {Tool: "clang-format", Env: "CFFIGEN_CLANG_FORMAT", Args: []string{"-i"}, Ext: ".h"},
}

// FormatterFor returns the external formatter used for a target's output.
func FormatterFor(target string) (Formatter, bool) {
	f, ok := formatters[target]
	return f, ok
}

// FormatConfig holds configuration for running the external formatters.
type FormatConfig struct {
	Targets []string // targets that were rendered
	Files   []string // paths of the files written
	DryRun  bool
	Verbose bool
	Quiet   bool
}

// ResolveTool finds a formatter binary using the resolution order:
// 1. The environment variable named by envVar
// 2. name in PATH
func ResolveTool(name, envVar string) (string, error) {
	if envPath := env.Str(envVar); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s not found at %s: %s", name, envVar, envPath)
		}
		return envPath, nil
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH; set %s to its location", name, envVar)
	}
	return path, nil
}

// filesWithExt returns the paths in files ending in ext, in order.
func filesWithExt(files []string, ext string) []string {
	var out []string
	for _, f := range files {
		if filepath.Ext(f) == ext {
			out = append(out, f)
		}
	}
	return out
}

// RunFormatters invokes each target's formatter once over that target's
// files. A formatter that cannot be found is skipped with a warning.
// Returns the number of formatter invocations run.
func RunFormatters(cfg *FormatConfig) (int, error) {
	var runs int
	for _, target := range cfg.Targets {
		f, ok := FormatterFor(target)
		if !ok {
			continue
		}
		files := filesWithExt(cfg.Files, f.Ext)
		if len(files) == 0 {
			continue
		}

		toolPath, err := ResolveTool(f.Tool, f.Env)
		if err != nil {
			slog.Warn("skipping formatter", "target", target, "err", err)
			continue
		}

		args := append(append([]string{}, f.Args...), files...)
		if cfg.DryRun {
			fmt.Printf("  Would run: %s %s\n", toolPath, strings.Join(args, " "))
			continue
		}
		if cfg.Verbose {
			fmt.Printf("  Running: %s %s\n", toolPath, strings.Join(args, " "))
		}

		cmd := exec.Command(toolPath, args...)
		output, err := cmd.CombinedOutput()
		if err != nil {
			return runs, fmt.Errorf("%s failed: %w\n%s", f.Tool, err, string(output))
		}
		if !cfg.Quiet && len(output) > 0 {
			fmt.Print(string(output))
		}
		runs++
	}
	return runs, nil
}
