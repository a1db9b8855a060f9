package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/benn-herrera/cffigen/gen"
)

var (
	genOutput  string
	genTargets string
	genPackage string
	genDryRun  bool
	genFormat  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [definition.yaml]...",
	Short: "Generate safe wrappers for one or more definition files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", env.Str("CFFIGEN_OUTPUT", "./generated"), "Output directory")
	generateCmd.Flags().StringVar(&genTargets, "targets", env.Str("CFFIGEN_TARGETS", "go"),
		fmt.Sprintf("Comma-separated targets (%s)", strings.Join(gen.All(), ", ")))
	generateCmd.Flags().StringVar(&genPackage, "package", "", "Override the generated package name")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "Show what would be generated without writing")
	generateCmd.Flags().BoolVar(&genFormat, "format-output", env.Bool("CFFIGEN_FORMAT_OUTPUT"), "Run rustfmt and clang-format over the generated files")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	targets, err := gen.ParseTargets(genTargets)
	if err != nil {
		return err
	}
	if genPackage != "" && len(args) > 1 {
		return fmt.Errorf("--package applies to a single definition, got %d", len(args))
	}

	var written int
	for _, path := range args {
		if !quiet {
			fmt.Printf("Generating from %s\n", path)
		}
		mp, err := loadModule(path, targets)
		if err != nil {
			return err
		}

		ctx := gen.NewContext(mp, path, genOutput)
		ctx.Package = genPackage

		// Run generators and collect output
		var allFiles []*gen.OutputFile
		for _, name := range targets {
			g, _ := gen.Get(name)
			if verbose {
				fmt.Printf("  Running generator: %s\n", g.Name())
			}
			files, err := g.Generate(ctx)
			if err != nil {
				return fmt.Errorf("%s: generator %s failed: %w", path, name, err)
			}
			allFiles = append(allFiles, files...)
		}

		paths, err := writeOutputs(allFiles)
		if err != nil {
			return err
		}
		written += len(paths)

		if genFormat {
			_, err := gen.RunFormatters(&gen.FormatConfig{
				Targets: targets,
				Files:   paths,
				DryRun:  genDryRun,
				Verbose: verbose,
				Quiet:   quiet,
			})
			if err != nil {
				return fmt.Errorf("%s: formatting: %w", path, err)
			}
		}
	}

	if !quiet && !genDryRun {
		fmt.Printf("Generated %d files in %s\n", written, genOutput)
	}
	return nil
}

// writeOutputs writes files under the output directory and returns the
// paths written. In a dry run nothing is written and every path that
// would have been is returned.
func writeOutputs(files []*gen.OutputFile) ([]string, error) {
	var written []string
	for _, f := range files {
		outPath := filepath.Join(genOutput, f.Path)
		if genDryRun {
			fmt.Printf("  Would write: %s\n", outPath)
			written = append(written, outPath)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return nil, fmt.Errorf("creating directory for %s: %w", outPath, err)
		}
		if err := os.WriteFile(outPath, f.Content, 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}
		slog.Debug("wrote output", "path", outPath, "bytes", len(f.Content))
		written = append(written, outPath)
		if verbose {
			fmt.Printf("  Wrote: %s\n", outPath)
		}
	}
	return written, nil
}
