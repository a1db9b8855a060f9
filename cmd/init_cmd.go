package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benn-herrera/cffigen/gen"
)

var (
	initName    string
	initLibrary string
	initOutput  string
	initForce   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter definition file",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initName, "name", "n", "mylib", "Definition and package name")
	initCmd.Flags().StringVar(&initLibrary, "library", "", "Foreign library name (defaults to --name)")
	initCmd.Flags().StringVarP(&initOutput, "output", "o", ".", "Output directory")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing definition")
	rootCmd.AddCommand(initCmd)
}

func starterDefinition(pkg, library string) string {
	return fmt.Sprintf(`package: %s
description: Foreign functions exported by %s.
config:
  - library_name = %q
  - arg_convert = default
  - as_result
functions:
  - sig: 'fn Init() -> i32'
    doc: Initializes the library.
  - 'fn Version() -> u32'
  - 'fn SetName(name: &str) -> i32'
  - sig: 'fn Lookup(key: &str) -> *const u8'
    attrs:
      - not_null_assert
  - sig: 'fn Wait(timeout: Option<i32>) -> i32'
    attrs:
      - error_condition = "result < 0"
    args:
      timeout:
        - option_default = "-1"
`, pkg, library, library)
}

func runInit(cmd *cobra.Command, args []string) error {
	pkg := gen.SanitizeName(initName)
	library := initLibrary
	if library == "" {
		library = initName
	}
	if !quiet {
		fmt.Printf("Initializing definition %s in %s\n", pkg, initOutput)
	}

	if err := os.MkdirAll(initOutput, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	defPath := filepath.Join(initOutput, pkg+".yaml")
	if _, err := os.Stat(defPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", defPath)
	}
	if err := os.WriteFile(defPath, []byte(starterDefinition(pkg, library)), 0644); err != nil {
		return fmt.Errorf("writing definition: %w", err)
	}

	if !quiet {
		fmt.Printf("Created:\n")
		fmt.Printf("  %s\n", defPath)
		fmt.Printf("\nNext: cffigen validate %s\n", defPath)
	}
	return nil
}
