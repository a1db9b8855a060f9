package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benn-herrera/cffigen/gen"
	"github.com/benn-herrera/cffigen/loader"
)

var valTargets string

var validateCmd = &cobra.Command{
	Use:   "validate [definition.yaml]...",
	Short: "Check definition files without generating",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&valTargets, "targets", "", "Also run the checks specific to these targets (comma-separated)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	var targets []string
	if valTargets != "" {
		var err error
		if targets, err = gen.ParseTargets(valTargets); err != nil {
			return err
		}
	}

	var failed int
	for _, path := range args {
		if !quiet {
			fmt.Printf("Validating %s\n", path)
		}

		// Load and schema-validate the definition
		_, scope, err := loader.LoadScope(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
			failed++
			continue
		}
		if verbose {
			fmt.Printf("  Package: %s\n", scope.Package)
			fmt.Printf("  Config annotations: %d\n", len(scope.Config))
			fmt.Printf("  Functions: %d\n", len(scope.Functions))
		}

		if err := checkScope(path, scope, targets); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
			failed++
			continue
		}
		if !quiet {
			fmt.Println("Validation passed.")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d definition(s) failed validation", failed, len(args))
	}
	return nil
}
