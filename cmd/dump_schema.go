package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/benn-herrera/cffigen/loader"
)

var (
	dumpSchemaOutput string
	dumpSchemaYAML   bool
)

var dumpSchemaCmd = &cobra.Command{
	Use:   "dump_schema",
	Short: "Print the built-in definition JSON Schema",
	Long:  "Prints the JSON Schema used to validate cffigen definition files. Use -o to write to a file and --yaml for YAML output.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var w io.Writer = cmd.OutOrStdout()
		if dumpSchemaOutput != "" {
			f, err := os.Create(dumpSchemaOutput)
			if err != nil {
				return fmt.Errorf("writing schema to %s: %w", dumpSchemaOutput, err)
			}
			defer f.Close()
			w = f
		}
		if err := writeSchema(w, dumpSchemaYAML); err != nil {
			return err
		}
		if dumpSchemaOutput != "" && !quiet {
			fmt.Fprintf(os.Stderr, "Schema written to %s\n", dumpSchemaOutput)
		}
		return nil
	},
}

func init() {
	dumpSchemaCmd.Flags().StringVarP(&dumpSchemaOutput, "output", "o", "", "Write schema to file instead of stdout")
	dumpSchemaCmd.Flags().BoolVar(&dumpSchemaYAML, "yaml", false, "Print the schema as YAML")
	rootCmd.AddCommand(dumpSchemaCmd)
}

func writeSchema(w io.Writer, asYAML bool) error {
	schema := loader.SchemaJSON()
	if !asYAML {
		_, err := fmt.Fprintln(w, schema)
		return err
	}
	// Decode into yaml.Node so key order survives the conversion.
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(schema), &node); err != nil {
		return fmt.Errorf("converting schema: %w", err)
	}
	blockStyle(&node)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles the JSON source carries.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
