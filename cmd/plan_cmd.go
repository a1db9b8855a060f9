package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/benn-herrera/cffigen/plan"
)

var planFormat string

var planCmd = &cobra.Command{
	Use:   "plan [definition.yaml]",
	Short: "Print the wrapper plan for a definition without rendering it",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFormat, "format", "table", "Output format (table, yaml)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	mp, err := loadModule(args[0], nil)
	if err != nil {
		return err
	}
	return writePlan(os.Stdout, mp, planFormat)
}

type planView struct {
	Library   string         `yaml:"library"`
	LinkKind  string         `yaml:"link_kind,omitempty"`
	ErrorType string         `yaml:"error_type"`
	Functions []functionView `yaml:"functions"`
}

type functionView struct {
	Name           string      `yaml:"name"`
	Wrapper        string      `yaml:"wrapper"`
	Symbol         string      `yaml:"symbol"`
	Strategy       string      `yaml:"strategy"`
	Failure        string      `yaml:"failure"`
	Return         string      `yaml:"return,omitempty"`
	ErrorCondition string      `yaml:"error_condition,omitempty"`
	Sentinel       string      `yaml:"sentinel,omitempty"`
	NotNull        bool        `yaml:"not_null,omitempty"`
	Params         []paramView `yaml:"params,omitempty"`
}

type paramView struct {
	Name      string   `yaml:"name"`
	Rule      string   `yaml:"rule"`
	Wrapper   string   `yaml:"wrapper"`
	Raw       string   `yaml:"raw"`
	Ownership string   `yaml:"ownership"`
	Steps     []string `yaml:"steps,omitempty"`
}

func newPlanView(mp *plan.ModulePlan) planView {
	v := planView{Library: mp.Library, LinkKind: mp.LinkKind, ErrorType: mp.ErrorType}
	for _, fp := range mp.Functions {
		fv := functionView{
			Name:     fp.Name,
			Wrapper:  fp.WrapperName,
			Symbol:   fp.Symbol,
			Strategy: fp.Strategy.String(),
			Failure:  fp.Failure.String(),
			NotNull:  fp.NotNull,
		}
		// unit returns are never checked
		if fp.Checked() {
			fv.Return = fp.Return.String()
			fv.ErrorCondition = fp.ErrorCondition.String()
			if fp.Strategy == plan.RawPassthrough {
				fv.Sentinel = fp.Sentinel.String()
			}
		}
		for _, pp := range fp.Params {
			pv := paramView{
				Name:      pp.Name,
				Rule:      string(pp.Rule),
				Wrapper:   pp.Wrapper.String(),
				Raw:       pp.Raw.String(),
				Ownership: pp.Ownership.String(),
			}
			for _, st := range pp.Steps {
				pv.Steps = append(pv.Steps, st.String())
			}
			fv.Params = append(fv.Params, pv)
		}
		v.Functions = append(v.Functions, fv)
	}
	return v
}

func writePlan(w io.Writer, mp *plan.ModulePlan, format string) error {
	view := newPlanView(mp)
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		return enc.Close()
	case "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "WRAPPER\tSYMBOL\tSTRATEGY\tFAILURE\tPARAMS\n")
		for _, fv := range view.Functions {
			var rules []string
			for _, pv := range fv.Params {
				rules = append(rules, pv.Name+":"+pv.Rule)
			}
			params := strings.Join(rules, " ")
			if params == "" {
				params = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", fv.Wrapper, fv.Symbol, fv.Strategy, fv.Failure, params)
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown plan format %q (want table or yaml)", format)
}
