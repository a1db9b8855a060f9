package cmd

import (
	"fmt"
	"log/slog"

	"github.com/benn-herrera/cffigen/loader"
	"github.com/benn-herrera/cffigen/model"
	"github.com/benn-herrera/cffigen/plan"
	"github.com/benn-herrera/cffigen/validate"
)

// loadModule loads, validates and plans one definition file for the
// given targets.
func loadModule(path string, targets []string) (*plan.ModulePlan, error) {
	_, scope, err := loader.LoadScope(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if err := checkScope(path, scope, targets); err != nil {
		return nil, err
	}
	mp, err := plan.BuildModule(scope)
	if err != nil {
		return nil, fmt.Errorf("planning %s: %w", path, err)
	}
	slog.Info("planned module", "definition", path, "library", mp.Library, "functions", len(mp.Functions))
	return mp, nil
}

func checkScope(path string, scope *model.Scope, targets []string) error {
	result := validate.Validate(scope, targets)
	if !result.IsValid() {
		return fmt.Errorf("%s: validation failed:\n%s", path, result.Error())
	}
	return nil
}
