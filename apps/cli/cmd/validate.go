package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/suiterun/packages/core/resolver"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config without running tests",
	Long: `Check the config file for unknown units, missing prerequisites,
unknown data sources, dependency cycles and invalid unit parameters.

Examples:
  suiterun validate
  suiterun validate --config ./e2e/suiterun.yaml`,
	Args: cobra.NoArgs,
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	unitReg := newUnitRegistry(cfg, newHTTPClient(cfg))
	problems := resolver.Validate(reg, unitReg.Has)

	// Factories check their parameters without running anything
	for _, name := range reg.Names() {
		entry, _ := reg.Test(name)
		if !unitReg.Has(entry.Unit) {
			continue
		}
		if _, err := unitReg.New(entry.Unit, entry.Params); err != nil {
			problems = append(problems, resolver.Problem{Test: name, Message: err.Error()})
		}
	}

	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s\n", p.Error())
		}
		return &exitError{code: ExitFailure, err: fmt.Errorf("validation failed: %d problem(s)", len(problems))}
	}

	source := cfg.Path
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s (%d tests, %d data sources)\n", source, reg.Len(), len(reg.SourceNames()))
	return nil
}
