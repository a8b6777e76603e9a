package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate or open the HTML report",
	Long: `Work with the report built from the stored per-test result files.

Examples:
  suiterun report generate
  suiterun report open`,
}

var reportGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the HTML report from the results directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rep := newReporter(cfg)
		if err := rep.GenerateReport(cmd.Context()); err != nil {
			return fmt.Errorf("generating report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report generated: %s\n", rep.IndexPath())
		return nil
	},
}

var reportOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the generated report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return newReporter(cfg).OpenReport(cmd.Context())
	},
}

func init() {
	reportCmd.AddCommand(reportGenerateCmd)
	reportCmd.AddCommand(reportOpenCmd)
}
