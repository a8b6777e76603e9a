package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listTagFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered tests and data sources",
	Long: `List the tests and data sources declared in the config file.

Examples:
  suiterun list
  suiterun list --tag smoke
  suiterun list --config ./e2e/suiterun.yaml`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func init() {
	listCmd.Flags().StringVar(&listTagFlag, "tag", "", "Only list tests carrying the tag")
}

func listCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	name := color.New(color.Bold)
	unit := color.New(color.FgCyan)
	dim := color.New(color.FgHiBlack)
	if noColorFlag {
		for _, c := range []*color.Color{name, unit, dim} {
			c.DisableColor()
		}
	}

	out := cmd.OutOrStdout()

	names := reg.Names()
	if listTagFlag != "" {
		names = reg.Tagged(listTagFlag)
	}

	fmt.Fprintf(out, "Tests (%d):\n", len(names))
	for _, n := range names {
		entry, _ := reg.Test(n)
		fmt.Fprintf(out, "  %s %s\n", name.Sprint(n), unit.Sprintf("[%s]", entry.Unit))
		if entry.Description != "" {
			fmt.Fprintf(out, "    %s\n", entry.Description)
		}
		if len(entry.Depends) > 0 {
			fmt.Fprintf(out, "    %s %s\n", dim.Sprint("depends:"), strings.Join(entry.Depends, ", "))
		}
		if len(entry.Tags) > 0 {
			fmt.Fprintf(out, "    %s %s\n", dim.Sprint("tags:"), strings.Join(entry.Tags, ", "))
		}
		if len(entry.DataSources) > 0 {
			fmt.Fprintf(out, "    %s %s\n", dim.Sprint("data:"), strings.Join(entry.DataSources, ", "))
		}
	}

	sources := reg.SourceNames()
	sort.Strings(sources)
	if len(sources) > 0 {
		fmt.Fprintf(out, "\nData sources (%d):\n", len(sources))
		for _, n := range sources {
			src, _ := reg.Source(n)
			fmt.Fprintf(out, "  %s %s %s\n", name.Sprint(n), unit.Sprintf("[%s]", src.Kind), src.Path)
		}
	}

	return nil
}
