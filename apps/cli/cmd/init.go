package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/suiterun/packages/core/config"
	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new suiterun project",
	Long: `Initialize a new suiterun project.

This creates:
  - suiterun.yaml     - Config with example tests and a data source
  - data/users.json   - Example data file

Examples:
  suiterun init
  suiterun init ./e2e --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleUsers = `{
  "users": [
    {"email": "ada@example.com", "name": "Ada"},
    {"email": "grace@example.com", "name": "Grace"}
  ]
}
`

func scaffoldConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Defaults = map[string]any{
		"baseUrl": "http://localhost:3000",
	}
	cfg.DataSources = map[string]registry.DataSource{
		"users": {
			Kind: registry.KindJSON,
			Path: "data/users.json",
			Fallback: map[string]any{
				"users": []any{
					map[string]any{"email": "fallback@example.com", "name": "Fallback"},
				},
			},
		},
	}
	cfg.Tests = []registry.Entry{
		{
			Name:        "health",
			Description: "API is up",
			Unit:        "http",
			Tags:        []string{"smoke"},
			Params: map[string]any{
				"url":          "{{baseUrl}}/health",
				"expectStatus": 200,
			},
		},
		{
			Name:        "list-users",
			Description: "Every fixture user is returned",
			Unit:        "http",
			Depends:     []string{"health"},
			DataSources: []string{"users"},
			Params: map[string]any{
				"url": "{{baseUrl}}/users",
				"expect": []any{
					map[string]any{"subject": "status", "op": "==", "value": 200},
					map[string]any{"subject": "body.0.email", "op": "==", "value": "{{users.users.0.email}}"},
				},
			},
		},
		{
			Name:    "cleanup",
			Unit:    "shell",
			Depends: []string{"list-users"},
			Params: map[string]any{
				"command": "echo done",
			},
		},
	}
	return cfg
}

func initCommand(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	configFile := filepath.Join(dir, "suiterun.yaml")
	dataFile := filepath.Join(dir, "data", "users.json")

	if !forceInit {
		for _, f := range []string{configFile, dataFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(dataFile), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := scaffoldConfig().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(dataFile, []byte(exampleUsers), 0644); err != nil {
		return fmt.Errorf("failed to create data file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", dataFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nNext steps:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  suiterun validate\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  suiterun --tag smoke\n")
	return nil
}
