// Package cmd implements the suiterun CLI commands using Cobra.
//
// The root command runs tests selected with --all, --tag, --test or
// --tests. Available subcommands:
//   - list: Display the registered tests and data sources
//   - validate: Check the configuration without executing anything
//   - init: Create a starter suiterun.yaml
//   - report: Generate or open the HTML report from stored results
//   - version: Show suiterun version information
package cmd
