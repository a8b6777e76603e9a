package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "suiterun",
	Short: "Run named test units in dependency order",
	Long: `suiterun executes a registry of named tests. Each test declares the
tests it depends on and the data sources it reads; suiterun resolves the
execution order, loads fresh data for every test, runs them one at a time
and writes an HTML report.

Examples:
  suiterun --all
  suiterun --tag smoke
  suiterun --test checkout
  suiterun --tests login checkout
  suiterun --tests login,checkout --output junit --output-file junit.xml
  suiterun --all --watch`,
	Args:          noPositionalArgs,
	RunE:          rootCommand,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	allFlag        bool
	tagFlag        string
	testFlag       string
	testsFlag      []string
	configFlag     string
	envFileFlag    string
	resultsDirFlag string
	reportDirFlag  string
	noOpenFlag     bool
	dryRunFlag     bool
	verboseFlag    bool
	quietFlag      bool
	noColorFlag    bool
	logFormatFlag  string
	outputFlag     string
	outputFileFlag string
	metricsFlag    string
	metricsFile    string
	notifyFlag     string
	notifyOnFlag   string
	slackWebhook   string
	teamsWebhook   string
	watchFlag      bool
)

// Execute runs the CLI and exits the process with the resulting code
func Execute(v, bt string) {
	version = v
	buildTime = bt
	err := rootCmd.Execute()
	if shouldPrint(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

func init() {
	// Selection
	rootCmd.Flags().BoolVar(&allFlag, "all", false, "Run every registered test")
	rootCmd.Flags().StringVar(&tagFlag, "tag", "", "Run tests carrying the tag")
	rootCmd.Flags().StringVar(&testFlag, "test", "", "Run one test plus its prerequisites")
	rootCmd.Flags().StringSliceVar(&testsFlag, "tests", nil, "Run the given tests plus their prerequisites (space- or comma-separated)")

	// Shared by subcommands
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFlag, "config", "c", getEnvString("SUITERUN_CONFIG", ""), "Path to config file (env: SUITERUN_CONFIG)")
	pf.StringVar(&envFileFlag, "env-file", getEnvString("SUITERUN_ENV_FILE", ""), "Path to .env file (env: SUITERUN_ENV_FILE)")
	pf.StringVar(&resultsDirFlag, "results-dir", getEnvString("SUITERUN_RESULTS_DIR", ""), "Directory for per-test result files (env: SUITERUN_RESULTS_DIR)")
	pf.StringVar(&reportDirFlag, "report-dir", getEnvString("SUITERUN_REPORT_DIR", ""), "Directory for the HTML report (env: SUITERUN_REPORT_DIR)")
	pf.BoolVar(&noOpenFlag, "no-open", getEnvBool("SUITERUN_NO_OPEN", false), "Do not open the report after the run (env: SUITERUN_NO_OPEN)")
	pf.BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("SUITERUN_VERBOSE", false), "Log configuration details (env: SUITERUN_VERBOSE)")
	pf.BoolVarP(&quietFlag, "quiet", "q", getEnvBool("SUITERUN_QUIET", false), "Only log warnings and errors (env: SUITERUN_QUIET)")
	pf.BoolVar(&noColorFlag, "no-color", getEnvBool("SUITERUN_NO_COLOR", false), "Disable colored output (env: SUITERUN_NO_COLOR)")
	pf.StringVar(&logFormatFlag, "log-format", getEnvString("SUITERUN_LOG_FORMAT", "console"), "Log format: console, json (env: SUITERUN_LOG_FORMAT)")

	// Execution
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Resolve and show the execution order without running")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch config and data files and re-run on change")

	// Output
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("SUITERUN_OUTPUT", ""), "Result format: json, junit, tap (env: SUITERUN_OUTPUT)")
	rootCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("SUITERUN_OUTPUT_FILE", ""), "Write results to file (default: stdout) (env: SUITERUN_OUTPUT_FILE)")

	// Metrics
	rootCmd.Flags().StringVar(&metricsFlag, "metrics", getEnvString("SUITERUN_METRICS", ""), "Metrics export format: json, prometheus (env: SUITERUN_METRICS)")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", getEnvString("SUITERUN_METRICS_FILE", ""), "Output file for metrics (default: stdout) (env: SUITERUN_METRICS_FILE)")

	// Notifications
	rootCmd.Flags().StringVar(&notifyFlag, "notify", getEnvString("SUITERUN_NOTIFY", ""), "Notification services: slack, teams (comma-separated) (env: SUITERUN_NOTIFY)")
	rootCmd.Flags().StringVar(&notifyOnFlag, "notify-on", getEnvString("SUITERUN_NOTIFY_ON", ""), "When to notify: always, failure, success, recovery (env: SUITERUN_NOTIFY_ON)")
	rootCmd.Flags().StringVar(&slackWebhook, "slack-webhook", getEnvString("SLACK_WEBHOOK", ""), "Slack webhook URL (env: SLACK_WEBHOOK)")
	rootCmd.Flags().StringVar(&teamsWebhook, "teams-webhook", getEnvString("TEAMS_WEBHOOK", ""), "Microsoft Teams webhook URL (env: TEAMS_WEBHOOK)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{code: ExitUsageError, err: err}
	})

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

// noPositionalArgs rejects arguments unless they continue a --tests list
func noPositionalArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 && len(testsFlag) == 0 {
		return usageErrorf("unexpected argument %q (select tests with --all, --tag, --test or --tests)", args[0])
	}
	return nil
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return val == "yes"
		}
		return b
	}
	return defaultVal
}
