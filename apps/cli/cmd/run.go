package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/abdul-hamid-achik/suiterun/packages/core/config"
	"github.com/abdul-hamid-achik/suiterun/packages/core/runner"
	"github.com/abdul-hamid-achik/suiterun/packages/export/metrics"
	"github.com/abdul-hamid-achik/suiterun/packages/logger"
	"github.com/abdul-hamid-achik/suiterun/packages/notify"
	"github.com/abdul-hamid-achik/suiterun/packages/output"
	"github.com/abdul-hamid-achik/suiterun/packages/report"
	"github.com/spf13/cobra"
)

// selection is what the user asked to run
type selection struct {
	all   bool
	tag   string
	test  string
	tests []string
}

// currentSelection reads the selection flags. Positional args extend the
// --tests list, so "--tests a b" and "--tests a,b" are the same.
func currentSelection(args []string) selection {
	sel := selection{all: allFlag, tag: tagFlag, test: testFlag}
	if len(testsFlag) > 0 {
		sel.tests = append(slices.Clone(testsFlag), args...)
	}
	return sel
}

func (s selection) count() int {
	n := 0
	for _, set := range []bool{s.all, s.tag != "", s.test != "", len(s.tests) > 0} {
		if set {
			n++
		}
	}
	return n
}

func (s selection) String() string {
	switch {
	case s.all:
		return "all tests"
	case s.tag != "":
		return "tag " + s.tag
	case s.test != "":
		return "test " + s.test
	default:
		return "tests " + strings.Join(s.tests, ", ")
	}
}

func (s selection) run(ctx context.Context, r *runner.Runner) (*runner.RunResult, error) {
	switch {
	case s.all:
		return r.RunAll(ctx)
	case s.tag != "":
		return r.RunTag(ctx, s.tag)
	case s.test != "":
		return r.Run(ctx, []string{s.test})
	default:
		return r.Run(ctx, s.tests)
	}
}

func rootCommand(cmd *cobra.Command, args []string) error {
	sel := currentSelection(args)
	if sel.count() == 0 {
		return cmd.Help()
	}
	if sel.count() > 1 {
		return usageErrorf("use only one of --all, --tag, --test, --tests")
	}
	if err := checkFormats(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger(cmd)

	if watchFlag {
		return watch(ctx, cmd, sel, log)
	}

	return runOutcome(runOnce(ctx, cmd, sel, log, &session{}))
}

// runOutcome maps a run to the command's error: the run's own error, or
// ExitFailure when any test failed
func runOutcome(result *runner.RunResult, err error) error {
	if err != nil {
		return err
	}
	if result != nil && !result.Success {
		return &exitError{code: ExitFailure}
	}
	return nil
}

func checkFormats() error {
	if outputFlag != "" && !slices.Contains(output.Formats, strings.ToLower(outputFlag)) {
		return usageErrorf("invalid --output %q (use %s)", outputFlag, strings.Join(output.Formats, ", "))
	}
	if metricsFlag != "" {
		if _, err := metrics.NewExporter(metricsFlag, io.Discard); err != nil {
			return &exitError{code: ExitUsageError, err: err}
		}
	}
	if notifyOnFlag != "" {
		if _, err := notify.ParseNotifyOn(notifyOnFlag); err != nil {
			return &exitError{code: ExitUsageError, err: err}
		}
	}
	return nil
}

// fatal logs err and wraps it so Execute does not print it twice
func fatal(log logger.Logger, err error) error {
	log.Log(err.Error(), logger.LevelError)
	return &exitError{code: ExitFailure, err: err, logged: true}
}

// session is the state kept across the runs of one invocation
type session struct {
	runs     int
	notifier *notify.Manager
}

// runOnce loads the config, runs the selection and handles everything that
// follows a run: report, result output, metrics and notifications. The
// report is only opened after the first run of a session.
func runOnce(ctx context.Context, cmd *cobra.Command, sel selection, log logger.Logger, s *session) (*runner.RunResult, error) {
	s.runs++

	cfg, err := loadConfig()
	if err != nil {
		return nil, fatal(log, err)
	}
	if verboseFlag {
		source := cfg.Path
		if source == "" {
			source = "defaults"
		}
		log.Log(fmt.Sprintf("Using config: %s (%d tests, %d data sources)", source, len(cfg.Tests), len(cfg.DataSources)), logger.LevelInfo)
	}

	a, err := buildApp(cfg, log)
	if err != nil {
		return nil, fatal(log, err)
	}

	result, err := sel.run(ctx, a.runner)
	if err != nil {
		return nil, fatal(log, err)
	}
	if result == nil || result.DryRun {
		return result, nil
	}

	if err := report.Trigger(ctx, a.reporter, log, s.runs == 1 && cfg.GetOpenReport()); err != nil {
		return result, fatal(log, err)
	}

	if err := writeOutput(cmd, result); err != nil {
		return result, fatal(log, fmt.Errorf("writing output: %w", err))
	}
	if err := writeMetrics(cmd, result); err != nil {
		log.Log(fmt.Sprintf("Could not export metrics: %v", err), logger.LevelWarn)
	}
	s.sendNotifications(ctx, cfg, sel, result, log)

	return result, nil
}

// openOutput returns path for writing, or the command's stdout when empty
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func writeOutput(cmd *cobra.Command, result *runner.RunResult) error {
	if outputFlag == "" {
		return nil
	}
	w, closeFn, err := openOutput(cmd, outputFileFlag)
	if err != nil {
		return err
	}
	defer closeFn()

	formatter, err := output.New(outputFlag, w)
	if err != nil {
		return err
	}
	formatter.FormatResult(result)
	return formatter.Flush()
}

func writeMetrics(cmd *cobra.Command, result *runner.RunResult) error {
	if metricsFlag == "" {
		return nil
	}
	w, closeFn, err := openOutput(cmd, metricsFile)
	if err != nil {
		return err
	}
	defer closeFn()

	exporter, err := metrics.NewExporter(metricsFlag, w)
	if err != nil {
		return err
	}
	collector := metrics.NewCollector(exporter)
	collector.RecordRun(result)
	if err := collector.Flush(); err != nil {
		return err
	}
	return collector.Close()
}

// notifyManager builds the notifiers from flags, falling back to the config
func notifyManager(cfg *config.Config) (*notify.Manager, error) {
	on, err := notify.ParseNotifyOn(firstNonEmpty(notifyOnFlag, cfg.Notify.On))
	if err != nil {
		return nil, err
	}
	slackURL := firstNonEmpty(slackWebhook, cfg.Notify.Slack)
	teamsURL := firstNonEmpty(teamsWebhook, cfg.Notify.Teams)

	services := map[string]bool{}
	if notifyFlag != "" {
		for _, s := range strings.Split(notifyFlag, ",") {
			services[strings.ToLower(strings.TrimSpace(s))] = true
		}
	} else {
		services["slack"] = slackURL != ""
		services["teams"] = teamsURL != ""
	}

	m := notify.NewManager(on)
	for service, enabled := range services {
		if !enabled {
			continue
		}
		switch service {
		case "slack":
			if slackURL == "" {
				return nil, fmt.Errorf("slack notifications need --slack-webhook")
			}
			m.AddNotifier(notify.NewSlackNotifier(slackURL))
		case "teams":
			if teamsURL == "" {
				return nil, fmt.Errorf("teams notifications need --teams-webhook")
			}
			m.AddNotifier(notify.NewTeamsNotifier(teamsURL))
		default:
			return nil, fmt.Errorf("unknown notification service %q (use slack, teams)", service)
		}
	}
	return m, nil
}

func (s *session) sendNotifications(ctx context.Context, cfg *config.Config, sel selection, result *runner.RunResult, log logger.Logger) {
	if s.notifier == nil {
		m, err := notifyManager(cfg)
		if err != nil {
			log.Log(fmt.Sprintf("Notifications disabled: %v", err), logger.LevelWarn)
			m = notify.NewManager(notify.NotifyFailure)
		}
		s.notifier = m
	}
	if s.notifier.Len() == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, notify.SummaryFromRun(result, sel.String())); err != nil {
		log.Log(fmt.Sprintf("Failed to send notification: %v", err), logger.LevelWarn)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
