package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/suiterun/packages/core/config"
	"github.com/abdul-hamid-achik/suiterun/packages/core/defaults"
	"github.com/abdul-hamid-achik/suiterun/packages/core/env"
	"github.com/abdul-hamid-achik/suiterun/packages/core/loader"
	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"github.com/abdul-hamid-achik/suiterun/packages/core/runner"
	"github.com/abdul-hamid-achik/suiterun/packages/http"
	"github.com/abdul-hamid-achik/suiterun/packages/logger"
	"github.com/abdul-hamid-achik/suiterun/packages/report"
	"github.com/abdul-hamid-achik/suiterun/packages/units"
	"github.com/spf13/cobra"
)

// app holds the components of one run, built from the config
type app struct {
	cfg      *config.Config
	reg      *registry.Registry
	units    *units.Registry
	reporter *report.FileReporter
	runner   *runner.Runner
}

func newLogger(cmd *cobra.Command) *logger.Console {
	return logger.New(
		logger.WithWriter(cmd.ErrOrStderr()),
		logger.WithNoColor(noColorFlag),
		logger.WithJSON(strings.EqualFold(logFormatFlag, "json")),
		logger.WithQuiet(quietFlag),
	)
}

func absFlag(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// loadConfig reads the config file and applies the CLI overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	overrides := &config.Config{
		ResultsDir: absFlag(resultsDirFlag),
		ReportDir:  absFlag(reportDirFlag),
		EnvFile:    absFlag(envFileFlag),
	}
	if noOpenFlag {
		overrides.OpenReport = config.BoolPtr(false)
	}
	return cfg.Merge(overrides), nil
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return http.NewClient(
		http.WithTimeout(cfg.TimeoutDuration()),
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithDefaultHeaders(cfg.Headers),
	)
}

// newWaitForClient polls services before a run. It keeps a short timeout but
// shares the TLS and header settings of the units' client.
func newWaitForClient(cfg *config.Config) *http.Client {
	return http.NewClient(
		http.WithTimeout(5*time.Second),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithDefaultHeaders(cfg.Headers),
	)
}

func newUnitRegistry(cfg *config.Config, client *http.Client) *units.Registry {
	reg := units.NewRegistry()
	units.RegisterBuiltins(reg, units.WithBaseDir(cfg.BaseDir), units.WithHTTPClient(client))
	return reg
}

func newReporter(cfg *config.Config) *report.FileReporter {
	return report.NewFileReporter(
		cfg.Resolve(cfg.ResultsDir),
		cfg.Resolve(cfg.ReportDir),
		report.WithTitle(cfg.ReportTitle),
	)
}

func runnerConfig(cfg *config.Config, dryRun bool) *runner.Config {
	rc := &runner.Config{
		DryRun:  dryRun,
		BaseDir: cfg.BaseDir,
		Hooks: runner.Hooks{
			BeforeAll: cfg.Hooks.BeforeAll,
			AfterAll:  cfg.Hooks.AfterAll,
		},
	}
	for _, w := range cfg.WaitFor {
		timeout, interval := w.Durations()
		rc.WaitFor = append(rc.WaitFor, runner.WaitFor{
			URL:      w.URL,
			Status:   w.Status,
			Timeout:  timeout,
			Interval: interval,
		})
	}
	return rc
}

func buildApp(cfg *config.Config, log logger.Logger) (*app, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("building registry: %w", err)
	}

	envFile := cfg.Resolve(cfg.EnvFile)
	if envFile != "" {
		if _, err := env.LoadAndExportDotEnv(envFile); err != nil {
			log.Log(fmt.Sprintf("Could not load env file: %v", err), logger.LevelWarn)
			envFile = ""
		}
	}

	opts := []defaults.Option{
		defaults.WithTemplates(cfg.Defaults),
		defaults.WithEnvFile(envFile),
	}
	if cfg.EnvPrefix != "" {
		opts = append(opts, defaults.WithEnvPrefix(cfg.EnvPrefix))
	}

	client := newHTTPClient(cfg)
	unitReg := newUnitRegistry(cfg, client)
	rep := newReporter(cfg)
	ld := loader.New(reg, defaults.New(opts...), loader.WithBaseDir(cfg.BaseDir), loader.WithLogger(log))

	r := runner.NewRunner(reg, ld, unitReg,
		runner.WithLogger(log),
		runner.WithRecorder(rep),
		runner.WithConfig(runnerConfig(cfg, dryRunFlag)),
		runner.WithHTTPClient(newWaitForClient(cfg)),
	)

	return &app{cfg: cfg, reg: reg, units: unitReg, reporter: rep, runner: r}, nil
}
