package config

import "github.com/abdul-hamid-achik/suiterun/packages/report"

const (
	DefaultTimeout  = 30000 // milliseconds
	DefaultNotifyOn = "failure"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		ResultsDir:  report.DefaultResultsDir,
		ReportDir:   report.DefaultReportDir,
		ReportTitle: "suiterun report",
		Timeout:     DefaultTimeout,
		Notify:      Notify{On: DefaultNotifyOn},
		BaseDir:     ".",
	}
}

// IsDefault reports whether c declares nothing beyond the defaults
func (c *Config) IsDefault() bool {
	d := DefaultConfig()
	return c.ResultsDir == d.ResultsDir &&
		c.ReportDir == d.ReportDir &&
		c.Timeout == d.Timeout &&
		c.OpenReport == nil &&
		c.EnvFile == "" &&
		len(c.Tests) == 0 &&
		len(c.DataSources) == 0 &&
		len(c.Defaults) == 0
}
