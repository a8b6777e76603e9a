package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by LoadConfig when an explicit path does not exist
var ErrNotFound = errors.New("config file not found")

type Config struct {
	ResultsDir  string `yaml:"resultsDir,omitempty"`
	ReportDir   string `yaml:"reportDir,omitempty"`
	ReportTitle string `yaml:"reportTitle,omitempty"`
	OpenReport  *bool  `yaml:"openReport,omitempty"`

	EnvFile   string         `yaml:"envFile,omitempty"`
	EnvPrefix string         `yaml:"envPrefix,omitempty"`
	Defaults  map[string]any `yaml:"defaults,omitempty"`

	Timeout         int               `yaml:"timeout,omitempty"` // milliseconds
	Headers         map[string]string `yaml:"headers,omitempty"`
	FollowRedirects *bool             `yaml:"followRedirects,omitempty"`
	ValidateSSL     *bool             `yaml:"validateSSL,omitempty"`

	Hooks   Hooks     `yaml:"hooks,omitempty"`
	WaitFor []WaitFor `yaml:"waitFor,omitempty"`
	Notify  Notify    `yaml:"notify,omitempty"`

	DataSources map[string]registry.DataSource `yaml:"dataSources,omitempty"`
	Tests       []registry.Entry               `yaml:"tests,omitempty"`

	// BaseDir is the directory of the loaded file, or "." for defaults
	BaseDir string `yaml:"-"`
	// Path is the file the config was read from, empty for defaults
	Path string `yaml:"-"`
}

type Hooks struct {
	BeforeAll []string `yaml:"beforeAll,omitempty"`
	AfterAll  []string `yaml:"afterAll,omitempty"`
}

type WaitFor struct {
	URL      string `yaml:"url"`
	Status   int    `yaml:"status,omitempty"`
	Timeout  int    `yaml:"timeout,omitempty"`  // milliseconds
	Interval int    `yaml:"interval,omitempty"` // milliseconds
}

type Notify struct {
	On    string `yaml:"on,omitempty"` // always, failure, success, recovery
	Slack string `yaml:"slack,omitempty"`
	Teams string `yaml:"teams,omitempty"`
}

// ConfigFilenames contains the possible config file names, in lookup order
var ConfigFilenames = []string{
	"suiterun.yaml",
	".suiterun.yaml",
	"suiterun.yml",
	".suiterun.yml",
	"suiterun.json",
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// GetOpenReport returns the open report setting, defaulting to true
func (c *Config) GetOpenReport() bool {
	return getBool(c.OpenReport, true)
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// TimeoutDuration is the default HTTP timeout
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// Resolve makes p absolute against BaseDir. Empty and absolute paths are
// returned unchanged.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Registry builds the test registry from the tests and data sources
func (c *Config) Registry() (*registry.Registry, error) {
	return registry.New(c.Tests, c.DataSources)
}

// Durations converts a WaitFor entry's millisecond fields
func (w WaitFor) Durations() (timeout, interval time.Duration) {
	return time.Duration(w.Timeout) * time.Millisecond, time.Duration(w.Interval) * time.Millisecond
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			return nil, err
		}
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	cfg := DefaultConfig()
	cfg.BaseDir = dir
	return cfg, nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for name, ds := range cfg.DataSources {
		ds.Name = name
		cfg.DataSources[name] = ds
	}

	cfg.Path = path
	cfg.BaseDir = filepath.Dir(path)
	return cfg, nil
}

// Merge merges another config into this one, with other taking precedence.
// Tests and data sources are replaced wholesale when other declares any.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.ResultsDir != "" {
		result.ResultsDir = other.ResultsDir
	}
	if other.ReportDir != "" {
		result.ReportDir = other.ReportDir
	}
	if other.ReportTitle != "" {
		result.ReportTitle = other.ReportTitle
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}
	if other.EnvPrefix != "" {
		result.EnvPrefix = other.EnvPrefix
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}

	// Boolean flags - only override if explicitly set in other config
	if other.OpenReport != nil {
		result.OpenReport = other.OpenReport
	}
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}
	if len(other.Defaults) > 0 {
		defaults := make(map[string]any, len(result.Defaults)+len(other.Defaults))
		for k, v := range result.Defaults {
			defaults[k] = v
		}
		for k, v := range other.Defaults {
			defaults[k] = v
		}
		result.Defaults = defaults
	}

	if other.Notify.On != "" {
		result.Notify.On = other.Notify.On
	}
	if other.Notify.Slack != "" {
		result.Notify.Slack = other.Notify.Slack
	}
	if other.Notify.Teams != "" {
		result.Notify.Teams = other.Notify.Teams
	}

	if len(other.Hooks.BeforeAll) > 0 {
		result.Hooks.BeforeAll = other.Hooks.BeforeAll
	}
	if len(other.Hooks.AfterAll) > 0 {
		result.Hooks.AfterAll = other.Hooks.AfterAll
	}
	if len(other.WaitFor) > 0 {
		result.WaitFor = other.WaitFor
	}
	if len(other.DataSources) > 0 {
		result.DataSources = other.DataSources
	}
	if len(other.Tests) > 0 {
		result.Tests = other.Tests
	}

	return &result
}

// SaveConfig writes the configuration as YAML
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
