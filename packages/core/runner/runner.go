package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"github.com/abdul-hamid-achik/suiterun/packages/core/resolver"
	"github.com/abdul-hamid-achik/suiterun/packages/http"
	"github.com/abdul-hamid-achik/suiterun/packages/logger"
	"github.com/abdul-hamid-achik/suiterun/packages/report"
	"github.com/abdul-hamid-achik/suiterun/packages/units"
)

// Loader builds the data for one test attempt
type Loader interface {
	Load(ctx context.Context, names []string) (registry.TestData, error)
}

// Recorder receives every test outcome. report.FileReporter implements it.
type Recorder interface {
	CleanResultsDirectory() error
	Record(rec report.TestRecord) error
}

type Config struct {
	// DryRun resolves and logs the order without executing anything
	DryRun  bool
	BaseDir string
	Hooks   Hooks
	WaitFor []WaitFor
}

type Runner struct {
	reg      *registry.Registry
	resolver *resolver.Resolver
	loader   Loader
	units    *units.Registry
	recorder Recorder
	client   *http.Client
	log      logger.Logger
	config   *Config
	now      func() time.Time
}

type Option func(*Runner)

func WithConfig(cfg *Config) Option {
	return func(r *Runner) {
		if cfg != nil {
			r.config = cfg
		}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// WithRecorder stores each outcome through rec
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithHTTPClient sets the client used to poll WaitFor targets
func WithHTTPClient(c *http.Client) Option {
	return func(r *Runner) {
		r.client = c
	}
}

func NewRunner(reg *registry.Registry, loader Loader, unitReg *units.Registry, opts ...Option) *Runner {
	r := &Runner{
		reg:    reg,
		loader: loader,
		units:  unitReg,
		log:    logger.Nop{},
		config: &Config{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = http.NewClient(http.WithTimeout(5 * time.Second))
	}
	r.resolver = resolver.New(reg, r.log)
	return r
}

// RunResult is the summary of one run
type RunResult struct {
	Order    []string
	Results  []*TestResult
	Total    int
	Passed   int
	Failed   int
	Duration time.Duration
	Success  bool
	DryRun   bool
}

// Seconds is the run duration in fractional seconds
func (r *RunResult) Seconds() float64 {
	return r.Duration.Seconds()
}

// FailedTests returns the results of every failed test
func (r *RunResult) FailedTests() []*TestResult {
	var out []*TestResult
	for _, t := range r.Results {
		if !t.Passed {
			out = append(out, t)
		}
	}
	return out
}

// TestResult is the outcome of one test attempt
type TestResult struct {
	Name     string
	Unit     string
	Tags     []string
	Passed   bool
	Start    time.Time
	Duration time.Duration
	Error    string
	Message  string
	// DataKeys lists the keys of the data the test was given
	DataKeys []string
}

// RunAll runs every registered test
func (r *Runner) RunAll(ctx context.Context) (*RunResult, error) {
	return r.Run(ctx, r.reg.Names())
}

// RunTag runs the tests carrying tag. With no matching test it logs a
// warning and returns a nil result.
func (r *Runner) RunTag(ctx context.Context, tag string) (*RunResult, error) {
	names := r.reg.Tagged(tag)
	if len(names) == 0 {
		r.log.Log(fmt.Sprintf("No tests found with tag: %s", tag), logger.LevelWarn)
		return nil, nil
	}
	r.log.Log(fmt.Sprintf("Running %d tests with tag: %s", len(names), tag), logger.LevelInfo)
	return r.Run(ctx, names)
}

// Resolve returns the execution order for names
func (r *Runner) Resolve(names []string) ([]string, error) {
	return r.resolver.Resolve(names)
}

// Run executes names and their prerequisites. Only a resolution failure or
// failing run-level setup is returned as an error; test failures are
// counted in the result.
func (r *Runner) Run(ctx context.Context, names []string) (*RunResult, error) {
	order, err := r.resolver.Resolve(names)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Order: order, Total: len(order)}

	if r.config.DryRun {
		r.log.Log(fmt.Sprintf("Execution order: %s", strings.Join(order, " -> ")), logger.LevelInfo)
		result.DryRun = true
		result.Success = true
		return result, nil
	}

	if r.recorder != nil {
		if err := r.recorder.CleanResultsDirectory(); err != nil {
			r.log.Log(fmt.Sprintf("Could not clean results directory: %v", err), logger.LevelWarn)
		}
	}

	if err := r.setup(ctx); err != nil {
		return nil, err
	}

	r.log.Log(fmt.Sprintf("Starting test execution for %d tests", len(order)), logger.LevelInfo)

	start := r.now()
	for _, name := range order {
		tr := r.runTest(ctx, name)
		result.Results = append(result.Results, tr)
		if tr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		r.record(tr)
	}
	result.Duration = r.now().Sub(start)
	result.Success = result.Failed == 0

	r.teardown(ctx)
	r.logSummary(result)

	return result, nil
}

func (r *Runner) runTest(ctx context.Context, name string) *TestResult {
	tr := &TestResult{Name: name, Start: r.now()}
	defer func() {
		tr.Duration = r.now().Sub(tr.Start)
	}()

	fail := func(msg string) *TestResult {
		tr.Error = msg
		r.log.Log(msg, logger.LevelError)
		return tr
	}

	entry, ok := r.reg.Test(name)
	if !ok {
		return fail(fmt.Sprintf("Test not found in registry: %s", name))
	}
	tr.Unit = entry.Unit
	tr.Tags = entry.Tags

	r.log.Log(fmt.Sprintf("Running test: %s", name), logger.LevelInfo)

	data, err := r.loader.Load(ctx, entry.DataSources)
	if err != nil {
		return fail(fmt.Sprintf("Error running test %s: %v", name, err))
	}
	tr.DataKeys = data.Keys()
	r.log.Log(fmt.Sprintf("Loaded test data with keys: %s", strings.Join(tr.DataKeys, ", ")), logger.LevelInfo)
	if creds, ok := data[registry.CredentialsKey].(map[string]any); ok {
		if email, ok := creds["email"].(string); ok && email != "" {
			r.log.Log(fmt.Sprintf("Test data includes credentials for: %s", email), logger.LevelInfo)
		}
	}

	unit, err := r.units.New(entry.Unit, entry.Params)
	if err != nil {
		return fail(fmt.Sprintf("Error running test %s: %v", name, err))
	}

	res, err := execute(ctx, unit, data)
	if err != nil {
		return fail(fmt.Sprintf("Error running test %s: %v", name, err))
	}
	if !res.Success {
		reason := res.Error
		if reason == "" {
			reason = "Unknown error"
		}
		return fail(fmt.Sprintf("Test %s failed: %s", name, reason))
	}

	tr.Passed = true
	tr.Message = res.Message
	r.log.Log(fmt.Sprintf("Test %s completed successfully", name), logger.LevelSuccess)
	return tr
}

// execute runs the unit, turning a panic into an error
func execute(ctx context.Context, unit units.Unit, data registry.TestData) (res units.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return unit.Run(ctx, data)
}

func (r *Runner) record(tr *TestResult) {
	if r.recorder == nil {
		return
	}
	status := report.StatusFailed
	if tr.Passed {
		status = report.StatusPassed
	}
	err := r.recorder.Record(report.TestRecord{
		Name:     tr.Name,
		Unit:     tr.Unit,
		Tags:     tr.Tags,
		Status:   status,
		Start:    tr.Start,
		Stop:     tr.Start.Add(tr.Duration),
		Error:    tr.Error,
		Message:  tr.Message,
		DataKeys: tr.DataKeys,
	})
	if err != nil {
		r.log.Log(fmt.Sprintf("Could not record result of %s: %v", tr.Name, err), logger.LevelWarn)
	}
}

func (r *Runner) logSummary(result *RunResult) {
	r.log.Log("Test execution summary:", logger.LevelInfo)
	r.log.Log(fmt.Sprintf("Total tests: %d", result.Total), logger.LevelInfo)
	r.log.Log(fmt.Sprintf("Successful: %d", result.Passed), logger.LevelSuccess)
	if result.Failed > 0 {
		r.log.Log(fmt.Sprintf("Failed: %d", result.Failed), logger.LevelError)
	} else {
		r.log.Log("Failed: 0", logger.LevelInfo)
	}
	r.log.Log(fmt.Sprintf("Execution time: %.2f seconds", result.Seconds()), logger.LevelInfo)
}
