package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// ResultSuffix names result files inside the results directory
	ResultSuffix = "-result.json"
	// IndexFile is the generated report entry point
	IndexFile = "index.html"

	DefaultResultsDir = "suiterun-results"
	DefaultReportDir  = "suiterun-report"
)

// ErrNoReport is returned when opening a report that was never generated
var ErrNoReport = errors.New("report not generated")

// Reporter is the reporting tool a run finalizes through
type Reporter interface {
	CleanResultsDirectory() error
	GenerateReport(ctx context.Context) error
	OpenReport(ctx context.Context) error
}

// Status of a recorded test
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// TestRecord is the content of one result file
type TestRecord struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Unit     string    `json:"unit,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	Status   Status    `json:"status"`
	Start    time.Time `json:"start"`
	Stop     time.Time `json:"stop"`
	Error    string    `json:"error,omitempty"`
	Message  string    `json:"message,omitempty"`
	DataKeys []string  `json:"dataKeys,omitempty"`
}

// Duration is the wall-clock time the test took
func (r TestRecord) Duration() time.Duration {
	return r.Stop.Sub(r.Start)
}

// Opener launches a viewer for a generated file
type Opener func(ctx context.Context, path string) error

// FileReporter keeps results and the report on the local filesystem
type FileReporter struct {
	resultsDir string
	reportDir  string
	title      string
	opener     Opener
	now        func() time.Time
}

type Option func(*FileReporter)

// WithOpener replaces the platform opener
func WithOpener(o Opener) Option {
	return func(r *FileReporter) {
		r.opener = o
	}
}

// WithTitle sets the report heading
func WithTitle(title string) Option {
	return func(r *FileReporter) {
		r.title = title
	}
}

func NewFileReporter(resultsDir, reportDir string, opts ...Option) *FileReporter {
	if resultsDir == "" {
		resultsDir = DefaultResultsDir
	}
	if reportDir == "" {
		reportDir = DefaultReportDir
	}
	r := &FileReporter{
		resultsDir: resultsDir,
		reportDir:  reportDir,
		title:      "suiterun report",
		opener:     OpenWithSystem,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *FileReporter) ResultsDir() string {
	return r.resultsDir
}

// IndexPath is where GenerateReport writes the report
func (r *FileReporter) IndexPath() string {
	return filepath.Join(r.reportDir, IndexFile)
}

// CleanResultsDirectory removes every previous result and recreates the
// empty directory
func (r *FileReporter) CleanResultsDirectory() error {
	if err := os.RemoveAll(r.resultsDir); err != nil {
		return fmt.Errorf("failed to clean results directory: %w", err)
	}
	if err := os.MkdirAll(r.resultsDir, 0755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}
	return nil
}

// Record writes one result file. A missing ID is generated.
func (r *FileReporter) Record(rec TestRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if err := os.MkdirAll(r.resultsDir, 0755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	path := filepath.Join(r.resultsDir, rec.ID+ResultSuffix)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// Results reads every result file, ordered by start time
func (r *FileReporter) Results() ([]TestRecord, error) {
	entries, err := os.ReadDir(r.resultsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	var records []TestRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ResultSuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.resultsDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		var rec TestRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("invalid result file %s: %w", e.Name(), err)
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Start.Before(records[j].Start)
	})
	return records, nil
}

// GenerateReport renders index.html from the recorded results
func (r *FileReporter) GenerateReport(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records, err := r.Results()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(r.reportDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(r.IndexPath())
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	if err := renderHTML(f, newPage(r.title, records, r.now())); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return f.Close()
}

// OpenReport opens the generated report
func (r *FileReporter) OpenReport(ctx context.Context) error {
	path := r.IndexPath()
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrNoReport, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return r.opener(ctx, abs)
}
