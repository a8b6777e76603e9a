package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/suiterun/packages/core/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Order    []string    `json:"order"`
	Tests    []JSONTest  `json:"tests"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

type JSONSummary struct {
	Total   int  `json:"total"`
	Passed  int  `json:"passed"`
	Failed  int  `json:"failed"`
	Success bool `json:"success"`
}

type JSONTest struct {
	Name     string   `json:"name"`
	Unit     string   `json:"unit,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Passed   bool     `json:"passed"`
	Duration float64  `json:"duration"`
	Error    string   `json:"error,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// JSONFormatter formats test results as JSON
type JSONFormatter struct {
	writer   io.Writer
	output   JSONOutput
	duration time.Duration
	now      func() time.Time
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		output: JSONOutput{Tests: make([]JSONTest, 0), Order: make([]string, 0)},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	f.output.Order = append(f.output.Order, result.Order...)
	f.duration += result.Duration

	for _, r := range result.Results {
		f.output.Tests = append(f.output.Tests, JSONTest{
			Name:     r.Name,
			Unit:     r.Unit,
			Tags:     r.Tags,
			Passed:   r.Passed,
			Duration: float64(r.Duration.Milliseconds()),
			Error:    r.Error,
			Message:  r.Message,
		})
	}
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush() error {
	var passed, failed int
	for _, t := range f.output.Tests {
		if t.Passed {
			passed++
		} else {
			failed++
		}
	}

	f.output.Summary = JSONSummary{
		Total:   len(f.output.Tests),
		Passed:  passed,
		Failed:  failed,
		Success: failed == 0,
	}
	f.output.Duration = float64(f.duration.Milliseconds())
	f.output.Time = f.now().Format(time.RFC3339)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(f.output)
}
