package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// slowestCount is how many tests the JSON report lists as slowest
const slowestCount = 3

// JSONExporter writes one JSON document per Export call
type JSONExporter struct {
	writer io.Writer
	pretty bool
	tests  []*TestMetrics
	now    func() time.Time
}

type JSONOption func(*JSONExporter)

func WithJSONWriter(w io.Writer) JSONOption {
	return func(j *JSONExporter) {
		j.writer = w
	}
}

// WithJSONPretty enables pretty-printed JSON output
func WithJSONPretty(pretty bool) JSONOption {
	return func(j *JSONExporter) {
		j.pretty = pretty
	}
}

func NewJSONExporter(opts ...JSONOption) *JSONExporter {
	j := &JSONExporter{
		pretty: true,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// JSONReport is the document written by JSONExporter
type JSONReport struct {
	GeneratedAt string            `json:"generated_at"`
	Summary     *AggregateMetrics `json:"summary"`
	FailedTests []string          `json:"failed_tests"`
	Slowest     []*TestMetrics    `json:"slowest"`
	Tests       []*TestMetrics    `json:"tests"`
}

func (j *JSONExporter) Export(metrics *AggregateMetrics) error {
	if j.writer == nil {
		return nil
	}

	report := JSONReport{
		GeneratedAt: j.now().Format(time.RFC3339),
		Summary:     metrics,
		FailedTests: []string{},
		Slowest:     slowest(j.tests, slowestCount),
		Tests:       j.tests,
	}
	for _, t := range j.tests {
		if !t.Passed {
			report.FailedTests = append(report.FailedTests, t.TestName)
		}
	}

	var data []byte
	var err error
	if j.pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if _, err := j.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func (j *JSONExporter) ExportSingle(metric *TestMetrics) error {
	j.tests = append(j.tests, metric)
	return nil
}

func (j *JSONExporter) Close() error {
	return nil
}

// slowest returns up to n tests ordered by descending duration
func slowest(tests []*TestMetrics, n int) []*TestMetrics {
	sorted := make([]*TestMetrics, len(tests))
	copy(sorted, tests)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].DurationMs > sorted[b].DurationMs
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
