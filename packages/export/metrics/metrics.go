// Package metrics aggregates run timings and exports them as JSON or in the
// Prometheus text format.
package metrics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/abdul-hamid-achik/suiterun/packages/core/runner"
)

// ErrUnknownFormat is returned by NewExporter for an unsupported format
var ErrUnknownFormat = errors.New("unknown metrics format")

// Histogram bounds in microseconds: 1us to 10min
const (
	minLatencyUs = 1
	maxLatencyUs = 600_000_000
)

// TestMetrics is the measurement of one test attempt
type TestMetrics struct {
	TestName   string    `json:"test_name"`
	Unit       string    `json:"unit"`
	DurationMs float64   `json:"duration_ms"`
	Passed     bool      `json:"passed"`
	Timestamp  time.Time `json:"timestamp"`
}

// AggregateMetrics summarizes every recorded test
type AggregateMetrics struct {
	TotalTests      int64                     `json:"total_tests"`
	SuccessCount    int64                     `json:"success_count"`
	FailureCount    int64                     `json:"failure_count"`
	RunDurationMs   float64                   `json:"run_duration_ms"`
	TotalDurationMs float64                   `json:"total_duration_ms"`
	MinDurationMs   float64                   `json:"min_duration_ms"`
	MaxDurationMs   float64                   `json:"max_duration_ms"`
	AvgDurationMs   float64                   `json:"avg_duration_ms"`
	P50DurationMs   float64                   `json:"p50_duration_ms"`
	P95DurationMs   float64                   `json:"p95_duration_ms"`
	P99DurationMs   float64                   `json:"p99_duration_ms"`
	ByUnit          map[string]int64          `json:"by_unit"`
	ByTest          map[string]*TestAggregate `json:"by_test"`
}

type TestAggregate struct {
	Name         string  `json:"name"`
	SuccessCount int64   `json:"success_count"`
	FailureCount int64   `json:"failure_count"`
	DurationMs   float64 `json:"duration_ms"`
}

// Exporter is the interface for metrics exporters
type Exporter interface {
	// Export writes the aggregate to the exporter's destination
	Export(metrics *AggregateMetrics) error

	// ExportSingle receives each test metric as it is recorded
	ExportSingle(metric *TestMetrics) error

	Close() error
}

// NewExporter returns the exporter for format writing to w
func NewExporter(format string, w io.Writer) (Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONExporter(WithJSONWriter(w)), nil
	case "prometheus":
		return NewPrometheusExporter(WithPrometheusWriter(w)), nil
	default:
		return nil, fmt.Errorf("%w: %q (use json, prometheus)", ErrUnknownFormat, format)
	}
}

// Collector collects metrics from test runs
type Collector struct {
	histogram *hdrhistogram.Histogram
	aggregate *AggregateMetrics
	exporters []Exporter
}

func NewCollector(exporters ...Exporter) *Collector {
	return &Collector{
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		exporters: exporters,
		aggregate: &AggregateMetrics{
			ByUnit: make(map[string]int64),
			ByTest: make(map[string]*TestAggregate),
		},
	}
}

// RecordRun records every test of result plus the run's wall-clock time
func (c *Collector) RecordRun(result *runner.RunResult) {
	if result == nil {
		return
	}
	c.aggregate.RunDurationMs += float64(result.Duration.Microseconds()) / 1000
	for _, r := range result.Results {
		c.Record(&TestMetrics{
			TestName:   r.Name,
			Unit:       r.Unit,
			DurationMs: float64(r.Duration.Microseconds()) / 1000,
			Passed:     r.Passed,
			Timestamp:  r.Start,
		})
	}
}

// Record records a test metric
func (c *Collector) Record(m *TestMetrics) {
	c.updateAggregate(m)
	for _, exp := range c.exporters {
		_ = exp.ExportSingle(m)
	}
}

func (c *Collector) updateAggregate(m *TestMetrics) {
	agg := c.aggregate
	agg.TotalTests++
	agg.TotalDurationMs += m.DurationMs

	if m.Passed {
		agg.SuccessCount++
	} else {
		agg.FailureCount++
	}

	if agg.TotalTests == 1 || m.DurationMs < agg.MinDurationMs {
		agg.MinDurationMs = m.DurationMs
	}
	if m.DurationMs > agg.MaxDurationMs {
		agg.MaxDurationMs = m.DurationMs
	}
	agg.AvgDurationMs = agg.TotalDurationMs / float64(agg.TotalTests)

	latencyUs := int64(m.DurationMs * 1000)
	latencyUs = max(minLatencyUs, min(latencyUs, maxLatencyUs))
	_ = c.histogram.RecordValue(latencyUs)
	agg.P50DurationMs = float64(c.histogram.ValueAtQuantile(50)) / 1000
	agg.P95DurationMs = float64(c.histogram.ValueAtQuantile(95)) / 1000
	agg.P99DurationMs = float64(c.histogram.ValueAtQuantile(99)) / 1000

	unit := m.Unit
	if unit == "" {
		unit = "unknown"
	}
	agg.ByUnit[unit]++

	ta, ok := agg.ByTest[m.TestName]
	if !ok {
		ta = &TestAggregate{Name: m.TestName}
		agg.ByTest[m.TestName] = ta
	}
	if m.Passed {
		ta.SuccessCount++
	} else {
		ta.FailureCount++
	}
	ta.DurationMs += m.DurationMs
}

// GetAggregate returns the aggregated metrics
func (c *Collector) GetAggregate() *AggregateMetrics {
	return c.aggregate
}

// Flush exports all aggregated metrics
func (c *Collector) Flush() error {
	for _, exp := range c.exporters {
		if err := exp.Export(c.aggregate); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all exporters
func (c *Collector) Close() error {
	var errs []error
	for _, exp := range c.exporters {
		if err := exp.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
