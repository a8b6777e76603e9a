package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// PrometheusExporter exports metrics in Prometheus text format
type PrometheusExporter struct {
	writer io.Writer
	now    func() time.Time
}

type PrometheusOption func(*PrometheusExporter)

func WithPrometheusWriter(w io.Writer) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.writer = w
	}
}

func NewPrometheusExporter(opts ...PrometheusOption) *PrometheusExporter {
	p := &PrometheusExporter{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PrometheusExporter) Export(metrics *AggregateMetrics) error {
	if p.writer == nil {
		return nil
	}
	var b strings.Builder
	p.writeMetrics(&b, metrics)
	_, err := io.WriteString(p.writer, b.String())
	return err
}

// ExportSingle is a no-op; the text format only carries aggregates
func (p *PrometheusExporter) ExportSingle(*TestMetrics) error {
	return nil
}

func (p *PrometheusExporter) Close() error {
	return nil
}

func (p *PrometheusExporter) writeMetrics(w io.Writer, agg *AggregateMetrics) {
	now := p.now().UnixMilli()

	counter := func(name, help string, value int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s %d %d\n\n", name, value, now)
	}
	counter("suiterun_tests_total", "Total number of tests attempted", agg.TotalTests)
	counter("suiterun_tests_passed_total", "Total number of passed tests", agg.SuccessCount)
	counter("suiterun_tests_failed_total", "Total number of failed tests", agg.FailureCount)

	fmt.Fprintf(w, "# HELP suiterun_run_duration_ms Wall-clock duration of the run in milliseconds\n")
	fmt.Fprintf(w, "# TYPE suiterun_run_duration_ms gauge\n")
	fmt.Fprintf(w, "suiterun_run_duration_ms %.2f %d\n\n", agg.RunDurationMs, now)

	fmt.Fprintf(w, "# HELP suiterun_test_duration_ms Test duration in milliseconds\n")
	fmt.Fprintf(w, "# TYPE suiterun_test_duration_ms gauge\n")
	fmt.Fprintf(w, "suiterun_test_duration_ms{quantile=\"min\"} %.2f %d\n", agg.MinDurationMs, now)
	fmt.Fprintf(w, "suiterun_test_duration_ms{quantile=\"max\"} %.2f %d\n", agg.MaxDurationMs, now)
	fmt.Fprintf(w, "suiterun_test_duration_ms{quantile=\"avg\"} %.2f %d\n", agg.AvgDurationMs, now)
	if agg.TotalTests > 0 {
		fmt.Fprintf(w, "suiterun_test_duration_ms{quantile=\"0.50\"} %.2f %d\n", agg.P50DurationMs, now)
		fmt.Fprintf(w, "suiterun_test_duration_ms{quantile=\"0.95\"} %.2f %d\n", agg.P95DurationMs, now)
		fmt.Fprintf(w, "suiterun_test_duration_ms{quantile=\"0.99\"} %.2f %d\n", agg.P99DurationMs, now)
	}
	fmt.Fprintln(w)

	if len(agg.ByUnit) > 0 {
		fmt.Fprintf(w, "# HELP suiterun_tests_by_unit_total Tests by unit kind\n")
		fmt.Fprintf(w, "# TYPE suiterun_tests_by_unit_total counter\n")
		for _, unit := range sortedKeys(agg.ByUnit) {
			fmt.Fprintf(w, "suiterun_tests_by_unit_total{unit=\"%s\"} %d %d\n", sanitizeLabel(unit), agg.ByUnit[unit], now)
		}
		fmt.Fprintln(w)
	}

	if len(agg.ByTest) > 0 {
		fmt.Fprintf(w, "# HELP suiterun_test_passed Whether the test passed (1) or failed (0)\n")
		fmt.Fprintf(w, "# TYPE suiterun_test_passed gauge\n")
		names := sortedKeys(agg.ByTest)
		for _, name := range names {
			passed := 0
			if agg.ByTest[name].FailureCount == 0 {
				passed = 1
			}
			fmt.Fprintf(w, "suiterun_test_passed{test=\"%s\"} %d %d\n", sanitizeLabel(name), passed, now)
		}
		fmt.Fprintln(w)

		fmt.Fprintf(w, "# HELP suiterun_test_run_duration_ms Duration per test in milliseconds\n")
		fmt.Fprintf(w, "# TYPE suiterun_test_run_duration_ms gauge\n")
		for _, name := range names {
			fmt.Fprintf(w, "suiterun_test_run_duration_ms{test=\"%s\"} %.2f %d\n", sanitizeLabel(name), agg.ByTest[name].DurationMs, now)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sanitizeLabel makes a string safe for use as a Prometheus label value
func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
