package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/suiterun/packages/core/runner"
)

// TAPFormatter formats test results in TAP (Test Anything Protocol) format
type TAPFormatter struct {
	writer  io.Writer
	results []tapResult
}

type tapResult struct {
	name   string
	unit   string
	passed bool
	error  string
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		f.results = append(f.results, tapResult{
			name:   r.Name,
			unit:   r.Unit,
			passed: r.Passed,
			error:  r.Error,
		})
	}
}

// Flush writes the accumulated TAP output
func (f *TAPFormatter) Flush() error {
	var b strings.Builder
	b.WriteString("TAP version 13\n")
	fmt.Fprintf(&b, "1..%d\n", len(f.results))

	for i, r := range f.results {
		if r.passed {
			fmt.Fprintf(&b, "ok %d - %s\n", i+1, r.name)
			continue
		}
		fmt.Fprintf(&b, "not ok %d - %s\n", i+1, r.name)
		b.WriteString("  ---\n")
		fmt.Fprintf(&b, "  message: %s\n", escapeYAML(r.error))
		if r.unit != "" {
			fmt.Fprintf(&b, "  unit: %s\n", r.unit)
		}
		b.WriteString("  severity: fail\n")
		b.WriteString("  ...\n")
	}

	_, err := io.WriteString(f.writer, b.String())
	return err
}

func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		return "\"" + s + "\""
	}
	return s
}
