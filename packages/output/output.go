package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abdul-hamid-achik/suiterun/packages/core/runner"
)

// ErrUnknownFormat is returned by New for an unsupported format name
var ErrUnknownFormat = errors.New("unknown output format")

const (
	FormatJSON  = "json"
	FormatJUnit = "junit"
	FormatTAP   = "tap"
)

// Formats lists the supported format names
var Formats = []string{FormatJSON, FormatJUnit, FormatTAP}

// Formatter accumulates run results and writes them on Flush
type Formatter interface {
	FormatResult(result *runner.RunResult)
	Flush() error
}

// New returns the formatter for format writing to w
func New(format string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case FormatJUnit:
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	case FormatTAP:
		return NewTAPFormatter(TAPWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("%w: %q (use %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
}
