package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/httpspec/packages/assertions"
	"github.com/abdul-hamid-achik/httpspec/packages/suite"
)

// Formatter renders suite results.
type Formatter interface {
	FormatResult(result *suite.RunResult)
	FormatError(err error)
	Flush(totalDuration time.Duration) error
}

// Formats lists the names New accepts.
var Formats = []string{"console", "json", "junit", "tap"}

// New returns the formatter registered under format, writing to w (stdout
// when nil).
func New(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	if w == nil {
		w = os.Stdout
	}

	switch strings.ToLower(format) {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	case "tap":
		return NewTAPFormatter(TAPWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	case map[string][]string:
		return fmt.Sprintf("{headers with %d entries}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

// failureLine is the one-line form of a failed expectation.
func failureLine(a *assertions.Result) string {
	return fmt.Sprintf("%s: %s", a.Location, a.Message)
}
