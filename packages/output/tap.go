package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/httpspec/packages/suite"
)

// TAPFormatter formats results in TAP version 13.
type TAPFormatter struct {
	writer  io.Writer
	results []tapResult
}

type tapResult struct {
	name       string
	passed     bool
	skipReason string
	error      string
	failures   []string
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer: os.Stdout,
	}
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

func (f *TAPFormatter) FormatResult(result *suite.RunResult) {
	for _, r := range result.Results {
		tr := tapResult{
			name:   r.Name,
			passed: r.Passed(),
		}
		if r.Error != nil {
			tr.error = r.Error.Error()
		}
		for _, a := range r.Failed() {
			tr.failures = append(tr.failures, failureLine(a))
		}
		f.results = append(f.results, tr)
	}
	for _, s := range result.Skipped {
		reason := s.Reason
		if reason == "" || reason == "filtered out" {
			reason = "SKIP"
		}
		f.results = append(f.results, tapResult{name: s.Name, skipReason: reason})
	}
}

// FormatError adds err as a failing entry.
func (f *TAPFormatter) FormatError(err error) {
	f.results = append(f.results, tapResult{name: "error", error: err.Error()})
}

func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	fmt.Fprintf(f.writer, "TAP version 13\n")
	fmt.Fprintf(f.writer, "1..%d\n", len(f.results))

	for i, r := range f.results {
		n := i + 1
		switch {
		case r.skipReason != "":
			fmt.Fprintf(f.writer, "ok %d - %s # SKIP %s\n", n, r.name, r.skipReason)
		case r.error != "":
			fmt.Fprintf(f.writer, "not ok %d - %s\n", n, r.name)
			fmt.Fprintf(f.writer, "  ---\n")
			fmt.Fprintf(f.writer, "  message: %s\n", escapeYAML(r.error))
			fmt.Fprintf(f.writer, "  severity: error\n")
			fmt.Fprintf(f.writer, "  ...\n")
		case r.passed:
			fmt.Fprintf(f.writer, "ok %d - %s\n", n, r.name)
		default:
			fmt.Fprintf(f.writer, "not ok %d - %s\n", n, r.name)
			fmt.Fprintf(f.writer, "  ---\n")
			fmt.Fprintf(f.writer, "  failures:\n")
			for _, msg := range r.failures {
				fmt.Fprintf(f.writer, "    - %s\n", escapeYAML(msg))
			}
			fmt.Fprintf(f.writer, "  ...\n")
		}
	}

	_, err := fmt.Fprintf(f.writer, "# time %dms\n", totalDuration.Milliseconds())
	return err
}

// escapeYAML quotes s when it contains YAML indicator characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		return "\"" + s + "\""
	}
	return s
}
