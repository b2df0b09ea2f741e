package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/httpspec/packages/spec"
	"github.com/abdul-hamid-achik/httpspec/packages/suite"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Tests    []JSONTest  `json:"tests"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// JSONTest represents a single spec outcome
type JSONTest struct {
	Name       string          `json:"name"`
	File       string          `json:"file"`
	RequestID  string          `json:"requestId,omitempty"`
	Passed     bool            `json:"passed"`
	Skipped    bool            `json:"skipped,omitempty"`
	SkipReason string          `json:"skipReason,omitempty"`
	Duration   float64         `json:"duration"`
	Error      string          `json:"error,omitempty"`
	Request    *JSONRequest    `json:"request,omitempty"`
	Response   *JSONResponse   `json:"response,omitempty"`
	Assertions []JSONAssertion `json:"assertions,omitempty"`
}

type JSONRequest struct {
	Method  string              `json:"method"`
	Path    string              `json:"path"`
	Headers map[string][]string `json:"headers,omitempty"`
}

type JSONResponse struct {
	StatusCode int                 `json:"statusCode"`
	Status     string              `json:"status"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Duration   float64             `json:"duration"`
}

type JSONAssertion struct {
	Location string `json:"location"`
	Subject  string `json:"subject"`
	Operator string `json:"operator"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
}

// JSONFormatter accumulates results and writes them as one document on Flush.
type JSONFormatter struct {
	writer  io.Writer
	results []JSONTest
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		results: make([]JSONTest, 0),
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

func (f *JSONFormatter) FormatResult(result *suite.RunResult) {
	for _, r := range result.Results {
		f.results = append(f.results, jsonTest(result.File, r))
	}
	for _, s := range result.Skipped {
		test := JSONTest{Name: s.Name, File: result.File, Skipped: true}
		if s.Reason != "filtered out" {
			test.SkipReason = s.Reason
		}
		f.results = append(f.results, test)
	}
}

func jsonTest(file string, r *spec.Result) JSONTest {
	test := JSONTest{
		Name:      r.Name,
		File:      file,
		RequestID: r.RequestID,
		Passed:    r.Passed(),
		Duration:  float64(r.Duration.Milliseconds()),
	}

	if r.Error != nil {
		test.Error = r.Error.Error()
	}

	if r.Request != nil {
		test.Request = &JSONRequest{
			Method:  r.Request.Method,
			Path:    r.Request.Path,
			Headers: r.Request.Header,
		}
	}

	if r.Response != nil {
		test.Response = &JSONResponse{
			StatusCode: r.Response.StatusCode,
			Status:     r.Response.Status,
			Headers:    r.Response.Headers,
			Duration:   float64(r.Response.Duration.Milliseconds()),
		}
	}

	for _, a := range r.Assertions {
		test.Assertions = append(test.Assertions, JSONAssertion{
			Location: a.Location.String(),
			Subject:  a.Subject,
			Operator: a.Operator,
			Expected: a.Expected,
			Actual:   a.Actual,
			Passed:   a.Passed,
			Message:  a.Message,
		})
	}
	return test
}

// FormatError records err as a failed entry so the summary reflects it.
func (f *JSONFormatter) FormatError(err error) {
	f.results = append(f.results, JSONTest{Name: "error", Error: err.Error()})
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, t := range f.results {
		switch {
		case t.Skipped:
			skipped++
		case t.Passed:
			passed++
		default:
			failed++
		}
	}

	output := JSONOutput{
		Summary: JSONSummary{
			Total:   len(f.results),
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Tests:    f.results,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
