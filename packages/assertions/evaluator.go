package assertions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/httpspec/packages/content"
	"github.com/abdul-hamid-achik/httpspec/packages/http"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
	Subject  string
	Operator string
	Location Location
}

type Evaluator struct {
	response *http.Response
	bodyJSON gjson.Result
	codec    content.Codec // fallback when the response media type has no codec
	baseDir  string        // Base directory for resolving schema file paths
}

// EvaluatorOption is a functional option for configuring an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithCodec sets the codec used when the response Content-Type is unknown.
func WithCodec(c content.Codec) EvaluatorOption {
	return func(e *Evaluator) {
		e.codec = c
	}
}

// WithBaseDir sets the directory schema file paths are resolved against.
func WithBaseDir(dir string) EvaluatorOption {
	return func(e *Evaluator) {
		e.baseDir = dir
	}
}

func NewEvaluator(resp *http.Response, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		response: resp,
		codec:    content.JSON,
	}
	if gjson.ValidBytes(resp.Body) {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs a single expectation. A panic inside a user callback is
// reported as a failed result.
func (e *Evaluator) Evaluate(exp *Expectation) (result *Result) {
	result = &Result{
		Subject:  exp.Kind.String(),
		Operator: "equals",
		Location: exp.Location,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Passed = false
			result.Message = fmt.Sprintf("panic: %v", r)
		}
	}()

	switch exp.Kind {
	case KindStatus:
		e.status(exp, result)
	case KindHeader:
		e.header(exp, result)
	case KindContentType:
		e.contentType(exp, result)
	case KindContent:
		e.content(exp, result)
	case KindResponse:
		e.inspect(exp, result)
	case KindJSONPath:
		e.jsonPath(exp, result)
	case KindSchema:
		e.schema(exp, result)
	case KindBodyContains:
		e.bodyContains(exp, result)
	default:
		result.Message = fmt.Sprintf("unknown expectation kind: %v", exp.Kind)
	}
	return result
}

func (e *Evaluator) status(exp *Expectation, result *Result) {
	result.Expected = exp.Status
	result.Actual = e.response.StatusCode
	if e.response.StatusCode == exp.Status {
		result.Passed = true
		return
	}
	result.Message = fmt.Sprintf("expected status %d, got %d", exp.Status, e.response.StatusCode)
}

func (e *Evaluator) header(exp *Expectation, result *Result) {
	result.Subject = "header " + exp.HeaderName
	values := e.response.HeaderValues(exp.HeaderName)
	result.Actual = values

	if exp.HeaderValues == nil {
		result.Operator = "exists"
		if values != nil {
			result.Passed = true
			return
		}
		result.Message = fmt.Sprintf("expected header %s to be present", exp.HeaderName)
		return
	}

	result.Expected = exp.HeaderValues
	if values == nil {
		result.Message = fmt.Sprintf("expected header %s to be present with values %q", exp.HeaderName, exp.HeaderValues)
		return
	}
	if reflect.DeepEqual(values, exp.HeaderValues) {
		result.Passed = true
		return
	}
	result.Message = fmt.Sprintf("expected header %s values %q, got %q", exp.HeaderName, exp.HeaderValues, values)
}

func (e *Evaluator) contentType(exp *Expectation, result *Result) {
	result.Expected = exp.MediaType
	if !e.response.HasHeader("Content-Type") {
		result.Message = "missing Content-Type header"
		return
	}
	ct := e.response.ContentType()
	result.Actual = ct
	if ct == exp.MediaType {
		result.Passed = true
		return
	}
	result.Message = fmt.Sprintf("expected Content-Type %q, got %q", exp.MediaType, ct)
}

func (e *Evaluator) codecFor(exp *Expectation) content.Codec {
	if exp.Codec != nil {
		return exp.Codec
	}
	if c, err := content.ForMediaType(e.response.ContentType()); err == nil {
		return c
	}
	return e.codec
}

func (e *Evaluator) content(exp *Expectation, result *Result) {
	result.Operator = "decodes"
	if exp.Content == nil {
		result.Message = "no content check registered"
		return
	}
	result.Expected = exp.Content.Type().String()

	v, err := exp.Content.Decode(e.codecFor(exp), e.response.Body)
	if err != nil {
		result.Actual = truncate(e.response.BodyString(), 200)
		result.Message = fmt.Sprintf("cannot decode body as %v: %v", exp.Content.Type(), err)
		return
	}
	result.Actual = v

	if err := exp.Content.Check(v); err != nil {
		result.Message = err.Error()
		return
	}
	result.Passed = true
}

func (e *Evaluator) inspect(exp *Expectation, result *Result) {
	result.Operator = "satisfies"
	if exp.Inspect == nil {
		result.Passed = true
		return
	}
	if err := exp.Inspect(e.response); err != nil {
		result.Message = err.Error()
		return
	}
	result.Passed = true
}

// convertBracketNotation converts array bracket notation to gjson dot notation
// e.g., "[0].id" -> "0.id", "items[0].tags[1]" -> "items.0.tags.1"
func convertBracketNotation(path string) string {
	result := bracketIndex.ReplaceAllString(path, ".$1")
	result = strings.TrimPrefix(result, ".")
	return result
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

func (e *Evaluator) jsonPath(exp *Expectation, result *Result) {
	result.Subject = "jsonpath " + exp.Path
	result.Expected = exp.Value
	if !e.bodyJSON.Exists() {
		result.Message = "response body is not JSON"
		return
	}

	path := strings.TrimPrefix(strings.TrimPrefix(exp.Path, "$"), ".")
	path = strings.TrimPrefix(path, "body.")
	path = convertBracketNotation(path)

	found := e.bodyJSON.Get(path)
	if exp.Value == nil {
		result.Operator = "exists"
		if found.Exists() {
			result.Actual = found.Value()
			result.Passed = true
			return
		}
		result.Message = fmt.Sprintf("expected %s to exist", exp.Path)
		return
	}

	if !found.Exists() {
		result.Message = fmt.Sprintf("expected %s to exist", exp.Path)
		return
	}
	result.Actual = found.Value()
	result.Passed, result.Message = equals(found.Value(), exp.Value)
}

func (e *Evaluator) bodyContains(exp *Expectation, result *Result) {
	result.Operator = "contains"
	result.Expected = exp.Substring
	result.Actual = truncate(e.response.BodyString(), 200)
	if strings.Contains(e.response.BodyString(), exp.Substring) {
		result.Passed = true
		return
	}
	result.Message = fmt.Sprintf("expected body to contain %q", exp.Substring)
}

func (e *Evaluator) schema(exp *Expectation, result *Result) {
	result.Operator = "matches"
	result.Expected = "schema"

	loader, err := e.schemaLoader(exp.Schema)
	if err != nil {
		result.Message = err.Error()
		return
	}

	res, err := gojsonschema.Validate(loader, gojsonschema.NewBytesLoader(e.response.Body))
	if err != nil {
		result.Message = fmt.Sprintf("schema validation error: %v", err)
		return
	}

	if res.Valid() {
		result.Passed = true
		return
	}

	var errs []string
	for _, desc := range res.Errors() {
		errs = append(errs, desc.String())
	}
	result.Actual = errs
	result.Message = fmt.Sprintf("schema validation failed: %s", strings.Join(errs, "; "))
}

func (e *Evaluator) schemaLoader(schema string) (gojsonschema.JSONLoader, error) {
	trimmed := strings.TrimSpace(schema)
	if strings.HasPrefix(trimmed, "{") {
		return gojsonschema.NewStringLoader(trimmed), nil
	}

	schemaPath := trimmed
	if !filepath.IsAbs(schemaPath) && e.baseDir != "" {
		schemaPath = filepath.Join(e.baseDir, schemaPath)
	}

	if err := validatePathWithinBase(schemaPath, e.baseDir); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %v", err)
	}
	return gojsonschema.NewBytesLoader(data), nil
}

// validatePathWithinBase checks that the resolved path stays within the base directory
// to prevent path traversal attacks
func validatePathWithinBase(path, baseDir string) error {
	if baseDir == "" {
		return nil
	}

	cleanBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %v", err)
	}

	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %v", err)
	}

	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path traversal detected: %s is outside allowed directory %s", path, baseDir)
	}

	return nil
}

func equals(actual, expected any) (bool, string) {
	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)
	if aOk && eOk && actualNum == expectedNum {
		return true, ""
	}

	actualStr := fmt.Sprintf("%v", actual)
	expectedStr := fmt.Sprintf("%v", expected)
	if actualStr == expectedStr {
		return true, ""
	}

	return false, fmt.Sprintf("expected %v, got %v", expected, actual)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// EvaluateAll evaluates every expectation in order, regardless of earlier
// failures.
func EvaluateAll(resp *http.Response, exps []*Expectation, opts ...EvaluatorOption) []*Result {
	evaluator := NewEvaluator(resp, opts...)
	results := make([]*Result, len(exps))
	for i, exp := range exps {
		results[i] = evaluator.Evaluate(exp)
	}
	return results
}

// Failed returns the failed results, preserving order.
func Failed(results []*Result) []*Result {
	var failed []*Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// ErrFailed is returned by Err when at least one result failed.
var ErrFailed = errors.New("expectations failed")

// Err summarizes failed results as a single error, or nil.
func Err(results []*Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	msgs := make([]string, len(failed))
	for i, r := range failed {
		msgs[i] = r.Location.String() + ": " + r.Message
	}
	return fmt.Errorf("%w: %d of %d: %s", ErrFailed, len(failed), len(results), strings.Join(msgs, "; "))
}
