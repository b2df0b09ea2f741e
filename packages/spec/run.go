package spec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/httpspec/packages/assertions"
	"github.com/abdul-hamid-achik/httpspec/packages/http"
	"github.com/google/uuid"
)

// RequestIDHeader carries a unique id per execution unless the spec sets one.
const RequestIDHeader = "X-Request-Id"

// Result is the outcome of one spec execution.
type Result struct {
	Name       string
	RequestID  string
	Mode       http.Mode
	Location   assertions.Location
	Request    *http.Request
	Response   *http.Response
	Assertions []*assertions.Result
	Duration   time.Duration
	Error      error
}

// Passed reports whether the spec ran and every expectation held.
func (r *Result) Passed() bool {
	return r.Error == nil && len(assertions.Failed(r.Assertions)) == 0
}

// Failed returns the expectations that did not hold.
func (r *Result) Failed() []*assertions.Result {
	return assertions.Failed(r.Assertions)
}

// Err returns the execution error, or a summary of failed expectations.
func (r *Result) Err() error {
	if r.Error != nil {
		return r.Error
	}
	return assertions.Err(r.Assertions)
}

// Test executes the spec and reports to t. The mode defaults to InMemory.
// Configuration, hook and transport failures call Fatalf; each failed
// expectation calls Errorf with the location it was registered at.
func (s *Spec) Test(t T, mode ...http.Mode) *Result {
	t.Helper()

	m := http.InMemory
	if len(mode) > 0 {
		m = mode[0]
	}

	result := s.run(context.Background(), m, assertions.Caller(1))
	if result.Error != nil {
		// a ConfigError already names the offending call
		var cfgErr *ConfigError
		if errors.As(result.Error, &cfgErr) {
			t.Fatalf("%s: %v", s.name, result.Error)
		} else {
			t.Fatalf("%s: %s: %v", result.Location, s.name, result.Error)
		}
		return result
	}

	for _, r := range result.Failed() {
		t.Errorf("%s: %s: %s", r.Location, s.name, r.Message)
	}
	return result
}

// Run executes the spec without a test recorder. The returned error is the
// configuration, hook or transport failure, if any; expectation outcomes are
// in the Result.
func (s *Spec) Run(ctx context.Context, mode http.Mode) (*Result, error) {
	result := s.run(ctx, mode, assertions.Caller(1))
	return result, result.Error
}

func (s *Spec) run(ctx context.Context, mode http.Mode, loc assertions.Location) *Result {
	start := time.Now()
	result := &Result{
		Name:     s.name,
		Mode:     mode,
		Location: loc,
	}
	defer func() {
		result.Duration = time.Since(start)
	}()

	if s.consumed {
		result.Error = ErrSpecConsumed
		return result
	}
	s.consumed = true

	if s.conflict != nil {
		result.Error = s.conflict
		return result
	}
	if s.target == nil {
		result.Error = ErrNoTarget
		return result
	}

	snapshot := s.request.Clone()
	hooks := append([]hook(nil), s.hooks...)
	expectations := s.Expectations()

	if snapshot.Header.Get(RequestIDHeader) == "" {
		snapshot.SetHeader(RequestIDHeader, uuid.NewString())
	}
	result.RequestID = snapshot.Header.Get(RequestIDHeader)
	result.Request = snapshot

	transport, err := s.target.Transport(mode)
	if err != nil {
		result.Error = fmt.Errorf("%w: %v", http.ErrTransport, err)
		return result
	}

	if snapshot.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, snapshot.Timeout)
		defer cancel()
	}

	req, err := snapshot.Build(ctx, transport.BaseURL())
	if err != nil {
		result.Error = &ConfigError{Location: loc, Err: err}
		return result
	}

	for _, h := range hooks {
		if err := h.fn(req); err != nil {
			result.Error = &HookError{Location: h.location, Err: err}
			return result
		}
	}

	resp, err := transport.Dispatch(req)
	if err != nil {
		result.Error = err
		return result
	}
	result.Response = resp

	result.Assertions = assertions.EvaluateAll(resp, expectations,
		assertions.WithCodec(s.codec),
		assertions.WithBaseDir(s.baseDir),
	)
	return result
}
