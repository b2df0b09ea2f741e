package suite

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/abdul-hamid-achik/httpspec/packages/http"
	"github.com/abdul-hamid-achik/httpspec/packages/spec"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// Runner executes the cases of a suite in file order. Values captured from
// one response are available to the cases after it.
type Runner struct {
	target   spec.Target
	mode     http.Mode
	resolver *Resolver
	vars     map[string]any
	limiter  *rate.Limiter
	bail     bool
	filter   string
	onResult func(*spec.Result)
}

// Option configures a Runner.
type Option func(*Runner)

// WithMode sets the transport mode. The default is LiveServer, since suites
// usually target a running service.
func WithMode(mode http.Mode) Option {
	return func(r *Runner) {
		r.mode = mode
	}
}

// WithRate caps dispatch at perSecond requests per second. Zero or less
// means unlimited.
func WithRate(perSecond float64) Option {
	return func(r *Runner) {
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLimiter shares an existing limiter, so several runners draw from the
// same budget.
func WithLimiter(l *rate.Limiter) Option {
	return func(r *Runner) {
		r.limiter = l
	}
}

// WithBail stops the run after the first failing case.
func WithBail(bail bool) Option {
	return func(r *Runner) {
		r.bail = bail
	}
}

// WithNameFilter runs only cases whose name matches pattern, as path.Match
// understands it.
func WithNameFilter(pattern string) Option {
	return func(r *Runner) {
		r.filter = pattern
	}
}

// WithVariables sets variables that take precedence over the suite's own.
func WithVariables(vars map[string]any) Option {
	return func(r *Runner) {
		r.vars = vars
	}
}

// WithWarnFunc reports unresolved placeholders.
func WithWarnFunc(fn WarnFunc) Option {
	return func(r *Runner) {
		r.resolver.SetWarnFunc(fn)
	}
}

// OnResult is called after each case finishes.
func OnResult(fn func(*spec.Result)) Option {
	return func(r *Runner) {
		r.onResult = fn
	}
}

func NewRunner(target spec.Target, opts ...Option) *Runner {
	r := &Runner{
		target:   target,
		mode:     http.LiveServer,
		resolver: NewResolver(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunResult summarizes one suite run.
type RunResult struct {
	File     string
	Results  []*spec.Result
	Skipped  []*Skip
	Duration time.Duration
	Passed   int
	Failed   int
}

// Skip records a case that was not executed.
type Skip struct {
	Name   string
	Reason string
}

// Err returns an error if any case failed.
func (r *RunResult) Err() error {
	if r.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d specs failed", r.Failed, r.Passed+r.Failed)
}

// RunFile parses, validates and runs the suite at p.
func (r *Runner) RunFile(ctx context.Context, p string) (*RunResult, error) {
	f, err := ParseFile(p)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return r.Run(ctx, f)
}

// Run executes f. Cancelling ctx stops the run before the next case.
func (r *Runner) Run(ctx context.Context, f *File) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{File: f.Path}
	defer func() {
		result.Duration = time.Since(start)
	}()

	r.resolver.SetVariables(f.Variables)
	r.resolver.SetVariables(r.vars)

	for i, c := range f.Specs {
		if c == nil {
			continue
		}
		name := c.displayName()

		if !r.matches(c.Name) {
			result.Skipped = append(result.Skipped, &Skip{Name: name, Reason: "filtered out"})
			continue
		}
		if c.Skip != "" {
			result.Skipped = append(result.Skipped, &Skip{Name: name, Reason: c.Skip})
			continue
		}

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return result, err
			}
		} else if err := ctx.Err(); err != nil {
			return result, err
		}

		res := r.runCase(ctx, f, c)
		result.Results = append(result.Results, res)
		if r.onResult != nil {
			r.onResult(res)
		}

		if res.Passed() {
			result.Passed++
			continue
		}
		result.Failed++
		if r.bail {
			for _, rest := range f.Specs[i+1:] {
				if rest != nil {
					result.Skipped = append(result.Skipped, &Skip{Name: rest.displayName(), Reason: "bail"})
				}
			}
			break
		}
	}

	return result, nil
}

func (r *Runner) runCase(ctx context.Context, f *File, c *Case) *spec.Result {
	s := f.BuildCase(c, r.target, r.resolver)

	res, err := s.Run(ctx, r.mode)
	if err != nil || res.Response == nil {
		return res
	}

	for name, expr := range c.Capture {
		value := gjson.GetBytes(res.Response.Body, expr)
		if !value.Exists() {
			r.resolver.warnf("capture %s: %s not found in response of %s", name, expr, s.Name())
			continue
		}
		r.resolver.SetCapture(c.Name, name, value.Value())
	}
	return res
}

func (r *Runner) matches(name string) bool {
	if r.filter == "" {
		return true
	}
	ok, err := path.Match(r.filter, name)
	return err == nil && ok
}
