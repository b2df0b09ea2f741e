package spec_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder stands in for *testing.T and captures what a spec reports.
type recorder struct {
	isHelper bool
	errors   []string
	fatal    string
}

func (r *recorder) Helper() {
	r.isHelper = true
}

func (r *recorder) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recorder) Fatalf(format string, args ...any) {
	r.fatal = fmt.Sprintf(format, args...)
	panic(errFatal) // stop the spec the way t.Fatalf would
}

var errFatal = errors.New("fatal")

// record runs f against a fresh recorder and returns it once f returns or
// calls Fatalf.
func record(t *testing.T, f func(r *recorder)) *recorder {
	t.Helper()

	r := &recorder{}
	func() {
		defer func() {
			if v := recover(); v != nil {
				if err, ok := v.(error); ok && errors.Is(err, errFatal) {
					return
				}
				t.Fatalf("panic: %v", v)
			}
		}()
		f(r)
	}()

	assert.True(t, r.isHelper, "Test must mark itself as a helper")
	return r
}

func requireClean(t *testing.T, r *recorder) {
	t.Helper()
	require.Empty(t, r.fatal)
	require.Empty(t, r.errors)
}
