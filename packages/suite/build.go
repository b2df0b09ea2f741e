package suite

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/abdul-hamid-achik/httpspec/packages/assertions"
	"github.com/abdul-hamid-achik/httpspec/packages/spec"
)

// Build turns every case that is not skipped into a spec. Placeholders are
// resolved with r as it stands, so captures from earlier cases are not
// available; use a Runner for suites that chain values.
func (f *File) Build(target spec.Target, r *Resolver) []*spec.Spec {
	if r == nil {
		r = NewResolver()
	}
	r.SetVariables(f.Variables)

	specs := make([]*spec.Spec, 0, len(f.Specs))
	for _, c := range f.Specs {
		if c == nil || c.Skip != "" {
			continue
		}
		specs = append(specs, f.BuildCase(c, target, r))
	}
	return specs
}

// BuildCase turns one case into a spec. File headers are applied before the
// case's own so the case wins. Expectations point at the case in the file.
func (f *File) BuildCase(c *Case, target spec.Target, r *Resolver) *spec.Spec {
	s := spec.New(c.displayName(), target).
		On(c.method(), r.Resolve(c.Path))

	if f.Path != "" {
		s.BaseDir(filepath.Dir(f.Path))
	}
	for _, name := range sortedKeys(f.Headers) {
		s.Header(name, r.Resolve(f.Headers[name]))
	}
	for _, name := range sortedKeys(c.Headers) {
		s.Header(name, r.Resolve(c.Headers[name]))
	}
	for _, key := range sortedKeys(c.Query) {
		s.Query(key, r.Resolve(c.Query[key]))
	}
	if c.BearerToken != "" {
		s.BearerToken(r.Resolve(c.BearerToken))
	}
	if c.Timeout > 0 {
		s.Timeout(time.Duration(c.Timeout) * time.Millisecond)
	}

	switch {
	case c.Raw != "":
		s.Buffer([]byte(r.Resolve(c.Raw)))
	case c.Body != nil:
		s.Body(r.ResolveValue(c.Body))
	}

	loc := assertions.Location{File: f.source(), Line: c.Line}
	expect := func(exp *assertions.Expectation) {
		s.Expect(exp.At(loc))
	}

	e := c.Expect
	if e.Status != 0 {
		expect(assertions.Status(e.Status))
	}
	for _, name := range sortedKeys(e.Headers) {
		var values []string
		for _, v := range e.Headers[name] {
			values = append(values, r.Resolve(v))
		}
		expect(assertions.Header(name, values...))
	}
	if e.ContentType != "" {
		expect(assertions.ContentType(e.ContentType))
	}
	for _, path := range sortedKeys(e.JSON) {
		expect(assertions.JSONPath(path, r.ResolveValue(e.JSON[path])))
	}
	for _, path := range e.Exists {
		expect(assertions.JSONPath(path, nil))
	}
	if e.Schema != "" {
		expect(assertions.Schema(e.Schema))
	}
	if e.Contains != "" {
		expect(assertions.BodyContains(r.Resolve(e.Contains)))
	}

	return s
}

func (f *File) source() string {
	if f.Path == "" {
		return "suite"
	}
	return f.Path
}

func (c *Case) displayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.method() + " " + c.Path
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
