package spec

import (
	"github.com/abdul-hamid-achik/httpspec/packages/assertions"
	"github.com/abdul-hamid-achik/httpspec/packages/http"
	"github.com/google/go-cmp/cmp"
)

// Content builds a content check that decodes the body into T and passes it
// to fn.
func Content[T any](fn func(T)) assertions.ContentCheck {
	return assertions.Decoded(fn)
}

// Equal builds a content check that decodes the body into T and compares it
// with want.
func Equal[T any](want T, opts ...cmp.Option) assertions.ContentCheck {
	return assertions.Equal(want, opts...)
}

func (s *Spec) expect(exp *assertions.Expectation, loc assertions.Location) *Spec {
	s.expectations = append(s.expectations, exp.At(loc))
	return s
}

// Expect registers a prepared expectation. A location already set on exp is
// kept, so specs built from data files can point at the file.
func (s *Spec) Expect(exp *assertions.Expectation) *Spec {
	if !exp.Location.IsZero() {
		return s.expect(exp, exp.Location)
	}
	return s.expect(exp, assertions.Caller(1))
}

// ExpectStatus expects an exact status code.
func (s *Spec) ExpectStatus(code int) *Spec {
	return s.expect(assertions.Status(code), assertions.Caller(1))
}

// ExpectHeader expects the header to be present. With values, the header's
// full value list must equal them in length and order.
func (s *Spec) ExpectHeader(name string, values ...string) *Spec {
	return s.expect(assertions.Header(name, values...), assertions.Caller(1))
}

// ExpectContentType expects the Content-Type header to equal mediaType
// exactly, parameters included.
func (s *Spec) ExpectContentType(mediaType string) *Spec {
	return s.expect(assertions.ContentType(mediaType), assertions.Caller(1))
}

// ExpectContent expects the body to decode and pass check. A decode failure
// is an expectation failure.
func (s *Spec) ExpectContent(check assertions.ContentCheck) *Spec {
	return s.expect(assertions.Content(check), assertions.Caller(1))
}

// ExpectResponse passes the raw response to fn. A returned error is an
// expectation failure.
func (s *Spec) ExpectResponse(fn func(*http.Response) error) *Spec {
	return s.expect(assertions.Response(fn), assertions.Caller(1))
}

// ExpectJSONPath expects the JSON value at path to equal value.
func (s *Spec) ExpectJSONPath(path string, value any) *Spec {
	return s.expect(assertions.JSONPath(path, value), assertions.Caller(1))
}

// ExpectJSONPathExists expects path to resolve in the JSON body.
func (s *Spec) ExpectJSONPathExists(path string) *Spec {
	return s.expect(assertions.JSONPath(path, nil), assertions.Caller(1))
}

// ExpectSchema validates the body against an inline JSON schema or a schema
// file path.
func (s *Spec) ExpectSchema(schema string) *Spec {
	return s.expect(assertions.Schema(schema), assertions.Caller(1))
}

func (s *Spec) ExpectBodyContains(substr string) *Spec {
	return s.expect(assertions.BodyContains(substr), assertions.Caller(1))
}
