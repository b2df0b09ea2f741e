package spec

import (
	nethttp "net/http"

	"github.com/abdul-hamid-achik/httpspec/packages/assertions"
	"github.com/abdul-hamid-achik/httpspec/packages/content"
	"github.com/abdul-hamid-achik/httpspec/packages/http"
)

// JSONContentType is the response Content-Type the JSON helpers expect.
const JSONContentType = "application/json; charset=utf-8"

type jsonOptions struct {
	status      int
	contentType string
}

// JSONOption adjusts the expectations registered by the JSON helpers.
type JSONOption func(*jsonOptions)

// WithStatus changes the expected status (default 200).
func WithStatus(code int) JSONOption {
	return func(o *jsonOptions) {
		o.status = code
	}
}

// WithContentType changes the expected response Content-Type.
func WithContentType(ct string) JSONOption {
	return func(o *jsonOptions) {
		o.contentType = ct
	}
}

func newJSONOptions(opts []JSONOption) *jsonOptions {
	o := &jsonOptions{
		status:      nethttp.StatusOK,
		contentType: JSONContentType,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (s *Spec) jsonRequest(data any, loc assertions.Location) *Spec {
	s.Header("Accept", content.MediaTypeJSON)
	s.Header("Content-Type", content.MediaTypeJSON)
	s.setBodySource(bodyEncoded, loc)
	return s.before(func(req *nethttp.Request) error {
		return encodeBody(req, content.JSON, data)
	}, loc)
}

// JSON sends data as JSON and expects a JSON response with the given status
// whose decoded body passes check.
func (s *Spec) JSON(data any, check assertions.ContentCheck, opts ...JSONOption) *Spec {
	loc := assertions.Caller(1)
	o := newJSONOptions(opts)

	exp := assertions.Content(check)
	exp.Codec = content.JSON
	return s.jsonRequest(data, loc).
		expect(assertions.Status(o.status), loc).
		expect(assertions.ContentType(o.contentType), loc).
		expect(exp, loc)
}

// JSONRaw sends data as JSON, expects the given status and passes the raw
// response to fn.
func (s *Spec) JSONRaw(data any, fn func(*http.Response) error, opts ...JSONOption) *Spec {
	loc := assertions.Caller(1)
	o := newJSONOptions(opts)

	return s.jsonRequest(data, loc).
		expect(assertions.Status(o.status), loc).
		expect(assertions.Response(fn), loc)
}

// JSONResponse accepts JSON and expects a JSON response with the given
// status whose decoded body passes check.
func (s *Spec) JSONResponse(check assertions.ContentCheck, opts ...JSONOption) *Spec {
	loc := assertions.Caller(1)
	o := newJSONOptions(opts)

	exp := assertions.Content(check)
	exp.Codec = content.JSON
	return s.Header("Accept", content.MediaTypeJSON).
		expect(assertions.Status(o.status), loc).
		expect(assertions.ContentType(o.contentType), loc).
		expect(exp, loc)
}
