package spec

import (
	nethttp "net/http"
	"time"

	"github.com/abdul-hamid-achik/httpspec/packages/assertions"
	"github.com/abdul-hamid-achik/httpspec/packages/content"
	"github.com/abdul-hamid-achik/httpspec/packages/http"
)

// T records test failures. *testing.T and *testing.B satisfy it.
type T interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// Target is the application a spec runs against. A spec keeps a plain
// reference to it and must not outlive it.
type Target interface {
	Transport(mode http.Mode) (http.Transport, error)
}

// Hook mutates the outgoing request before dispatch.
type Hook func(req *nethttp.Request) error

type hook struct {
	fn       Hook
	location assertions.Location
}

type bodySource int

const (
	bodyNone bodySource = iota
	bodyBuffer
	bodyEncoded
)

// Spec accumulates a request description and response expectations.
type Spec struct {
	name   string
	target Target

	request    *http.Request
	codec      content.Codec
	baseDir    string
	bodySource bodySource
	conflict   *ConfigError

	hooks        []hook
	expectations []*assertions.Expectation

	consumed bool
}

// New creates a spec named name that runs against target.
func New(name string, target Target) *Spec {
	return &Spec{
		name:    name,
		target:  target,
		request: http.NewRequest(nethttp.MethodGet, ""),
		codec:   content.JSON,
	}
}

func (s *Spec) Name() string {
	return s.name
}

// Request returns a copy of the request as configured so far.
func (s *Spec) Request() *http.Request {
	return s.request.Clone()
}

// Expectations returns the registered expectations in order.
func (s *Spec) Expectations() []*assertions.Expectation {
	return append([]*assertions.Expectation(nil), s.expectations...)
}

// On sets the method and path. The last call wins.
func (s *Spec) On(method, path string) *Spec {
	s.request.Method = method
	s.request.Path = path
	return s
}

func (s *Spec) Get(path string) *Spec { return s.On(nethttp.MethodGet, path) }

func (s *Spec) Post(path string) *Spec { return s.On(nethttp.MethodPost, path) }

func (s *Spec) Put(path string) *Spec { return s.On(nethttp.MethodPut, path) }

func (s *Spec) Patch(path string) *Spec { return s.On(nethttp.MethodPatch, path) }

func (s *Spec) Delete(path string) *Spec { return s.On(nethttp.MethodDelete, path) }

// Header sets a request header, replacing any previous value.
func (s *Spec) Header(name, value string) *Spec {
	s.request.SetHeader(name, value)
	return s
}

// BearerToken sets the Authorization header to "Bearer <token>".
func (s *Spec) BearerToken(token string) *Spec {
	return s.Header("Authorization", "Bearer "+token)
}

// Query adds a query parameter, replacing any previous value.
func (s *Spec) Query(key, value string) *Spec {
	s.request.SetQueryParam(key, value)
	return s
}

// Timeout bounds the dispatch of this spec.
func (s *Spec) Timeout(d time.Duration) *Spec {
	s.request.SetTimeout(d)
	return s
}

// Codec sets the codec used by Body, and by content expectations when the
// response media type has no codec of its own. The default is JSON.
func (s *Spec) Codec(c content.Codec) *Spec {
	if c != nil {
		s.codec = c
	}
	return s
}

// BaseDir sets the directory schema file paths are resolved against.
func (s *Spec) BaseDir(dir string) *Spec {
	s.baseDir = dir
	return s
}

// Cookie sends the given cookies. Nil cookies are ignored; with none left
// the call is a no-op.
func (s *Spec) Cookie(cookies ...*nethttp.Cookie) *Spec {
	var jar []*nethttp.Cookie
	for _, c := range cookies {
		if c != nil {
			jar = append(jar, c)
		}
	}
	if len(jar) == 0 {
		return s
	}

	return s.before(func(req *nethttp.Request) error {
		req.Header.Del("Cookie")
		for _, c := range jar {
			req.AddCookie(c)
		}
		return nil
	}, assertions.Caller(1))
}

// Buffer sets the raw request body. It cannot be combined with Body.
func (s *Spec) Buffer(b []byte) *Spec {
	s.setBodySource(bodyBuffer, assertions.Caller(1))
	s.request.SetBody(b)
	return s
}

// Body encodes v with the spec's codec right before dispatch and sets
// Content-Type unless a header already names one. It cannot be combined
// with Buffer.
func (s *Spec) Body(v any) *Spec {
	loc := assertions.Caller(1)
	s.setBodySource(bodyEncoded, loc)
	return s.before(func(req *nethttp.Request) error {
		return encodeBody(req, s.codec, v)
	}, loc)
}

// Before registers a pre-send hook. Hooks run in registration order.
func (s *Spec) Before(fn Hook) *Spec {
	return s.before(fn, assertions.Caller(1))
}

func (s *Spec) before(fn Hook, loc assertions.Location) *Spec {
	if fn != nil {
		s.hooks = append(s.hooks, hook{fn: fn, location: loc})
	}
	return s
}

func (s *Spec) setBodySource(src bodySource, loc assertions.Location) {
	if s.bodySource != bodyNone && s.bodySource != src && s.conflict == nil {
		s.conflict = &ConfigError{Location: loc, Err: ErrConflictingBody}
	}
	s.bodySource = src
}

func encodeBody(req *nethttp.Request, codec content.Codec, v any) error {
	data, err := codec.Encode(v)
	if err != nil {
		return err
	}
	http.SetRequestBody(req, data)
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", codec.ContentType())
	}
	return nil
}
