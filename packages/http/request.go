package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request is the transport-independent description of an outgoing request.
type Request struct {
	Method      string
	Path        string
	Header      http.Header
	Body        []byte
	Timeout     time.Duration
	QueryParams url.Values
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method:      method,
		Path:        path,
		Header:      make(http.Header),
		QueryParams: make(url.Values),
	}
}

// SetHeader replaces any existing values for key.
func (r *Request) SetHeader(key, value string) *Request {
	r.Header.Set(key, value)
	return r
}

func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

func (r *Request) SetQueryParam(key, value string) *Request {
	r.QueryParams.Set(key, value)
	return r
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	c := &Request{
		Method:      r.Method,
		Path:        r.Path,
		Header:      r.Header.Clone(),
		Timeout:     r.Timeout,
		QueryParams: make(url.Values, len(r.QueryParams)),
	}
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	for k, v := range r.QueryParams {
		c.QueryParams[k] = append([]string(nil), v...)
	}
	return c
}

// BuildURL joins baseURL with the request path and query parameters.
func (r *Request) BuildURL(baseURL string) (string, error) {
	path := r.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + path)
	if err != nil {
		return "", fmt.Errorf("invalid request URL: %w", err)
	}

	if len(r.QueryParams) > 0 {
		q := u.Query()
		for k, vs := range r.QueryParams {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Build materializes the request against baseURL. The returned request owns
// copies of the header map and body.
func (r *Request) Build(ctx context.Context, baseURL string) (*http.Request, error) {
	target, err := r.BuildURL(baseURL)
	if err != nil {
		return nil, err
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header = r.Header.Clone()
	if httpReq.Header == nil {
		httpReq.Header = make(http.Header)
	}
	SetRequestBody(httpReq, r.Body)
	return httpReq, nil
}

// SetRequestBody replaces the body of req, keeping ContentLength and GetBody
// consistent so the request can be replayed on redirects.
func SetRequestBody(req *http.Request, body []byte) {
	if body == nil {
		req.Body = http.NoBody
		req.ContentLength = 0
		req.GetBody = nil
		return
	}
	req.ContentLength = int64(len(body))
	req.Body = readCloser(body)
	req.GetBody = func() (io.ReadCloser, error) {
		return readCloser(body), nil
	}
}

func readCloser(b []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(b))
}
