package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"
)

// Mode selects how a request reaches the application under test.
type Mode int

const (
	// InMemory hands the request directly to the application's handler.
	InMemory Mode = iota
	// LiveServer sends the request over a real network connection.
	LiveServer
)

func (m Mode) String() string {
	switch m {
	case InMemory:
		return "inmemory"
	case LiveServer:
		return "live"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a transport mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inmemory", "in-memory", "memory":
		return InMemory, nil
	case "live", "server", "live-server":
		return LiveServer, nil
	default:
		return InMemory, fmt.Errorf("unknown transport mode %q", s)
	}
}

// InMemoryBaseURL is the origin used for requests dispatched in memory.
const InMemoryBaseURL = "http://localhost"

// ErrTransport is matched by every error returned from a Transport.
var ErrTransport = errors.New("transport failure")

// TransportError describes a failed dispatch.
type TransportError struct {
	Mode Mode
	URL  string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s dispatch %s: %v", e.Mode, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Transport dispatches fully built requests and returns buffered responses.
type Transport interface {
	Mode() Mode
	BaseURL() string
	Dispatch(req *http.Request) (*Response, error)
}

// InMemoryTransport serves requests with an http.Handler through a response
// recorder. No sockets are opened.
type InMemoryTransport struct {
	handler http.Handler
}

func NewInMemoryTransport(handler http.Handler) *InMemoryTransport {
	return &InMemoryTransport{handler: handler}
}

func (t *InMemoryTransport) Mode() Mode { return InMemory }

func (t *InMemoryTransport) BaseURL() string { return InMemoryBaseURL }

func (t *InMemoryTransport) Dispatch(req *http.Request) (resp *Response, err error) {
	if t.handler == nil {
		return nil, &TransportError{Mode: InMemory, URL: req.URL.String(), Err: errors.New("no handler")}
	}

	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = &TransportError{Mode: InMemory, URL: req.URL.String(), Err: fmt.Errorf("handler panic: %v", r)}
		}
	}()

	if req.RemoteAddr == "" {
		req.RemoteAddr = "192.0.2.1:1234"
	}
	if req.RequestURI == "" {
		req.RequestURI = req.URL.RequestURI()
	}

	rec := httptest.NewRecorder()
	start := time.Now()
	t.handler.ServeHTTP(rec, req)
	duration := time.Since(start)

	result := rec.Result()
	defer result.Body.Close()

	body, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, &TransportError{Mode: InMemory, URL: req.URL.String(), Err: err}
	}

	headers := result.Header.Clone()
	// A real server reports the length of a fully buffered body.
	if headers.Get("Content-Length") == "" && headers.Get("Transfer-Encoding") == "" && req.Method != http.MethodHead {
		headers.Set("Content-Length", strconv.Itoa(len(body)))
	}

	return &Response{
		StatusCode: result.StatusCode,
		Status:     result.Status,
		Headers:    headers,
		Body:       body,
		Duration:   duration,
	}, nil
}

// LiveTransport sends requests to a running server through a Client.
type LiveTransport struct {
	baseURL string
	client  *Client
}

func NewLiveTransport(baseURL string, client *Client) *LiveTransport {
	if client == nil {
		client = NewClient()
	}
	return &LiveTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (t *LiveTransport) Mode() Mode { return LiveServer }

func (t *LiveTransport) BaseURL() string { return t.baseURL }

// Close drops the client's idle connections. The transport stays usable.
func (t *LiveTransport) Close() {
	t.client.CloseIdleConnections()
}

func (t *LiveTransport) Dispatch(req *http.Request) (*Response, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{Mode: LiveServer, URL: req.URL.String(), Err: err}
	}
	return resp, nil
}

// ErrNoHandler is returned when in-memory dispatch is requested for a target
// that only exists over the network.
var ErrNoHandler = errors.New("target has no in-memory handler")

// Remote is a target reachable only at a base URL.
type Remote struct {
	transport *LiveTransport
}

// NewRemote returns a target that dispatches to baseURL with a client built
// from opts.
func NewRemote(baseURL string, opts ...ClientOption) *Remote {
	return &Remote{transport: NewLiveTransport(baseURL, NewClient(opts...))}
}

func (r *Remote) BaseURL() string { return r.transport.BaseURL() }

// Transport returns the live transport. InMemory mode fails with
// ErrNoHandler.
func (r *Remote) Transport(mode Mode) (Transport, error) {
	if mode != LiveServer {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, r.transport.BaseURL())
	}
	return r.transport, nil
}
