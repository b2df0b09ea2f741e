package app

import (
	"context"
	"net/http"
	"runtime"
	"strings"
	"sync"

	httpspec "github.com/abdul-hamid-achik/httpspec/packages/http"
	"github.com/abdul-hamid-achik/httpspec/packages/spec"
)

// Application is an http.Handler under test.
type Application struct {
	router     *Router
	handler    http.Handler
	port       int
	verbose    bool
	clientOpts []httpspec.ClientOption

	mu     sync.Mutex
	server *Server
	live   *httpspec.LiveTransport
}

// Option is a functional option for Application
type Option func(*Application)

// WithHandler serves h instead of the built-in router.
func WithHandler(h http.Handler) Option {
	return func(a *Application) {
		a.handler = h
	}
}

// WithPort sets the live server port (0 picks a free port)
func WithPort(port int) Option {
	return func(a *Application) {
		a.port = port
	}
}

// WithVerbose enables request logging on the live server
func WithVerbose(verbose bool) Option {
	return func(a *Application) {
		a.verbose = verbose
	}
}

// WithClientOptions configures the client used by the live transport.
func WithClientOptions(opts ...httpspec.ClientOption) Option {
	return func(a *Application) {
		a.clientOpts = append(a.clientOpts, opts...)
	}
}

// New creates an application
func New(opts ...Option) *Application {
	a := &Application{
		router: NewRouter(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns the built-in router
func (a *Application) Router() *Router {
	return a.router
}

func (a *Application) Handle(method, path string, h http.Handler) *Route {
	return a.router.Handle(method, path, h)
}

func (a *Application) Get(path string, h http.HandlerFunc) *Route {
	return a.Handle(http.MethodGet, path, h)
}

func (a *Application) Post(path string, h http.HandlerFunc) *Route {
	return a.Handle(http.MethodPost, path, h)
}

func (a *Application) Put(path string, h http.HandlerFunc) *Route {
	return a.Handle(http.MethodPut, path, h)
}

func (a *Application) Patch(path string, h http.HandlerFunc) *Route {
	return a.Handle(http.MethodPatch, path, h)
}

func (a *Application) Delete(path string, h http.HandlerFunc) *Route {
	return a.Handle(http.MethodDelete, path, h)
}

// Handler returns the handler requests are served with.
func (a *Application) Handler() http.Handler {
	if a.handler != nil {
		return a.handler
	}
	return a.router
}

func (a *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Handler().ServeHTTP(w, r)
}

// Transport returns the transport for mode. The live server is started on
// first use and kept until Shutdown.
func (a *Application) Transport(mode httpspec.Mode) (httpspec.Transport, error) {
	if mode != httpspec.LiveServer {
		return httpspec.NewInMemoryTransport(a.Handler()), nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		srv := NewServer(a.Handler(), a.port, a.verbose)
		if err := srv.Start(); err != nil {
			return nil, err
		}
		a.server = srv
		a.live = httpspec.NewLiveTransport(srv.URL(), httpspec.NewClient(a.clientOpts...))
	}
	return a.live, nil
}

// Shutdown stops the live server, if one was started.
func (a *Application) Shutdown() error {
	a.mu.Lock()
	srv, live := a.server, a.live
	a.server, a.live = nil, nil
	a.mu.Unlock()

	if srv == nil {
		return nil
	}
	live.Close()
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// Describe creates a spec with the given name.
func (a *Application) Describe(name string) *spec.Spec {
	return spec.New(name, a)
}

// Spec creates a spec named after the calling function unless a name is
// given.
func (a *Application) Spec(name ...string) *spec.Spec {
	if len(name) > 0 && name[0] != "" {
		return spec.New(name[0], a)
	}
	return spec.New(callerName(), a)
}

func callerName() string {
	pc, _, _, ok := runtime.Caller(2)
	if !ok {
		return "spec"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "spec"
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
