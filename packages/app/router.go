package app

import (
	"context"
	"net/http"
	"regexp"
	"sort"
	"strings"
)

// Route represents a registered route
type Route struct {
	Method      string
	PathPattern string
	PathRegex   *regexp.Regexp
	Handler     http.Handler
}

// Router matches incoming requests to routes
type Router struct {
	routes []*Route
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{
		routes: make([]*Route, 0),
	}
}

// Handle registers handler for method and path pattern. Path segments of
// the form {name} capture a parameter readable with Param.
func (r *Router) Handle(method, pattern string, handler http.Handler) *Route {
	pattern = normalizePath(pattern)
	route := &Route{
		Method:      strings.ToUpper(method),
		PathPattern: pattern,
		PathRegex:   createPathRegex(pattern),
		Handler:     handler,
	}
	r.routes = append(r.routes, route)
	return route
}

// Routes returns all registered routes
func (r *Router) Routes() []*Route {
	return r.routes
}

// Match finds a route matching the given method and path. allowed lists the
// methods of routes whose path matched when the method did not.
func (r *Router) Match(method, path string) (route *Route, params map[string]string, allowed []string) {
	path = normalizePath(path)

	for _, rt := range r.routes {
		p := matchPath(rt, path)
		if p == nil {
			continue
		}
		if strings.EqualFold(rt.Method, method) {
			return rt, p, nil
		}
		allowed = append(allowed, rt.Method)
	}

	return nil, nil, allowed
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	route, params, allowed := r.Match(req.Method, req.URL.Path)
	if route == nil {
		if len(allowed) > 0 {
			sort.Strings(allowed)
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		http.NotFound(w, req)
		return
	}

	if len(params) > 0 {
		req = req.WithContext(context.WithValue(req.Context(), paramsKey{}, params))
	}
	route.Handler.ServeHTTP(w, req)
}

type paramsKey struct{}

// Param returns the named path parameter captured for r.
func Param(r *http.Request, name string) string {
	params, _ := r.Context().Value(paramsKey{}).(map[string]string)
	return params[name]
}

func normalizePath(path string) string {
	// Ensure path starts with /
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	// Remove trailing slash (except for root)
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

func matchPath(route *Route, path string) map[string]string {
	if route.PathRegex != nil {
		matches := route.PathRegex.FindStringSubmatch(path)
		if matches != nil {
			params := make(map[string]string)
			names := route.PathRegex.SubexpNames()
			for i, name := range names {
				if i > 0 && name != "" && i < len(matches) {
					params[name] = matches[i]
				}
			}
			return params
		}
	}

	if route.PathPattern == path {
		return make(map[string]string)
	}

	return nil
}

var pathParam = regexp.MustCompile(`\\\{(\w+)\\\}`)

func createPathRegex(pattern string) *regexp.Regexp {
	// Quote literal segments, then turn {param} into named capture groups
	regexPattern := pathParam.ReplaceAllString(regexp.QuoteMeta(pattern), `(?P<$1>[^/]+)`)

	regex, err := regexp.Compile("^" + regexPattern + "$")
	if err != nil {
		return regexp.MustCompile("^" + regexp.QuoteMeta(pattern) + "$")
	}
	return regex
}
