package suite

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var placeholder = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc receives warnings about placeholders that could not be resolved.
type WarnFunc func(format string, args ...any)

// Resolver substitutes {{...}} placeholders. Captures shadow variables.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	captures  map[string]any
	warn      WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		captures:  make(map[string]any),
	}
}

// SetWarnFunc sets the function called for unresolved placeholders.
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warn = fn
}

func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// SetCapture stores a value captured from the response of spec. It is
// reachable both as "name" and "spec.name".
func (r *Resolver) SetCapture(spec, name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if spec != "" {
		r.captures[spec+"."+name] = value
	}
	r.captures[name] = value
}

// Lookup returns the value of a variable or capture.
func (r *Resolver) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.captures[name]; ok {
		return v, true
	}
	v, ok := r.variables[name]
	return v, ok
}

// Resolve replaces every placeholder in s. Unresolved placeholders are kept
// verbatim.
func (r *Resolver) Resolve(s string) string {
	return placeholder.ReplaceAllStringFunc(s, func(match string) string {
		v, ok := r.eval(strings.TrimSpace(match[2 : len(match)-2]))
		if !ok {
			return match
		}
		return fmt.Sprint(v)
	})
}

// ResolveValue resolves strings nested anywhere in v. A string that is a
// single placeholder takes the type of the resolved value.
func (r *Resolver) ResolveValue(v any) any {
	switch val := v.(type) {
	case string:
		if m := placeholder.FindStringSubmatch(val); m != nil && m[0] == val {
			if out, ok := r.eval(strings.TrimSpace(m[1])); ok {
				return out
			}
			return val
		}
		return r.Resolve(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = r.ResolveValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = r.ResolveValue(item)
		}
		return out
	default:
		return v
	}
}

// ResolveMap resolves every value of m into a new map.
func (r *Resolver) ResolveMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = r.Resolve(v)
	}
	return out
}

func (r *Resolver) eval(expr string) (any, bool) {
	if name, ok := strings.CutPrefix(expr, "$"); ok {
		if val, found := os.LookupEnv(name); found {
			return val, true
		}
		r.warnf("unresolved environment variable: $%s", name)
		return nil, false
	}

	if strings.Contains(expr, "(") {
		if v, ok := call(expr); ok {
			return v, true
		}
		r.warnf("unresolved function call: %s", expr)
		return nil, false
	}

	if v, ok := r.Lookup(expr); ok {
		return v, true
	}
	r.warnf("unresolved variable: %s", expr)
	return nil, false
}

func (r *Resolver) warnf(format string, args ...any) {
	r.mu.RLock()
	fn := r.warn
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

var funcCall = regexp.MustCompile(`^(\w+)\((.*)\)$`)

func call(expr string) (any, bool) {
	m := funcCall.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}
	arg := strings.Trim(strings.TrimSpace(m[2]), `"'`)

	switch m[1] {
	case "uuid":
		return uuid.NewString(), true
	case "timestamp":
		return time.Now().Unix(), true
	case "now":
		return time.Now().UTC().Format(time.RFC3339), true
	case "randomString":
		n := 16
		if arg != "" {
			v, err := strconv.Atoi(arg)
			if err != nil || v < 0 {
				return nil, false
			}
			n = v
		}
		return randomString(n), true
	case "base64":
		return base64.StdEncoding.EncodeToString([]byte(arg)), true
	default:
		return nil, false
	}
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[rand.Intn(len(alphanumeric))]
	}
	return string(b)
}

// LoadDotEnv reads KEY=value pairs from a .env file. Blank lines and lines
// starting with # are skipped; matching quotes around a value are removed.
func LoadDotEnv(path string) (map[string]any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open env file: %w", err)
	}
	defer file.Close()

	vars := make(map[string]any)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		if !found || key == "" {
			continue
		}

		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		vars[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	return vars, nil
}
