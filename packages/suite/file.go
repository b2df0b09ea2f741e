package suite

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// File is a parsed suite file.
type File struct {
	Name      string            `yaml:"name"`
	BaseURL   string            `yaml:"baseUrl"`
	Variables map[string]any    `yaml:"variables"`
	Headers   map[string]string `yaml:"headers"`
	Specs     []*Case           `yaml:"specs"`

	// Path is where the file was read from, if anywhere.
	Path string `yaml:"-"`
}

// Case describes one request and what its response must look like.
type Case struct {
	Name        string            `yaml:"name"`
	Method      string            `yaml:"method"`
	Path        string            `yaml:"path"`
	Headers     map[string]string `yaml:"headers"`
	Query       map[string]string `yaml:"query"`
	BearerToken string            `yaml:"bearerToken"`
	Body        any               `yaml:"body"`
	Raw         string            `yaml:"raw"`
	Timeout     int               `yaml:"timeout"` // milliseconds
	Skip        string            `yaml:"skip"`
	Capture     map[string]string `yaml:"capture"`
	Expect      Expect            `yaml:"expect"`

	// Line is the line the case starts on in its file.
	Line int `yaml:"-"`
}

func (c *Case) UnmarshalYAML(node *yaml.Node) error {
	type plain Case
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	c.Line = node.Line
	return nil
}

// Expect lists response expectations. A header mapped to an empty list only
// has to be present.
type Expect struct {
	Status      int                 `yaml:"status"`
	Headers     map[string][]string `yaml:"headers"`
	ContentType string              `yaml:"contentType"`
	JSON        map[string]any      `yaml:"json"`
	Exists      []string            `yaml:"exists"`
	Schema      string              `yaml:"schema"`
	Contains    string              `yaml:"contains"`
}

// Parse decodes a suite from YAML. JSON documents are accepted too.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing suite: %w", err)
	}
	return &f, nil
}

// ParseFile reads and decodes the suite at path.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

var methods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// Validate reports every structural problem in the file at once.
func (f *File) Validate() error {
	var result *multierror.Error

	if len(f.Specs) == 0 {
		result = multierror.Append(result, fmt.Errorf("no specs defined"))
	}

	seen := make(map[string]int)
	for i, c := range f.Specs {
		label := c.label(i)
		if c == nil {
			result = multierror.Append(result, fmt.Errorf("%s: empty spec", label))
			continue
		}
		if c.Name != "" {
			if prev, ok := seen[c.Name]; ok {
				result = multierror.Append(result, fmt.Errorf("%s: duplicate name, first used by spec %d", label, prev+1))
			}
			seen[c.Name] = i
		}
		if c.Path == "" {
			result = multierror.Append(result, fmt.Errorf("%s: path is required", label))
		}
		if c.Method != "" && !methods[strings.ToUpper(c.Method)] {
			result = multierror.Append(result, fmt.Errorf("%s: unknown method %q", label, c.Method))
		}
		if c.Body != nil && c.Raw != "" {
			result = multierror.Append(result, fmt.Errorf("%s: body and raw are mutually exclusive", label))
		}
		if s := c.Expect.Status; s != 0 && (s < 100 || s > 599) {
			result = multierror.Append(result, fmt.Errorf("%s: invalid status %d", label, s))
		}
		if c.Timeout < 0 {
			result = multierror.Append(result, fmt.Errorf("%s: negative timeout", label))
		}
	}

	return result.ErrorOrNil()
}

func (c *Case) label(i int) string {
	if c != nil && c.Name != "" {
		return fmt.Sprintf("spec %d (%s)", i+1, c.Name)
	}
	return fmt.Sprintf("spec %d", i+1)
}

func (c *Case) method() string {
	if c.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(c.Method)
}
