package suite

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	t.Setenv("HTTPSPEC_TEST_TOKEN", "s3cret")

	r := NewResolver()
	r.SetVariables(map[string]any{"host": "api", "port": 8080})
	r.SetCapture("login", "token", "abc")

	var warnings []string
	r.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, format)
	})

	tests := []struct {
		in   string
		want string
	}{
		{"http://{{host}}:{{port}}", "http://api:8080"},
		{"{{ host }}", "api"},
		{"Bearer {{token}}", "Bearer abc"},
		{"{{login.token}}", "abc"},
		{"{{$HTTPSPEC_TEST_TOKEN}}", "s3cret"},
		{"{{base64(hi)}}", base64.StdEncoding.EncodeToString([]byte("hi"))},
		{"no placeholders", "no placeholders"},
		{"{{missing}}", "{{missing}}"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.in))
		})
	}
	assert.NotEmpty(t, warnings)
}

func TestResolver_CapturesShadowVariables(t *testing.T) {
	r := NewResolver()
	r.SetVariable("id", "from-variable")
	r.SetCapture("", "id", "from-capture")

	v, ok := r.Lookup("id")
	require.True(t, ok)
	assert.Equal(t, "from-capture", v)
}

func TestResolver_Functions(t *testing.T) {
	r := NewResolver()

	assert.Len(t, r.Resolve("{{uuid()}}"), 36)
	assert.Len(t, r.Resolve("{{randomString(10)}}"), 10)
	assert.Regexp(t, `^\d+$`, r.Resolve("{{timestamp()}}"))
	assert.Equal(t, "{{nope()}}", r.Resolve("{{nope()}}"))
	assert.Equal(t, "{{randomString(x)}}", r.Resolve("{{randomString(x)}}"))
	assert.Equal(t, "", r.Resolve("{{randomString(0)}}"))
}

func TestResolver_NegativeRandomStringLength(t *testing.T) {
	r := NewResolver()
	var warnings []string
	r.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	assert.NotPanics(t, func() {
		assert.Equal(t, "{{randomString(-1)}}", r.Resolve("{{randomString(-1)}}"))
	})
	assert.Equal(t, "{{randomString(-5)}}", r.ResolveValue("{{randomString(-5)}}"))
	assert.Len(t, warnings, 2)
}

func TestResolver_ResolveValue(t *testing.T) {
	r := NewResolver()
	r.SetVariables(map[string]any{"count": 3, "name": "widget"})

	got := r.ResolveValue(map[string]any{
		"count": "{{count}}",
		"label": "{{name}} x{{count}}",
		"tags":  []any{"{{name}}", 1, true},
		"keep":  "{{unknown}}",
	})

	assert.Equal(t, map[string]any{
		"count": 3,
		"label": "widget x3",
		"tags":  []any{"widget", 1, true},
		"keep":  "{{unknown}}",
	}, got)
}

func TestLoadDotEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(p, []byte(`# comment
API_KEY=abc123
export REGION = "eu-west-1"
QUOTED='single'
EMPTY=
broken line
`), 0o600))

	vars, err := LoadDotEnv(p)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"API_KEY": "abc123",
		"REGION":  "eu-west-1",
		"QUOTED":  "single",
		"EMPTY":   "",
	}, vars)

	_, err = LoadDotEnv(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
