package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/abdul-hamid-achik/httpspec/packages/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with fresh flag values and captures its output.
func execute(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	for _, c := range rootCmd.Commands() {
		resetFlags(c)
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	code = run(args)
	return out.String(), errOut.String(), code
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func newService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok","user":"` + r.Header.Get("X-User") + `"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

const healthSuite = `name: health
headers:
  X-User: "{{user}}"
variables:
  user: file-user
specs:
  - name: health
    path: /health
    expect:
      status: 200
      json:
        status: ok
        user: "{{user}}"
`

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.spec.yaml", healthSuite)
	writeFile(t, dir, "nested/b.spec.json", `{"specs": []}`)
	writeFile(t, dir, "config.yaml", "mode: live\n")
	explicit := writeFile(t, dir, "other.yaml", healthSuite)

	files, err := collectFiles([]string{dir})
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = collectFiles([]string{explicit})
	require.NoError(t, err)
	assert.Equal(t, []string{explicit}, files)

	_, err = collectFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestRun_Passes(t *testing.T) {
	server := newService(t)
	suitePath := writeFile(t, t.TempDir(), "health.spec.yaml", healthSuite)

	stdout, stderr, code := execute(t, "run", suitePath, "--base-url", server.URL, "--output", "json")
	require.Equal(t, ExitSuccess, code, stderr)

	var out output.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, output.JSONSummary{Total: 1, Passed: 1}, out.Summary)
	assert.NotEmpty(t, out.Tests[0].RequestID)
}

func TestRun_VarOverridesFile(t *testing.T) {
	server := newService(t)
	suitePath := writeFile(t, t.TempDir(), "health.spec.yaml", healthSuite)

	stdout, _, code := execute(t, "run", suitePath, "-u", server.URL, "--var", "user=cli-user", "--no-color")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "✓ health")
}

func TestRun_Failure(t *testing.T) {
	server := newService(t)
	suitePath := writeFile(t, t.TempDir(), "bad.spec.yaml", `specs:
  - name: wrong status
    path: /health
    expect:
      status: 201
`)

	stdout, _, code := execute(t, "run", suitePath, "-u", server.URL, "--output", "tap")
	assert.Equal(t, ExitTestFailure, code)
	assert.Contains(t, stdout, "not ok 1 - wrong status")
	assert.Contains(t, stdout, "bad.spec.yaml:2: expected status 201, got 200")
}

func TestRun_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	suitePath := writeFile(t, t.TempDir(), "down.spec.yaml", healthSuite)
	_, _, code := execute(t, "run", suitePath, "-u", url)
	assert.Equal(t, ExitNetworkError, code)
}

func TestRun_ParseError(t *testing.T) {
	suitePath := writeFile(t, t.TempDir(), "broken.spec.yaml", "specs: [unclosed")

	stdout, _, code := execute(t, "run", suitePath, "-u", "http://localhost:1", "--no-color")
	assert.Equal(t, ExitParseError, code)
	assert.Contains(t, stdout, "Error:")
}

func TestRun_NoBaseURL(t *testing.T) {
	suitePath := writeFile(t, t.TempDir(), "nobase.spec.yaml", healthSuite)

	stdout, _, code := execute(t, "run", suitePath, "--no-color")
	assert.Equal(t, ExitParseError, code)
	assert.Contains(t, stdout, "no base URL")
}

func TestRun_UsageErrors(t *testing.T) {
	dir := t.TempDir()
	suitePath := writeFile(t, dir, "health.spec.yaml", healthSuite)

	_, stderr, code := execute(t, "run", suitePath, "--var", "novalue")
	assert.Equal(t, ExitUsageError, code)
	assert.Contains(t, stderr, "invalid --var")

	_, _, code = execute(t, "run", suitePath, "--timeout", "soon")
	assert.Equal(t, ExitUsageError, code)

	_, _, code = execute(t, "run", t.TempDir())
	assert.Equal(t, ExitUsageError, code)
}

func TestRun_InMemoryModeRejected(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "cfg.yaml", "mode: in-memory\n")
	suitePath := writeFile(t, dir, "health.spec.yaml", healthSuite)

	_, stderr, code := execute(t, "run", suitePath, "--config", cfgPath)
	assert.Equal(t, ExitConfigError, code)
	assert.Contains(t, stderr, "live services")
}

func TestRun_OutputFile(t *testing.T) {
	server := newService(t)
	dir := t.TempDir()
	suitePath := writeFile(t, dir, "health.spec.yaml", healthSuite)
	report := filepath.Join(dir, "report.xml")

	_, _, code := execute(t, "run", suitePath, "-u", server.URL, "-o", "junit", "--output-file", report)
	require.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<testsuites name="httpspec" tests="1"`)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.spec.yaml", healthSuite)
	bad := writeFile(t, dir, "bad.spec.yaml", "specs:\n  - method: FETCH\n")

	stdout, _, code := execute(t, "validate", good)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Valid: "+good)

	_, stderr, code := execute(t, "validate", dir)
	assert.Equal(t, ExitParseError, code)
	assert.Contains(t, stderr, "Error in "+bad)
	assert.Contains(t, stderr, "path is required")
	assert.Contains(t, stderr, `unknown method "FETCH"`)
}

func TestList(t *testing.T) {
	suitePath := writeFile(t, t.TempDir(), "users.spec.yaml", `specs:
  - name: create
    method: POST
    path: /users
  - path: /users/1
    skip: flaky
`)

	stdout, _, code := execute(t, "list", suitePath)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "  - create (POST /users)")
	assert.Contains(t, stdout, "  - GET /users/1 [skip: flaky]")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	stdout, _, code := execute(t, "init")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "httpspec project initialized!")
	assert.FileExists(t, filepath.Join(dir, ".httpspec.yaml"))
	assert.FileExists(t, filepath.Join(dir, "example.spec.yaml"))

	_, _, code = execute(t, "validate", "example.spec.yaml")
	assert.Equal(t, ExitSuccess, code)

	_, _, code = execute(t, "init")
	assert.Equal(t, ExitUsageError, code)

	_, _, code = execute(t, "init", "--force")
	assert.Equal(t, ExitSuccess, code)
}

func TestVersion(t *testing.T) {
	stdout, _, code := execute(t, "version")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "httpspec version dev")
	assert.Contains(t, stdout, runtime.Version())
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, code := execute(t, "completion", shell)
			assert.Equal(t, ExitSuccess, code)
			assert.Contains(t, stdout, "httpspec")
		})
	}

	_, _, code := execute(t, "completion", "tcsh")
	assert.Equal(t, ExitUsageError, code)

	t.Run("output formats", func(t *testing.T) {
		stdout, _, code := execute(t, cobra.ShellCompRequestCmd, "run", "--output", "")
		assert.Equal(t, ExitSuccess, code)
		for _, format := range output.Formats {
			assert.Contains(t, stdout, format+"\n")
		}
		assert.Contains(t, stdout, fmt.Sprintf(":%d", cobra.ShellCompDirectiveNoFileComp))
	})

	t.Run("suite files", func(t *testing.T) {
		stdout, _, code := execute(t, cobra.ShellCompRequestCmd, "validate", "")
		assert.Equal(t, ExitSuccess, code)
		assert.Contains(t, stdout, "yaml\nyml\njson\n")
		assert.Contains(t, stdout, fmt.Sprintf(":%d", cobra.ShellCompDirectiveFilterFileExt))
	})
}

func TestIsSuiteFile(t *testing.T) {
	assert.True(t, isSuiteFile("a/users.spec.yaml"))
	assert.True(t, isSuiteFile("USERS.SPEC.YML"))
	assert.True(t, isSuiteFile("x.spec.json"))
	assert.False(t, isSuiteFile("config.yaml"))
	assert.False(t, isSuiteFile("spec.yaml"))
}
