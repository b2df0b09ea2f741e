package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersSuite = `name: users
baseUrl: http://localhost:8080
variables:
  user: alice
headers:
  Accept: application/json
specs:
  - name: create
    method: post
    path: /users
    body:
      name: "{{user}}"
    capture:
      id: id
    expect:
      status: 201
      headers:
        Location: []
      json:
        name: "{{user}}"

  - name: fetch
    path: /users/{{id}}
    expect:
      status: 200
      contains: alice
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(usersSuite))
	require.NoError(t, err)

	assert.Equal(t, "users", f.Name)
	assert.Equal(t, "http://localhost:8080", f.BaseURL)
	assert.Equal(t, "alice", f.Variables["user"])
	assert.Equal(t, "application/json", f.Headers["Accept"])
	require.Len(t, f.Specs, 2)

	create := f.Specs[0]
	assert.Equal(t, "POST", create.method())
	assert.Equal(t, map[string]any{"name": "{{user}}"}, create.Body)
	assert.Equal(t, "id", create.Capture["id"])
	assert.Equal(t, 201, create.Expect.Status)
	assert.Contains(t, create.Expect.Headers, "Location")
	assert.Empty(t, create.Expect.Headers["Location"])
	assert.Equal(t, 8, create.Line)

	fetch := f.Specs[1]
	assert.Equal(t, "GET", fetch.method())
	assert.Equal(t, "alice", fetch.Expect.Contains)
	assert.Equal(t, 22, fetch.Line)

	require.NoError(t, f.Validate())
}

func TestParse_JSON(t *testing.T) {
	f, err := Parse([]byte(`{"specs": [{"path": "/health", "expect": {"status": 200}}]}`))
	require.NoError(t, err)
	require.Len(t, f.Specs, 1)
	assert.Equal(t, "GET /health", f.Specs[0].displayName())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("specs: [unclosed"))
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "users.yaml")
	require.NoError(t, os.WriteFile(p, []byte(usersSuite), 0o644))

	f, err := ParseFile(p)
	require.NoError(t, err)
	assert.Equal(t, p, f.Path)

	_, err = ParseFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	f, err := Parse([]byte(`specs:
  - name: a
    method: FETCH
  - name: a
    path: /x
    body: {k: v}
    raw: text
    timeout: -1
    expect:
      status: 42
`))
	require.NoError(t, err)

	err = f.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 6)
	assert.Contains(t, err.Error(), `spec 1 (a): unknown method "FETCH"`)
	assert.Contains(t, err.Error(), "spec 1 (a): path is required")
	assert.Contains(t, err.Error(), "spec 2 (a): duplicate name")
	assert.Contains(t, err.Error(), "body and raw are mutually exclusive")
	assert.Contains(t, err.Error(), "invalid status 42")
	assert.Contains(t, err.Error(), "negative timeout")
}

func TestValidate_Empty(t *testing.T) {
	f, err := Parse([]byte("name: empty\n"))
	require.NoError(t, err)
	assert.ErrorContains(t, f.Validate(), "no specs defined")
}
