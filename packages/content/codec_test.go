package content

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct {
	Foo string `json:"foo" yaml:"foo"`
	Bar int    `json:"bar" yaml:"bar"`
	Baz bool   `json:"baz" yaml:"baz"`
}

func TestForMediaType(t *testing.T) {
	tests := []struct {
		contentType string
		want        Codec
		wantErr     bool
	}{
		{"application/json", JSON, false},
		{"application/json; charset=utf-8", JSON, false},
		{"application/problem+json", JSON, false},
		{"application/yaml", YAML, false},
		{"text/yaml", YAML, false},
		{"application/x-www-form-urlencoded", Form, false},
		{"text/plain", nil, true},
		{"", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, err := ForMediaType(tt.contentType)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedMediaType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONCodec(t *testing.T) {
	in := echo{Foo: "foo", Bar: 42, Baz: true}

	data, err := JSON.Encode(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"foo":"foo","bar":42,"baz":true}`, string(data))

	var out echo
	require.NoError(t, JSON.Decode(data, &out))
	assert.Equal(t, in, out)

	err = JSON.Decode([]byte(`{"foo":`), &out)
	assert.ErrorIs(t, err, ErrDecode)

	err = JSON.Decode([]byte(`{"foo":"a","bar":1,"baz":true} this is not json`), &out)
	assert.ErrorIs(t, err, ErrDecode)

	err = JSON.Decode([]byte(`{"foo":"a"}{"foo":"b"}`), &out)
	assert.ErrorIs(t, err, ErrDecode)

	var anything any
	require.NoError(t, JSON.Decode([]byte("null"), &anything))
	assert.Nil(t, anything)

	_, err = JSON.Encode(make(chan int))
	assert.ErrorIs(t, err, ErrEncode)
}

func TestYAMLCodec(t *testing.T) {
	var out echo
	require.NoError(t, YAML.Decode([]byte("foo: foo\nbar: 42\nbaz: true\n"), &out))
	assert.Equal(t, echo{Foo: "foo", Bar: 42, Baz: true}, out)

	data, err := YAML.Encode(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bar: 42")
	assert.Equal(t, MediaTypeYAML, YAML.ContentType())
}

func TestFormCodec(t *testing.T) {
	data, err := Form.Encode(map[string]string{"name": "a b", "id": "1"})
	require.NoError(t, err)
	assert.Equal(t, "id=1&name=a+b", string(data))

	var values url.Values
	require.NoError(t, Form.Decode(data, &values))
	assert.Equal(t, "a b", values.Get("name"))

	var m map[string]string
	require.NoError(t, Form.Decode(data, &m))
	assert.Equal(t, map[string]string{"id": "1", "name": "a b"}, m)

	_, err = Form.Encode(42)
	assert.ErrorIs(t, err, ErrEncode)

	var wrong int
	assert.ErrorIs(t, Form.Decode(data, &wrong), ErrDecode)
}
