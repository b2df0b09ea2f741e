package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	MediaTypeJSON = "application/json"
	MediaTypeYAML = "application/yaml"
	MediaTypeForm = "application/x-www-form-urlencoded"
)

var (
	ErrEncode               = errors.New("content encode failed")
	ErrDecode               = errors.New("content decode failed")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

// Codec converts between Go values and a wire representation.
type Codec interface {
	ContentType() string
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

var (
	JSON Codec = jsonCodec{}
	YAML Codec = yamlCodec{}
	Form Codec = formCodec{}
)

// ForMediaType returns the codec registered for a Content-Type value.
// Parameters such as charset are ignored.
func ForMediaType(contentType string) (Codec, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}

	switch {
	case mt == MediaTypeJSON, strings.HasSuffix(mt, "+json"):
		return JSON, nil
	case mt == MediaTypeYAML, mt == "application/x-yaml", mt == "text/yaml", strings.HasSuffix(mt, "+yaml"):
		return YAML, nil
	case mt == MediaTypeForm:
		return Form, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, contentType)
	}
}

type jsonCodec struct{}

func (jsonCodec) ContentType() string { return MediaTypeJSON + "; charset=utf-8" }

func (jsonCodec) Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrEncode, err)
	}
	return b, nil
}

func (jsonCodec) Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: json: %v", ErrDecode, err)
	}
	return nil
}

type yamlCodec struct{}

func (yamlCodec) ContentType() string { return MediaTypeYAML }

func (yamlCodec) Encode(v any) ([]byte, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrEncode, err)
	}
	return b, nil
}

func (yamlCodec) Decode(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: yaml: %v", ErrDecode, err)
	}
	return nil
}

type formCodec struct{}

func (formCodec) ContentType() string { return MediaTypeForm }

func (formCodec) Encode(v any) ([]byte, error) {
	switch form := v.(type) {
	case url.Values:
		return []byte(form.Encode()), nil
	case map[string]string:
		values := make(url.Values, len(form))
		for k, val := range form {
			values.Set(k, val)
		}
		return []byte(values.Encode()), nil
	case map[string][]string:
		return []byte(url.Values(form).Encode()), nil
	default:
		return nil, fmt.Errorf("%w: form: cannot encode %T", ErrEncode, v)
	}
}

func (formCodec) Decode(data []byte, v any) error {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return fmt.Errorf("%w: form: %v", ErrDecode, err)
	}

	switch target := v.(type) {
	case *url.Values:
		*target = values
	case *map[string][]string:
		*target = values
	case *map[string]string:
		m := make(map[string]string, len(values))
		for k := range values {
			m[k] = values.Get(k)
		}
		*target = m
	default:
		return fmt.Errorf("%w: form: cannot decode into %T", ErrDecode, v)
	}
	return nil
}
