package assertions

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/abdul-hamid-achik/httpspec/packages/content"
	"github.com/abdul-hamid-achik/httpspec/packages/http"
)

type Kind int

const (
	KindStatus Kind = iota
	KindHeader
	KindContentType
	KindContent
	KindResponse
	KindJSONPath
	KindSchema
	KindBodyContains
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindHeader:
		return "header"
	case KindContentType:
		return "content-type"
	case KindContent:
		return "content"
	case KindResponse:
		return "response"
	case KindJSONPath:
		return "jsonpath"
	case KindSchema:
		return "schema"
	case KindBodyContains:
		return "body"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Location is the source position an expectation was registered from.
type Location struct {
	File string
	Line int
}

// Caller returns the location skip frames above its caller.
func Caller(skip int) Location {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Location{}
	}
	return Location{File: file, Line: line}
}

func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0
}

func (l Location) String() string {
	if l.IsZero() {
		return "???"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(l.File), l.Line)
}

// Expectation is one registered check against a response. Only the fields
// relevant to Kind are set.
type Expectation struct {
	Kind     Kind
	Location Location

	Status int

	HeaderName string
	// HeaderValues nil means presence only.
	HeaderValues []string

	MediaType string

	Content ContentCheck
	Codec   content.Codec

	Inspect func(*http.Response) error

	Path  string
	Value any

	Schema string

	Substring string
}

// At sets the registration location.
func (e *Expectation) At(loc Location) *Expectation {
	e.Location = loc
	return e
}

func Status(code int) *Expectation {
	return &Expectation{Kind: KindStatus, Status: code}
}

// Header expects the header to be present; with values, its full value list
// must match exactly.
func Header(name string, values ...string) *Expectation {
	e := &Expectation{Kind: KindHeader, HeaderName: name}
	if len(values) > 0 {
		e.HeaderValues = append([]string(nil), values...)
	}
	return e
}

func ContentType(mediaType string) *Expectation {
	return &Expectation{Kind: KindContentType, MediaType: mediaType}
}

func Content(check ContentCheck) *Expectation {
	return &Expectation{Kind: KindContent, Content: check}
}

func Response(fn func(*http.Response) error) *Expectation {
	return &Expectation{Kind: KindResponse, Inspect: fn}
}

// JSONPath expects the value at path to equal value. A nil value only checks
// that the path exists.
func JSONPath(path string, value any) *Expectation {
	return &Expectation{Kind: KindJSONPath, Path: path, Value: value}
}

// Schema validates the body against an inline JSON schema or a schema file.
func Schema(schema string) *Expectation {
	return &Expectation{Kind: KindSchema, Schema: schema}
}

func BodyContains(s string) *Expectation {
	return &Expectation{Kind: KindBodyContains, Substring: s}
}
