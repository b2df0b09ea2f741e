package app

import (
	"fmt"
	"io"
	"net/http"

	"github.com/abdul-hamid-achik/httpspec/packages/content"
)

// Write encodes v with codec and writes it with status.
func Write(w http.ResponseWriter, status int, codec content.Codec, v any) error {
	data, err := codec.Encode(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", codec.ContentType())
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

// JSON writes v as "application/json; charset=utf-8".
func JSON(w http.ResponseWriter, status int, v any) error {
	return Write(w, status, content.JSON, v)
}

// Text writes s as "text/plain; charset=utf-8".
func Text(w http.ResponseWriter, status int, s string) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, err := io.WriteString(w, s)
	return err
}

// Bind decodes the request body into v using the codec for its Content-Type.
func Bind(r *http.Request, v any) error {
	codec, err := content.ForMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	return codec.Decode(data, v)
}
