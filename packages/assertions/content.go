package assertions

import (
	"fmt"
	"reflect"

	"github.com/abdul-hamid-achik/httpspec/packages/content"
	"github.com/google/go-cmp/cmp"
)

// ContentCheck decodes a response body into a concrete type and inspects it.
type ContentCheck interface {
	Decode(codec content.Codec, body []byte) (any, error)
	Check(v any) error
	Type() reflect.Type
}

type decoded[T any] struct {
	fn func(T) error
}

// Decoded builds a ContentCheck that passes the decoded value to fn.
func Decoded[T any](fn func(T)) ContentCheck {
	return decoded[T]{fn: func(v T) error {
		if fn != nil {
			fn(v)
		}
		return nil
	}}
}

// DecodedE is Decoded for callbacks that report their own failure.
func DecodedE[T any](fn func(T) error) ContentCheck {
	return decoded[T]{fn: fn}
}

// Equal builds a ContentCheck that compares the decoded value with want.
func Equal[T any](want T, opts ...cmp.Option) ContentCheck {
	return decoded[T]{fn: func(got T) error {
		if diff := cmp.Diff(want, got, opts...); diff != "" {
			return fmt.Errorf("content mismatch (-want +got):\n%s", diff)
		}
		return nil
	}}
}

func (d decoded[T]) Decode(codec content.Codec, body []byte) (any, error) {
	var v T
	if err := codec.Decode(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (d decoded[T]) Check(v any) error {
	typed, ok := v.(T)
	if v == nil && d.Type().Kind() == reflect.Interface {
		// null decodes to the nil interface
		typed, ok = *new(T), true
	}
	if !ok {
		return fmt.Errorf("decoded value has type %T, want %v", v, d.Type())
	}
	if d.fn == nil {
		return nil
	}
	return d.fn(typed)
}

func (d decoded[T]) Type() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
