package spec

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/httpspec/packages/assertions"
)

var (
	// ErrConflictingBody is reported when a spec sets both a raw buffer and an
	// encoded body.
	ErrConflictingBody = errors.New("conflicting body sources: Buffer and Body are mutually exclusive")
	// ErrSpecConsumed is reported when a spec is executed a second time.
	ErrSpecConsumed = errors.New("spec already executed")
	// ErrNoTarget is reported when a spec has no application to run against.
	ErrNoTarget = errors.New("spec has no target application")
)

// ConfigError is a misuse of the builder detected before dispatch.
type ConfigError struct {
	Location assertions.Location
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Location, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// HookError is a pre-send hook failure. Nothing is dispatched after it.
type HookError struct {
	Location assertions.Location
	Err      error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("pre-send hook registered at %s: %v", e.Location, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
