// Package errs defines the error kinds shared by the lensdata pipeline.
//
// A *SkipError marks a single input file that could not contribute rows
// (bad encoding, empty file, no header, no data). Callers log it and keep
// going. A *ConfigError aborts a run before any output is written.
package errs

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrSkipped matches every *SkipError via errors.Is.
var ErrSkipped = errors.New("file skipped")

// SkipError reports a file-level skip.
type SkipError struct {
	Path   string
	Reason string
	Err    error
}

func (e *SkipError) Error() string {
	if e == nil {
		return "skipped"
	}
	name := filepath.Base(e.Path)
	if e.Err != nil {
		return fmt.Sprintf("skipping %s: %s: %v", name, e.Reason, e.Err)
	}
	return fmt.Sprintf("skipping %s: %s", name, e.Reason)
}

func (e *SkipError) Unwrap() error { return e.Err }

// Is reports true for ErrSkipped so callers need not type-assert.
func (e *SkipError) Is(target error) bool { return target == ErrSkipped }

// NewSkip builds a SkipError. err may be nil.
func NewSkip(path, reason string, err error) *SkipError {
	return &SkipError{Path: path, Reason: reason, Err: err}
}

// AsSkip unwraps err into a *SkipError when possible.
func AsSkip(err error) (*SkipError, bool) {
	var se *SkipError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ConfigError indicates an invalid or unresolvable run configuration.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Msg
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Msg)
}

// NewConfig formats a ConfigError for the given field.
func NewConfig(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// IsConfig reports whether err is (or wraps) a *ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
