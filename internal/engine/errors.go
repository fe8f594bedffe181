package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig matches every *ConfigError.
	ErrInvalidConfig = errors.New("invalid canvas configuration")

	// ErrNotBuilt is reported through the warning observer when an operation
	// that needs a surface runs before Build or after Dispose.
	ErrNotBuilt = errors.New("surface is not built")

	ErrMissingTarget = errors.New("surface target is required")
)

// ConfigError describes a rejected Build input. Build returns it before any
// state is touched.
type ConfigError struct {
	// Field names the offending CanvasProps field.
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("canvas config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// IsConfigError reports whether err carries a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
