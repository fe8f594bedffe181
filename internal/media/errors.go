package media

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnreadable matches every ProbeError via errors.Is.
var ErrUnreadable = errors.New("resource unreadable")

// ProbeKind names the metadata a probe was looking for.
type ProbeKind string

const (
	ProbeAudio ProbeKind = "audio"
	ProbeImage ProbeKind = "image"
	ProbeVideo ProbeKind = "video"
)

// ProbeError reports a failed metadata lookup. Probe errors are never cached.
type ProbeError struct {
	Kind    ProbeKind
	Locator string
	Err     error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s probe %s: %v", e.Kind, e.Locator, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

func (e *ProbeError) Is(target error) bool {
	return target == ErrUnreadable
}

func probeError(kind ProbeKind, loc string, err error) error {
	var pe *ProbeError
	if errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ProbeError{Kind: kind, Locator: loc, Err: err}
}
