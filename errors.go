package barrier

import "github.com/pkg/errors"

// Barrier errors. They are only ever raised as panics: a bad request is
// a defect in the caller, not a condition to recover from.
var (
	// ErrInvalidSync marks a synchronization request that can never be
	// satisfied as stated.
	ErrInvalidSync = errors.New("barrier: invalid synchronization request")

	// ErrUnsupported marks a request the target engine cannot perform,
	// such as render-backend work on a compute engine.
	ErrUnsupported = errors.New("barrier: unsupported on this engine")
)

func errInvalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidSync, format, args...)
}

func errUnsupported(format string, args ...any) error {
	return errors.Wrapf(ErrUnsupported, format, args...)
}
