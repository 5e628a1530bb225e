package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrManifest marks fatal input errors: the run aborts.
	ErrManifest = errors.New("manifest unreadable")
	// ErrTemporary marks transient per-document failures that degrade to
	// a fallback result without stopping the run.
	ErrTemporary = errors.New("temporary failure")
	// ErrInvalidRecord marks registrations that fail store-level checks.
	ErrInvalidRecord = errors.New("invalid record")

	ErrRegistrationNotFound = errors.New("registration not found")

	errNegativeCompensation = errors.New("total_compensation is negative")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

func errMissingField(name string) error {
	return fmt.Errorf("missing required field %s", name)
}

func errBadStatus(status string) error {
	return fmt.Errorf("unknown status %q", status)
}
