package collection

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no collection has the requested id.
	ErrNotFound = errors.New("collection not found")
	// ErrGroupNotFound is returned for an out-of-range group index.
	ErrGroupNotFound = errors.New("group not found")
	// ErrLastGroup is returned when deleting the only remaining group.
	ErrLastGroup = errors.New("cannot delete the last group")
	// ErrNoSelection is returned by operations that act on the selected
	// collection when nothing is selected.
	ErrNoSelection = errors.New("no collection selected")
	// ErrTabIndex is returned for an out-of-range stored tab index.
	ErrTabIndex = errors.New("tab index out of range")
	// ErrPersist wraps storage failures after an in-memory change was applied.
	ErrPersist = errors.New("persist collections")
)

// ValidationError reports a malformed import document or argument. Nothing
// is mutated when it is returned.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError or one of
// the precondition sentinels.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return errors.Is(err, ErrNoSelection) || errors.Is(err, ErrLastGroup)
}
