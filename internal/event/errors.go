package event

import "errors"

// Sentinel errors for event log operations. Callers use errors.Is to
// distinguish validation failures from storage faults.
var (
	// ErrInvalidCategory indicates an unknown event category.
	ErrInvalidCategory = errors.New("event: invalid category")

	// ErrStorage indicates the underlying store failed.
	ErrStorage = errors.New("event: storage failure")
)
