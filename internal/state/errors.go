package state

import "errors"

// Domain errors for the state package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, state.ErrInvalidReading) {
//	    // handle validation failure (HTTP 400)
//	}
var (
	// ErrInvalidReading is returned when a sensor reading is missing a
	// required field or carries a non-numeric value.
	ErrInvalidReading = errors.New("state: invalid sensor reading")

	// ErrStorage is returned when the durable snapshot mirror fails.
	ErrStorage = errors.New("state: storage failure")
)
