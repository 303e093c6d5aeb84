package port

import "errors"

// Settlement error taxonomy. Handlers map these onto transport status codes;
// anything not in this list is treated as an internal storage or provider
// failure and is retryable because no side effect was committed.
var (
	// ErrUnauthorized means the actor lacks administrator capability.
	ErrUnauthorized = errors.New("actor lacks required capability")
	// ErrInvalidInput means a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound means the campaign does not exist.
	ErrNotFound = errors.New("campaign not found")
	// ErrInvalidState means the campaign is not in the status required for
	// the requested transition, including repeat invocations after a
	// settlement already succeeded.
	ErrInvalidState = errors.New("campaign is not in the required state")
)
