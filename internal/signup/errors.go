package signup

import "errors"

// Sentinel errors for the registration pipeline (stable for errors.Is and
// for mapping to API status codes). Conflicts and store faults surface as
// identity errors; everything here is pipeline-local.
var (
	// ErrMissingFields reports that email, password, or full name was absent.
	ErrMissingFields = errors.New("email, password and full name are required")
	// ErrInvalidFields reports a malformed email or a password failing policy.
	ErrInvalidFields = errors.New("invalid email or password")
	// ErrNotConfigured reports that the token signing secret is not set.
	// This is a deployment fault, never recoverable by the caller.
	ErrNotConfigured = errors.New("token signing secret not configured")
)
