package password

import "errors"

// Sentinel errors surfaced to callers. Compare with errors.Is.
var (
	ErrPasswordTooShort = errors.New("password shorter than policy minimum")
	ErrPasswordTooLong  = errors.New("password longer than policy maximum")
	ErrWeakPassword     = errors.New("password is too weak")
	ErrInvalidHash      = errors.New("malformed password hash")
)
