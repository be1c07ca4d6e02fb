package token

import "errors"

var (
	// ErrNoSecret reports a missing or empty signing secret.
	ErrNoSecret = errors.New("signing secret is required")
	// ErrInvalidToken reports a token that failed signature, shape, or time validation.
	ErrInvalidToken = errors.New("invalid token")
)
