// Package identity owns registered accounts: the store contract, the
// error-kind taxonomy, email normalization, id assignment, and the
// password credential surface.
//
// security/password is the source of truth for Argon2id parameters and
// the strength policy; this file keeps a baseline of min length 8 and
// honors a stricter env policy, never a weaker one.
package identity

import (
	"errors"

	"enroll/internal/security/password"
)

// HashPassword returns a PHC-style Argon2id hash string for a password
// that already passed the registration policy.
func HashPassword(passwordPlain string) (string, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		// Treat invalid env as an operational error, not a weak fallback.
		return "", err
	}

	if cfg.Policy.MinLength < 8 {
		cfg.Policy.MinLength = 8
	}
	if cfg.Policy.MaxLength <= 0 {
		cfg.Policy.MaxLength = 256
	}

	enc, err := cfg.Hash(passwordPlain)
	if err != nil {
		// Use errors.Is (not equality) to remain correct if security/password wraps errors.
		switch {
		case errors.Is(err, password.ErrPasswordTooShort):
			return "", errors.New("password too short")
		case errors.Is(err, password.ErrPasswordTooLong):
			return "", errors.New("password too long")
		case errors.Is(err, password.ErrWeakPassword):
			return "", errors.New("weak password")
		default:
			return "", err
		}
	}

	return enc, nil
}

// VerifyPassword checks a password against a PHC Argon2id hash.
func VerifyPassword(passwordPlain string, encodedPHC string) (bool, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		return false, err
	}

	if cfg.Policy.MinLength < 8 {
		cfg.Policy.MinLength = 8
	}
	if cfg.Policy.MaxLength <= 0 {
		cfg.Policy.MaxLength = 256
	}

	ok, err := cfg.Verify(encodedPHC, passwordPlain)
	if err != nil {
		if errors.Is(err, password.ErrInvalidHash) {
			return false, errors.New("invalid argon2id hash format")
		}
		return false, err
	}
	return ok, nil
}
