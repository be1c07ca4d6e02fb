package password

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validate checks the registration strength policy. Pure; never mutates
// or logs the input.
func (c Config) Validate(password string) error {
	// Length is measured in runes so multi-byte characters count once.
	n := utf8.RuneCountInString(password)

	switch {
	case n < c.Policy.MinLength:
		return ErrPasswordTooShort
	case n > c.Policy.MaxLength:
		return ErrPasswordTooLong
	}

	if c.Policy.RejectVeryWeak && looksVeryWeak(password) {
		return ErrWeakPassword
	}

	return nil
}

// trivialPasswords are rejected outright when weak-rejection is enabled.
// Deliberately tiny; this is not a zxcvbn-style strength estimator.
var trivialPasswords = map[string]struct{}{
	"password":    {},
	"password123": {},
	"123456":      {},
	"123456789":   {},
	"qwerty":      {},
	"qwerty123":   {},
	"11111111":    {},
}

func looksVeryWeak(pw string) bool {
	s := strings.TrimSpace(pw)
	if s == "" {
		return true
	}

	distinct := make(map[rune]struct{}, 8)
	digitsOnly := true
	for _, r := range s {
		distinct[r] = struct{}{}
		if !unicode.IsDigit(r) {
			digitsOnly = false
		}
	}

	// A single repeated character carries no entropy regardless of length.
	if len(distinct) == 1 {
		return true
	}

	// Short all-digit strings are PIN-like.
	if digitsOnly && utf8.RuneCountInString(s) < 12 {
		return true
	}

	_, trivial := trivialPasswords[strings.ToLower(s)]
	return trivial
}
