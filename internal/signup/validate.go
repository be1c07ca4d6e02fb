package signup

import (
	"strings"

	"github.com/asaskevich/govalidator"

	"enroll/internal/security/password"
)

const maxEmailLen = 255

// validateRequest is the validation gate: presence first, then format.
// It is pure; the password is never trimmed (whitespace is significant).
func validateRequest(req Request, policy password.Config) error {
	email := strings.TrimSpace(req.Email)
	fullName := strings.TrimSpace(req.FullName)

	if email == "" || req.Password == "" || fullName == "" {
		return ErrMissingFields
	}

	if len(email) > maxEmailLen || !govalidator.IsEmail(email) {
		return ErrInvalidFields
	}
	if err := policy.Validate(req.Password); err != nil {
		return ErrInvalidFields
	}

	return nil
}
