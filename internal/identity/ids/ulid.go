// Package ids assigns account identifiers.
package ids

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULID mints a 26-character ULID for the given time using crypto/rand
// entropy. ULIDs sort lexicographically by creation time, which keeps
// primary-key indexes append-mostly.
func NewULID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
