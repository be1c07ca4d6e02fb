package identity

import (
	"context"
	"time"
)

// User is the canonical registered account record.
type User struct {
	ID        string
	Email     string
	EmailNorm string
	FullName  string

	CreatedAt time.Time
}

// CreateUserInput describes an account registration request.
// Password is hashed by the store; the plain password is never persisted.
type CreateUserInput struct {
	Email    string
	FullName string
	Password string
	Now      time.Time
}

// Store is the account persistence boundary.
//
// Uniqueness contract:
//   - At most one User exists per normalized email.
//   - CreateUser MUST enforce this atomically and return a ConflictError on
//     violation; callers may treat a prior FindByEmail only as a fast path.
type Store interface {
	// FindByEmail returns the user for a (normalized) email, or a
	// NotFoundError when no such account exists.
	FindByEmail(ctx context.Context, email string) (User, error)

	// CreateUser persists a new account with a hashed password credential
	// and returns the stored record with its assigned id.
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
}
