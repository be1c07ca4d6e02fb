package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a dev/test fallback when DB is not configured.
// It enforces the same uniqueness invariant as the Postgres store:
// at most one account per normalized email, checked atomically under lock.
type MemoryStore struct {
	mu      sync.Mutex
	byEmail map[string]User   // email_norm -> user
	creds   map[string]string // user id -> password hash
}

// NewMemoryStore constructs an in-memory Store implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byEmail: make(map[string]User),
		creds:   make(map[string]string),
	}
}

// FindByEmail returns the account for a normalized email, or a NotFoundError.
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.FindByEmail"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	norm := NormalizeEmail(email)
	if norm == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[norm]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return u, nil
}

// CreateUser persists a new account, rejecting duplicate normalized emails.
func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)

	if email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if fullName == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "full name is required"}
	}
	if strings.TrimSpace(in.Password) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	norm := NormalizeEmail(email)

	// Hash outside the lock; argon2 is deliberately slow.
	pwHash, err := HashPassword(in.Password)
	if err != nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	userID, err := NewULID(now)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[norm]; exists {
		return User{}, ConflictError{Op: op, Field: "email"}
	}

	u := User{
		ID:        userID,
		Email:     email,
		EmailNorm: norm,
		FullName:  fullName,
		CreatedAt: now,
	}
	s.byEmail[norm] = u
	s.creds[userID] = pwHash

	return u, nil
}

// PasswordHash returns the stored credential for a user id (test helper).
func (s *MemoryStore) PasswordHash(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.creds[userID]
	return h, ok
}

// Len reports the number of stored accounts (test helper).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byEmail)
}
