// Package signup implements the registration pipeline: validate the
// submitted identity fields, reject duplicate accounts, persist the new
// account, and mint a signed bearer token proving the caller's identity.
//
// The pipeline is a single synchronous sequence with no retries; every
// failure maps to exactly one of a closed set of error kinds, translated
// to a caller-visible status at the HTTP boundary (internal/auth/api).
package signup

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"enroll/internal/identity"
	"enroll/internal/security/password"
)

// TokenIssuer mints the signed, time-bound token returned on success.
type TokenIssuer interface {
	Issue(userID, email string, now time.Time) (token string, exp time.Time, err error)
}

// Request carries the three submitted registration fields.
type Request struct {
	Email    string
	Password string
	FullName string
}

// Result is the successful outcome: the stored account's identity plus
// its freshly minted token.
type Result struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Service runs the registration pipeline against an account store and a
// token issuer. A nil issuer means the signing secret was absent at
// startup; every request then fails with ErrNotConfigured before any
// side effect.
type Service struct {
	log     *slog.Logger
	store   identity.Store
	tokens  TokenIssuer
	policy  password.Config
	metrics *Metrics
}

// NewService constructs the pipeline. tokens may be nil (unconfigured
// secret); metrics may be nil (no-op).
func NewService(log *slog.Logger, store identity.Store, tokens TokenIssuer, policy password.Config, metrics *Metrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		log:     log,
		store:   store,
		tokens:  tokens,
		policy:  policy,
		metrics: metrics,
	}
}

// Register runs one registration request through the pipeline:
// validate -> lookup -> secret check -> create -> issue token.
func (s *Service) Register(ctx context.Context, req Request) (Result, error) {
	const op = "signup.Register"

	now := time.Now().UTC()

	if err := validateRequest(req, s.policy); err != nil {
		s.metrics.count(outcomeRejected)
		return Result{}, err
	}

	email := strings.TrimSpace(req.Email)
	fullName := strings.TrimSpace(req.FullName)

	_, err := s.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.metrics.count(outcomeConflict)
		return Result{}, identity.ConflictError{Op: op, Field: "email"}
	case !identity.IsNotFound(err):
		s.metrics.count(outcomeInternal)
		return Result{}, err
	}

	// The signing secret must be known before any side effect: a
	// misconfigured deployment must not create accounts it cannot vouch for.
	if s.tokens == nil {
		s.metrics.count(outcomeMisconfigured)
		return Result{}, ErrNotConfigured
	}

	user, err := s.store.CreateUser(ctx, identity.CreateUserInput{
		Email:    email,
		FullName: fullName,
		Password: req.Password,
		Now:      now,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			// Lost the check-then-act race to a concurrent registration.
			// The store's uniqueness constraint is the authoritative signal.
			s.metrics.count(outcomeConflict)
		case identity.IsInvalidInput(err):
			s.metrics.count(outcomeRejected)
		default:
			s.metrics.count(outcomeInternal)
		}
		return Result{}, err
	}

	tok, exp, err := s.tokens.Issue(user.ID, user.Email, now)
	if err != nil {
		s.metrics.count(outcomeInternal)
		return Result{}, err
	}

	s.metrics.count(outcomeSuccess)
	s.log.Info("signup.success", "user_id", user.ID)

	return Result{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     tok,
		ExpiresAt: exp,
	}, nil
}
