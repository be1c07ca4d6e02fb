package signup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"enroll/internal/auth/token"
	"enroll/internal/identity"
	"enroll/internal/security/password"
)

type stubIssuer struct {
	fail bool
}

func (s stubIssuer) Issue(userID, _ string, now time.Time) (string, time.Time, error) {
	if s.fail {
		return "", time.Time{}, errors.New("signing backend down")
	}
	return "tok-" + userID, now.Add(24 * time.Hour), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(issuer TokenIssuer) (*Service, *identity.MemoryStore) {
	store := identity.NewMemoryStore()
	svc := NewService(testLogger(), store, issuer, password.DefaultConfig(), nil)
	return svc, store
}

func validRequest() Request {
	return Request{
		Email:    "dana@example.com",
		Password: "Str0ng!pass",
		FullName: "Dana Example",
	}
}

func TestRegister_Success(t *testing.T) {
	svc, store := newTestService(stubIssuer{})

	res, err := svc.Register(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.UserID == "" {
		t.Fatalf("expected assigned user id")
	}
	if res.Email != "dana@example.com" {
		t.Fatalf("unexpected email: %q", res.Email)
	}
	if res.Token != "tok-"+res.UserID {
		t.Fatalf("unexpected token: %q", res.Token)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 stored account, got %d", store.Len())
	}

	h, ok := store.PasswordHash(res.UserID)
	if !ok {
		t.Fatalf("expected stored credential")
	}
	match, err := identity.VerifyPassword("Str0ng!pass", h)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !match {
		t.Fatalf("stored hash does not verify against submitted password")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc, store := newTestService(stubIssuer{})

	cases := []Request{
		{Email: "", Password: "Str0ng!pass", FullName: "Dana Example"},
		{Email: "dana@example.com", Password: "", FullName: "Dana Example"},
		{Email: "dana@example.com", Password: "Str0ng!pass", FullName: ""},
		{Email: "   ", Password: "Str0ng!pass", FullName: "\t"},
	}

	for _, req := range cases {
		if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("request %+v: expected ErrMissingFields, got %v", req, err)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("expected no accounts created, got %d", store.Len())
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	svc, _ := newTestService(stubIssuer{})

	for _, email := range []string{"not-an-email", "dana@", "@example.com", "dana example@example.com"} {
		req := validRequest()
		req.Email = email
		if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrInvalidFields) {
			t.Fatalf("email %q: expected ErrInvalidFields, got %v", email, err)
		}
	}
}

func TestRegister_PasswordPolicy(t *testing.T) {
	svc, _ := newTestService(stubIssuer{})

	// Too short, then trivially weak.
	for _, pw := range []string{"Ab1!", "password123"} {
		req := validRequest()
		req.Password = pw
		if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrInvalidFields) {
			t.Fatalf("password %q: expected ErrInvalidFields, got %v", pw, err)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, store := newTestService(stubIssuer{})

	if _, err := svc.Register(context.Background(), validRequest()); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := svc.Register(context.Background(), validRequest())
	if !identity.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Email matching is case-insensitive.
	req := validRequest()
	req.Email = "DANA@Example.COM"
	if _, err := svc.Register(context.Background(), req); !identity.IsConflict(err) {
		t.Fatalf("expected conflict for case variant, got %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("expected single stored account, got %d", store.Len())
	}
}

func TestRegister_NoIssuer_NoAccountCreated(t *testing.T) {
	svc, store := newTestService(nil)

	_, err := svc.Register(context.Background(), validRequest())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("misconfigured pipeline must not create accounts, got %d", store.Len())
	}
}

func TestRegister_IssuerFailure(t *testing.T) {
	svc, _ := newTestService(stubIssuer{fail: true})

	_, err := svc.Register(context.Background(), validRequest())
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, ErrMissingFields) || errors.Is(err, ErrInvalidFields) || identity.IsConflict(err) {
		t.Fatalf("signing failure must surface as internal, got %v", err)
	}
}

func TestRegister_IssuedTokenVerifies(t *testing.T) {
	iss, err := token.NewIssuer("k", "enroll")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	svc, _ := newTestService(iss)

	res, err := svc.Register(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	claims, err := iss.Verify(res.Token, time.Now().UTC())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != res.UserID {
		t.Fatalf("claims user_id = %q, want %q", claims.UserID, res.UserID)
	}
	if claims.Email != res.Email {
		t.Fatalf("claims email = %q, want %q", claims.Email, res.Email)
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != 24*time.Hour {
		t.Fatalf("token validity = %v, want 24h", got)
	}

	// Identical follow-up request must conflict, not mint a second token.
	if _, err := svc.Register(context.Background(), validRequest()); !identity.IsConflict(err) {
		t.Fatalf("expected conflict on repeat, got %v", err)
	}
}

func TestRegister_OutcomeMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics(reg)
	store := identity.NewMemoryStore()
	svc := NewService(testLogger(), store, stubIssuer{}, password.DefaultConfig(), m)

	if _, err := svc.Register(context.Background(), validRequest()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(context.Background(), validRequest()); !identity.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := svc.Register(context.Background(), Request{}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	if got := testutil.ToFloat64(m.Outcomes.WithLabelValues(outcomeSuccess)); got != 1 {
		t.Fatalf("success outcome count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Outcomes.WithLabelValues(outcomeConflict)); got != 1 {
		t.Fatalf("conflict outcome count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Outcomes.WithLabelValues(outcomeRejected)); got != 1 {
		t.Fatalf("rejected outcome count = %v, want 1", got)
	}
}
