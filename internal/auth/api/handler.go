// Package authapi wires the registration pipeline to HTTP.
//
// It is the outcome classifier boundary: every pipeline failure is
// translated here into the caller-visible envelope and status code, and
// no error crosses into the transport layer unclassified.
package authapi

import (
	"errors"
	"log/slog"
	"net/http"

	"enroll/internal/identity"
	"enroll/internal/signup"
)

// Caller-visible messages. Internal failure detail is logged, never echoed.
//
// Duplicate registrations keep the historical "Unauthorized" wording and
// the 401 status for wire compatibility, even though the error is modeled
// internally as a conflict.
const (
	msgMissingFields = "Email or password or Name must be provided"
	msgInvalidFields = "Invalid email or password or Name"
	msgUserExists    = "Unauthorized: User already exists"
	msgInternal      = "Internal Server Error"
)

// Handler serves the registration endpoint.
type Handler struct {
	log    *slog.Logger
	cfg    Config
	signup *signup.Service
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, svc *signup.Service) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if svc == nil {
		return nil, errors.New("authapi: nil signup service")
	}
	return &Handler{
		log:    log,
		cfg:    cfg,
		signup: svc,
	}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/signup", h.handleSignup)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req signupRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	res, err := h.signup.Register(r.Context(), signup.Request{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		switch {
		case errors.Is(err, signup.ErrMissingFields):
			writeFailure(w, http.StatusBadRequest, msgMissingFields)
		case errors.Is(err, signup.ErrInvalidFields), identity.IsInvalidInput(err):
			writeFailure(w, http.StatusBadRequest, msgInvalidFields)
		case identity.IsConflict(err):
			writeFailure(w, http.StatusUnauthorized, msgUserExists)
		case errors.Is(err, signup.ErrNotConfigured):
			h.log.Error("signup.misconfigured", "err", err)
			writeFailure(w, http.StatusInternalServerError, msgInternal)
		default:
			h.log.Error("signup.fail", "err", err)
			writeFailure(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	writeSuccess(w, res.Token)
}
