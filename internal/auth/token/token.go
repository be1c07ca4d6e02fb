// Package token issues the signed bearer token returned on successful
// registration. Tokens are stateless: nothing is persisted, and validity is
// determined entirely by signature and expiry at verification time.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Validity is the fixed lifetime of an issued token: exactly one day.
// There is no refresh or revocation path for these tokens.
const Validity = 24 * time.Hour

// Claims is the minimal identity envelope bound into an issued token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs identity claims with an HMAC-SHA256 secret.
//
// The secret is loaded once at process start and treated as immutable;
// Issuer is safe for unsynchronized concurrent use.
type Issuer struct {
	secret []byte
	issuer string
}

// NewIssuer constructs an Issuer. An empty secret is rejected so a
// misconfigured deployment can never mint unverifiable tokens.
func NewIssuer(secret, issuer string) (*Issuer, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// Issue signs a token binding {user_id, email}, valid from now until
// now + Validity.
func (i *Issuer) Issue(userID, email string, now time.Time) (string, time.Time, error) {
	if i == nil || len(i.secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	exp := now.Add(Validity)
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses and validates a token, returning its claims.
// Only HMAC-signed tokens are accepted; algorithm confusion is rejected.
func (i *Issuer) Verify(tokenStr string, now time.Time) (Claims, error) {
	if i == nil || len(i.secret) == 0 {
		return Claims{}, ErrNoSecret
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if i.issuer != "" {
		options = append(options, jwt.WithIssuer(i.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, options...)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.UserID == "" || claims.Email == "" {
		return Claims{}, ErrInvalidToken
	}

	return *claims, nil
}
