// Package authtoken implements the optional JWT bearer hardening for the
// admin HTTP server's write endpoints (SPEC_FULL.md §4 domain stack: the
// UDS channel's default trust model is the connecting peer's file
// permissions; this is strictly an opt-in additional check for HTTP).
package authtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingToken is returned when a write endpoint requires a token and
// none was presented.
var ErrMissingToken = errors.New("authtoken: missing bearer token")

// Verifier checks bearer tokens signed with a shared HMAC secret.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier builds a Verifier. An empty secret disables verification
// entirely (Verify always succeeds) — this is the default, file-permission
// trust model; a non-empty secret is the opt-in hardening path.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Enabled reports whether a secret was configured.
func (v *Verifier) Enabled() bool { return len(v.secret) > 0 }

// Verify parses and validates tokenString, checking signature and
// expiration. It is a no-op success when the verifier is disabled.
func (v *Verifier) Verify(tokenString string) error {
	if !v.Enabled() {
		return nil
	}
	if tokenString == "" {
		return ErrMissingToken
	}

	_, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("authtoken: unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("authtoken: verify: %w", err)
	}
	return nil
}

// Issue mints a short-lived bearer token for the given subject, used by
// operator tooling and tests that need to exercise the hardened path.
func (v *Verifier) Issue(subject string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
