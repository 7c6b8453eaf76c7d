// Package token issues and validates the HS256 access and verification
// tokens. Access tokens are signed with the service-wide secret;
// verification tokens with the account's own verification secret.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed        = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
	ErrSigning          = errors.New("token signing failed")
)

// Claims carries sub, iss and exp only.
type Claims struct {
	jwt.RegisteredClaims
}

type Issuer struct {
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(issuer string, ttl time.Duration) *Issuer {
	return &Issuer{issuer: issuer, ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

// TTL is the lifetime shared by access and verification tokens.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a claim set for subject with key. exp = now + ttl.
func (i *Issuer) Issue(subject string, key []byte) (string, error) {
	if len(key) == 0 {
		return "", fmt.Errorf("%w: empty signing key", ErrSigning)
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.issuer,
			ExpiresAt: jwt.NewNumericDate(i.now().Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return signed, nil
}

// Verify checks the signature against key, the issuer and the expiry.
// A token whose exp equals the current second is already expired.
func (i *Issuer) Verify(raw string, key []byte) (*Claims, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: empty verification key", ErrSignatureInvalid)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformed)
	}
	return claims, nil
}

// PeekSubject decodes raw WITHOUT checking its signature and returns only
// the subject. The result is a lookup hint and must be followed by Verify
// with the subject's key before anything is trusted.
func PeekSubject(raw string) (string, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrMalformed)
	}
	return claims.Subject, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
