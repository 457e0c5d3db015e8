package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenTTL = 12 * time.Hour

// Claims are the JWT claims embedded in a session token.
type Claims struct {
	ClockNumber string `json:"clock_number"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies signed session tokens (HS256). Tokens are
// stateless: nothing is persisted server-side, logout is client-side.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures Tokens.
type TokenOption func(*Tokens)

// WithIssuer overrides the issuer claim.
func WithIssuer(issuer string) TokenOption {
	return func(t *Tokens) {
		if v := strings.TrimSpace(issuer); v != "" {
			t.issuer = v
		}
	}
}

// WithTTL configures session token lifetime.
func WithTTL(ttl time.Duration) TokenOption {
	return func(t *Tokens) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) TokenOption {
	return func(t *Tokens) {
		if fn != nil {
			t.now = fn
		}
	}
}

// NewTokens constructs a token issuer/verifier around a shared secret.
func NewTokens(secret string, opts ...TokenOption) (*Tokens, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: token secret is required")
	}
	t := &Tokens{
		secret: []byte(secret),
		issuer: "safety-app",
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// TTL reports the configured session lifetime.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a session token for the given identity.
func (t *Tokens) Issue(identity Identity) (string, time.Time, error) {
	if strings.TrimSpace(identity.EmployeeID) == "" {
		return "", time.Time{}, errors.New("auth: employee id is required")
	}
	now := t.now().UTC()
	expiresAt := now.Add(t.ttl)
	claims := Claims{
		ClockNumber: identity.ClockNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   identity.EmployeeID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry and returns the embedded
// identity. Expired tokens report ErrExpiredToken, everything else
// that fails validation reports ErrInvalidToken.
func (t *Tokens) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now().UTC() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Issuer != t.issuer || strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		EmployeeID:  claims.Subject,
		ClockNumber: claims.ClockNumber,
	}, nil
}
