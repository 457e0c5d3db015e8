package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// dummyHash keeps the bcrypt cost on the unknown-clock-number path so
// response timing does not reveal whether the clock number exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service verifies credentials against the employee store and issues
// session tokens.
type Service struct {
	store  EmployeeStore
	tokens *Tokens
}

// NewService wires the credential store to the token issuer.
func NewService(store EmployeeStore, tokens *Tokens) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: employee store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token issuer is required")
	}
	return &Service{store: store, tokens: tokens}, nil
}

// Authenticate checks a clock-number/password pair and returns a signed
// session token. The clock number matches case-insensitively. Unknown
// clock number and wrong password both fail with ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, clockNumber, password string) (string, time.Time, error) {
	clockNumber = strings.TrimSpace(clockNumber)
	if clockNumber == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}

	emp, err := s.store.FindByClockNumber(ctx, clockNumber)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = VerifyPassword(dummyHash, password)
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}

	if err := VerifyPassword(emp.PasswordHash, password); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	return s.tokens.Issue(Identity{
		EmployeeID:  emp.ID,
		ClockNumber: emp.ClockNumber,
	})
}

// Resolve looks up the full employee record for a verified identity.
func (s *Service) Resolve(ctx context.Context, identity Identity) (*Employee, error) {
	return s.store.Find(ctx, identity.EmployeeID)
}

// Verify validates a bearer token and returns the embedded identity.
func (s *Service) Verify(token string) (Identity, error) {
	return s.tokens.Verify(token)
}

// TokenTTL reports the configured session lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
