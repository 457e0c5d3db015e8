package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokensIssueAndVerify(t *testing.T) {
	tokens, err := NewTokens("test-secret", WithIssuer("test-issuer"), WithTTL(30*time.Minute))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	signed, expiresAt, err := tokens.Issue(Identity{EmployeeID: "emp-42", ClockNumber: "1024"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiration, got %v", expiresAt)
	}

	identity, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.EmployeeID != "emp-42" {
		t.Fatalf("unexpected employee id: %s", identity.EmployeeID)
	}
	if identity.ClockNumber != "1024" {
		t.Fatalf("unexpected clock number: %s", identity.ClockNumber)
	}
}

func TestTokensRejectsMissingToken(t *testing.T) {
	tokens, err := NewTokens("test-secret")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	if _, err := tokens.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if _, err := tokens.Verify("   "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken for blank token, got %v", err)
	}
}

func TestTokensRejectsForeignSecret(t *testing.T) {
	issuer, err := NewTokens("secret-a")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	verifier, err := NewTokens("secret-b")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	signed, _, err := issuer.Issue(Identity{EmployeeID: "emp-1", ClockNumber: "77"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokensRejectsExpired(t *testing.T) {
	issued := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	clock := issued
	tokens, err := NewTokens("test-secret", WithTTL(time.Minute), WithClock(func() time.Time { return clock }))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	signed, _, err := tokens.Issue(Identity{EmployeeID: "emp-1", ClockNumber: "77"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clock = issued.Add(30 * time.Second)
	if _, err := tokens.Verify(signed); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	clock = issued.Add(2 * time.Minute)
	if _, err := tokens.Verify(signed); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestTokensRejectsWrongIssuer(t *testing.T) {
	a, err := NewTokens("shared-secret", WithIssuer("service-a"))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	b, err := NewTokens("shared-secret", WithIssuer("service-b"))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	signed, _, err := a.Issue(Identity{EmployeeID: "emp-1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign issuer, got %v", err)
	}
}
