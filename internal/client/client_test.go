package client

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MajesticSpiral/safety-app/internal/auth"
	"github.com/MajesticSpiral/safety-app/internal/httpapi"
	"github.com/MajesticSpiral/safety-app/internal/records"
	"github.com/MajesticSpiral/safety-app/internal/stream"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()

	hash, err := auth.HashPassword("pass1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	employees := auth.NewMemoryEmployees(
		auth.Employee{ID: "emp-a", ClockNumber: "1024", PasswordHash: hash, FirstName: "Dana", LastName: "Reyes"},
	)
	tokens, err := auth.NewTokens("client-test-secret", auth.WithTTL(time.Hour))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	authSvc, err := auth.NewService(employees, tokens)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{}, "test", authSvc, employees,
		records.NewInMemory(employees, records.VisibilityAll), stream.New(),
		httpapi.WithRateLimit(1000, 1000))

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return New(srv.URL, WithHTTPClient(srv.Client()))
}

func TestAuthenticateAndListRoundTrip(t *testing.T) {
	api := newTestServer(t)
	ctx := context.Background()

	creds, err := api.Authenticate(ctx, "1024", "pass1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if creds.Token == "" || creds.ExpiresAt.Before(time.Now()) {
		t.Fatalf("bad credentials: %+v", creds)
	}

	created, err := api.AddIssue(ctx, creds.Token, records.IssueDraft{
		IssueName:   "Spill",
		Description: "Oil on floor 2",
		Status:      "Open",
		Photos:      [][]byte{{0xde, 0xad, 0xbe, 0xef}},
	})
	if err != nil {
		t.Fatalf("AddIssue: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("no id returned: %+v", created)
	}

	issues, err := api.ListIssues(ctx, creds.Token)
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}
	if len(issues) != 1 || issues[0].IssueName != "Spill" || issues[0].PhotoCount != 1 {
		t.Fatalf("unexpected issues: %+v", issues)
	}

	photos, err := api.IssuePhotos(ctx, creds.Token, created.ID)
	if err != nil {
		t.Fatalf("IssuePhotos: %v", err)
	}
	if len(photos) != 1 || !bytes.Equal(photos[0], []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Fatalf("photo bytes lost: %+v", photos)
	}
}

func TestAuthenticateSurfacesAPIError(t *testing.T) {
	api := newTestServer(t)

	_, err := api.Authenticate(context.Background(), "1024", "wrong")
	if !IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "invalid clock number or password" {
		t.Fatalf("unexpected error detail: %v", err)
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	api := newTestServer(t)
	ctx := context.Background()

	creds, err := api.Authenticate(ctx, "1024", "pass1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	_, err = api.AddAction(ctx, creds.Token, records.ActionDraft{ActionName: "Fix"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 400 {
		t.Fatalf("expected a 400, got %v", err)
	}
}

func TestSessionStateMachine(t *testing.T) {
	api := newTestServer(t)
	session := NewSession(api, WithRedirects("/tabs/issues", "/login"))
	ctx := context.Background()

	if session.State() != LoggedOut {
		t.Fatalf("fresh session must be logged out")
	}
	if target, ok := session.Guard(); ok || target != "/login" {
		t.Fatalf("guard should redirect to login, got (%q, %v)", target, ok)
	}
	if _, err := session.Issues(ctx); !errors.Is(err, ErrLoggedOut) {
		t.Fatalf("expected ErrLoggedOut, got %v", err)
	}

	if _, err := session.LogIn(ctx, "1024", "wrong"); err == nil {
		t.Fatal("bad password must fail")
	}
	if session.State() != LoggedOut {
		t.Fatalf("failed login must leave the session logged out")
	}

	target, err := session.LogIn(ctx, "1024", "pass1")
	if err != nil {
		t.Fatalf("LogIn: %v", err)
	}
	if target != "/tabs/issues" {
		t.Fatalf("unexpected home target: %q", target)
	}
	if session.State() != LoggedIn || session.ClockNumber() != "1024" {
		t.Fatalf("session not established: state=%v clock=%q", session.State(), session.ClockNumber())
	}
	if redirect, ok := session.Guard(); !ok || redirect != "" {
		t.Fatalf("guard should pass when logged in")
	}

	if _, err := session.AddInspection(ctx, records.InspectionDraft{
		TemplateName: "Forklift Daily",
		Items:        []records.QAPair{{Question: "Horn works?", Answer: "Yes"}},
	}); err != nil {
		t.Fatalf("AddInspection: %v", err)
	}
	subs, err := session.Inspections(ctx)
	if err != nil || len(subs) != 1 {
		t.Fatalf("Inspections: %v (%d)", err, len(subs))
	}

	if target := session.LogOut(); target != "/login" {
		t.Fatalf("unexpected login target: %q", target)
	}
	if session.State() != LoggedOut || session.ClockNumber() != "" {
		t.Fatalf("logout must clear all state")
	}
	if _, err := session.Issues(ctx); !errors.Is(err, ErrLoggedOut) {
		t.Fatalf("record calls after logout must fail locally, got %v", err)
	}
}

func TestSessionDropsOnServerRejection(t *testing.T) {
	api := newTestServer(t)
	session := NewSession(api)
	ctx := context.Background()

	if _, err := session.LogIn(ctx, "1024", "pass1"); err != nil {
		t.Fatalf("LogIn: %v", err)
	}

	// Corrupt the token behind the session's back; the next call is
	// rejected by the server and must flip the session to LoggedOut.
	session.mu.Lock()
	session.token = session.token + "tampered"
	session.mu.Unlock()

	if _, err := session.Issues(ctx); !IsUnauthorized(err) {
		t.Fatalf("expected a 401, got %v", err)
	}
	if session.State() != LoggedOut {
		t.Fatalf("rejected token must log the session out")
	}
	if target, ok := session.Guard(); ok || target != "/login" {
		t.Fatalf("guard should redirect after rejection, got (%q, %v)", target, ok)
	}
}
