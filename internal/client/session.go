package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MajesticSpiral/safety-app/internal/records"
)

// State is the session lifecycle state.
type State int

const (
	// LoggedOut means no token is held; record calls are refused
	// locally without touching the network.
	LoggedOut State = iota
	// LoggedIn means a token is held and record calls are forwarded.
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged-in"
	}
	return "logged-out"
}

// ErrLoggedOut is returned by record calls made without a session.
var ErrLoggedOut = errors.New("session: not logged in")

// Session owns the token for one user of the API. All token state
// lives here: the underlying Client stays stateless, and callers
// navigate by the redirect targets the session hands back.
type Session struct {
	api *Client

	mu          sync.Mutex
	state       State
	token       string
	expiresAt   time.Time
	clockNumber string

	homeTarget  string
	loginTarget string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRedirects overrides the navigation targets returned on login
// and logout.
func WithRedirects(home, login string) SessionOption {
	return func(s *Session) {
		if home != "" {
			s.homeTarget = home
		}
		if login != "" {
			s.loginTarget = login
		}
	}
}

// NewSession returns a logged-out session over api.
func NewSession(api *Client, opts ...SessionOption) *Session {
	s := &Session{
		api:         api,
		state:       LoggedOut,
		homeTarget:  "/home",
		loginTarget: "/login",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ClockNumber returns the clock number the session authenticated
// with, empty when logged out.
func (s *Session) ClockNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clockNumber
}

// ExpiresAt returns the token expiry, zero when logged out.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// LogIn authenticates and, on success, transitions to LoggedIn and
// returns the home redirect target. On failure the session stays (or
// becomes) LoggedOut and holds no token.
func (s *Session) LogIn(ctx context.Context, clockNumber, password string) (string, error) {
	creds, err := s.api.Authenticate(ctx, clockNumber, password)
	if err != nil {
		s.clear()
		return "", err
	}

	s.mu.Lock()
	s.state = LoggedIn
	s.token = creds.Token
	s.expiresAt = creds.ExpiresAt
	s.clockNumber = clockNumber
	s.mu.Unlock()

	return s.homeTarget, nil
}

// LogOut discards all session state and returns the login redirect
// target. Logging out while logged out is a no-op.
func (s *Session) LogOut() string {
	s.clear()
	return s.loginTarget
}

// Guard reports where an unauthenticated caller should be sent. It
// returns ("", true) when the session is logged in, and the login
// target with false otherwise.
func (s *Session) Guard() (string, bool) {
	if s.State() == LoggedIn {
		return "", true
	}
	return s.loginTarget, false
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = LoggedOut
	s.token = ""
	s.expiresAt = time.Time{}
	s.clockNumber = ""
}

// currentToken snapshots the token, failing when logged out.
func (s *Session) currentToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != LoggedIn {
		return "", ErrLoggedOut
	}
	return s.token, nil
}

// check drops the session when the server no longer honors the token,
// so the next Guard call redirects to login.
func (s *Session) check(err error) error {
	if IsUnauthorized(err) {
		s.clear()
	}
	return err
}

// Issues lists the issues visible to the session's owner.
func (s *Session) Issues(ctx context.Context) ([]records.Issue, error) {
	token, err := s.currentToken()
	if err != nil {
		return nil, err
	}
	out, err := s.api.ListIssues(ctx, token)
	return out, s.check(err)
}

// AddIssue reports an issue as the session's owner.
func (s *Session) AddIssue(ctx context.Context, draft records.IssueDraft) (Created, error) {
	token, err := s.currentToken()
	if err != nil {
		return Created{}, err
	}
	out, err := s.api.AddIssue(ctx, token, draft)
	return out, s.check(err)
}

// IssuePhotos fetches an issue's photos.
func (s *Session) IssuePhotos(ctx context.Context, issueID string) ([][]byte, error) {
	token, err := s.currentToken()
	if err != nil {
		return nil, err
	}
	out, err := s.api.IssuePhotos(ctx, token, issueID)
	return out, s.check(err)
}

// Actions lists the corrective actions visible to the session's owner.
func (s *Session) Actions(ctx context.Context) ([]records.Action, error) {
	token, err := s.currentToken()
	if err != nil {
		return nil, err
	}
	out, err := s.api.ListActions(ctx, token)
	return out, s.check(err)
}

// AddAction records a corrective action as the session's owner.
func (s *Session) AddAction(ctx context.Context, draft records.ActionDraft) (Created, error) {
	token, err := s.currentToken()
	if err != nil {
		return Created{}, err
	}
	out, err := s.api.AddAction(ctx, token, draft)
	return out, s.check(err)
}

// Inspections lists the inspection submissions visible to the
// session's owner.
func (s *Session) Inspections(ctx context.Context) ([]records.InspectionSubmission, error) {
	token, err := s.currentToken()
	if err != nil {
		return nil, err
	}
	out, err := s.api.ListInspections(ctx, token)
	return out, s.check(err)
}

// AddInspection submits a completed inspection as the session's owner.
func (s *Session) AddInspection(ctx context.Context, draft records.InspectionDraft) (Created, error) {
	token, err := s.currentToken()
	if err != nil {
		return Created{}, err
	}
	out, err := s.api.AddInspection(ctx, token, draft)
	return out, s.check(err)
}

// Employees lists the employee directory.
func (s *Session) Employees(ctx context.Context) ([]Employee, error) {
	token, err := s.currentToken()
	if err != nil {
		return nil, err
	}
	out, err := s.api.Employees(ctx, token)
	return out, s.check(err)
}
