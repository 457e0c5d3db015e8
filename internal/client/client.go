// Package client is the Go SDK for the safety API. Client wraps the
// HTTP surface; Session layers the login state machine on top of it
// and is the only owner of token state.
package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MajesticSpiral/safety-app/internal/records"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status    int
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("api: %s (status %d, request %s)", e.Message, e.Status, e.RequestID)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client talks to one API deployment. It holds no session state.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient substitutes the underlying transport.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New returns a client for the API at baseURL.
func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type authenticateRequest struct {
	ClockNumber string `json:"clock_number"`
	Password    string `json:"password"`
}

type authenticateResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Credentials is the result of a successful authentication.
type Credentials struct {
	Token     string
	ExpiresAt time.Time
}

// Authenticate exchanges a clock number and password for a token.
func (c *Client) Authenticate(ctx context.Context, clockNumber, password string) (Credentials, error) {
	var out authenticateResponse
	err := c.do(ctx, http.MethodPost, "/authenticate", "",
		authenticateRequest{ClockNumber: clockNumber, Password: password}, &out)
	if err != nil {
		return Credentials{}, err
	}
	if !out.Success || out.Token == "" {
		return Credentials{}, errors.New("api: authenticate returned no token")
	}
	return Credentials{Token: out.Token, ExpiresAt: out.ExpiresAt}, nil
}

// Employee is a directory entry; credential fields never cross the wire.
type Employee struct {
	EmployeeID  string `json:"employee_id"`
	ClockNumber string `json:"clocknumber"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

// Employees lists the employee directory.
func (c *Client) Employees(ctx context.Context, token string) ([]Employee, error) {
	var out []Employee
	if err := c.do(ctx, http.MethodGet, "/employees", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListIssues returns the issues visible to the token's owner.
func (c *Client) ListIssues(ctx context.Context, token string) ([]records.Issue, error) {
	var out []records.Issue
	if err := c.do(ctx, http.MethodGet, "/issues", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type addIssueRequest struct {
	IssueName   string   `json:"issue_name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Photos      []string `json:"photos,omitempty"`
}

// Created is the API acknowledgement for a stored record.
type Created struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// AddIssue reports a new safety issue. Photos are raw bytes; the
// client hex-encodes them for the wire.
func (c *Client) AddIssue(ctx context.Context, token string, draft records.IssueDraft) (Created, error) {
	req := addIssueRequest{
		IssueName:   draft.IssueName,
		Description: draft.Description,
		Status:      draft.Status,
	}
	for _, photo := range draft.Photos {
		req.Photos = append(req.Photos, hex.EncodeToString(photo))
	}
	var out Created
	if err := c.do(ctx, http.MethodPost, "/addIssue", token, req, &out); err != nil {
		return Created{}, err
	}
	return out, nil
}

// IssuePhotos fetches an issue's photos as raw bytes.
func (c *Client) IssuePhotos(ctx context.Context, token, issueID string) ([][]byte, error) {
	var out struct {
		ID     string   `json:"id"`
		Photos []string `json:"photos"`
	}
	if err := c.do(ctx, http.MethodGet, "/issues/"+issueID+"/photos", token, nil, &out); err != nil {
		return nil, err
	}
	photos := make([][]byte, 0, len(out.Photos))
	for i, encoded := range out.Photos {
		raw, err := hex.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("api: photo %d is not valid hex: %w", i, err)
		}
		photos = append(photos, raw)
	}
	return photos, nil
}

// ListActions returns the corrective actions visible to the token's
// owner.
func (c *Client) ListActions(ctx context.Context, token string) ([]records.Action, error) {
	var out []records.Action
	if err := c.do(ctx, http.MethodGet, "/actions", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type addActionRequest struct {
	IssueID     string `json:"issue_id,omitempty"`
	ActionName  string `json:"action_name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// AddAction records a corrective action.
func (c *Client) AddAction(ctx context.Context, token string, draft records.ActionDraft) (Created, error) {
	req := addActionRequest{
		IssueID:     draft.IssueID,
		ActionName:  draft.ActionName,
		Description: draft.Description,
		Status:      draft.Status,
	}
	var out Created
	if err := c.do(ctx, http.MethodPost, "/addAction", token, req, &out); err != nil {
		return Created{}, err
	}
	return out, nil
}

// ListInspections returns the inspection submissions visible to the
// token's owner.
func (c *Client) ListInspections(ctx context.Context, token string) ([]records.InspectionSubmission, error) {
	var out []records.InspectionSubmission
	if err := c.do(ctx, http.MethodGet, "/inspections", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type addInspectionRequest struct {
	TemplateName string           `json:"template_name"`
	Items        []records.QAPair `json:"items"`
}

// AddInspection submits a completed inspection.
func (c *Client) AddInspection(ctx context.Context, token string, draft records.InspectionDraft) (Created, error) {
	req := addInspectionRequest{TemplateName: draft.TemplateName, Items: draft.Items}
	var out Created
	if err := c.do(ctx, http.MethodPost, "/addInspection", token, req, &out); err != nil {
		return Created{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}
	var envelope struct {
		Error     string `json:"error"`
		RequestID string `json:"request_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
		apiErr.Message = envelope.Error
		apiErr.RequestID = envelope.RequestID
	}
	return apiErr
}
