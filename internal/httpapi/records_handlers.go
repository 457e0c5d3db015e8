package httpapi

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MajesticSpiral/safety-app/internal/audit"
	"github.com/MajesticSpiral/safety-app/internal/obs"
	"github.com/MajesticSpiral/safety-app/internal/records"
	"github.com/MajesticSpiral/safety-app/internal/stream"
)

type addIssueRequest struct {
	IssueName   string   `json:"issue_name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Photos      []string `json:"photos"`
	// Legacy clients send employee_id; it is accepted and ignored.
	// Ownership always comes from the session token.
	EmployeeID string `json:"employee_id"`
}

type addActionRequest struct {
	IssueID     string `json:"issue_id"`
	ActionName  string `json:"action_name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	EmployeeID  string `json:"employee_id"`
}

type addInspectionRequest struct {
	TemplateName string           `json:"template_name"`
	Items        []records.QAPair `json:"items"`
}

type createdResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Issues -----------------------------------------------------------------

func (a *API) handleIssues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	viewer, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}
	issues, err := a.records.ListIssues(r.Context(), viewer)
	if err != nil {
		handleRecordError(w, r, err)
		return
	}
	if issues == nil {
		issues = []records.Issue{}
	}
	writeJSON(w, http.StatusOK, issues)
}

func (a *API) handleAddIssue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	owner, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req addIssueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// A malformed photo payload fails the whole create; silently
	// dropping an attachment would lose evidence.
	photos := make([][]byte, 0, len(req.Photos))
	for i, encoded := range req.Photos {
		decoded, err := hex.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("photos[%d] is not valid hex", i))
			return
		}
		photos = append(photos, decoded)
	}

	issue, err := a.records.CreateIssue(r.Context(), owner, records.IssueDraft{
		IssueName:   req.IssueName,
		Description: req.Description,
		Status:      req.Status,
		Photos:      photos,
	})
	if err != nil {
		handleRecordError(w, r, err)
		return
	}

	obs.RecordCreated("issue")
	a.publish(stream.RecordEvent{
		Kind:        "issue",
		RecordID:    issue.ID,
		EmployeeID:  issue.EmployeeID,
		Name:        issue.IssueName,
		Status:      issue.Status,
		SubmittedAt: issue.CreatedAt,
	})
	_ = audit.LogEvent(r.Context(), "records.issue.create", map[string]any{
		"id":         issue.ID,
		"issue_name": issue.IssueName,
		"photos":     issue.PhotoCount,
	})

	writeJSON(w, http.StatusOK, createdResponse{Message: "Issue added successfully", ID: issue.ID})
}

// handleIssueResource serves /issues/{id}/photos.
func (a *API) handleIssueResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/issues/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if !strings.HasSuffix(path, "/photos") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	id := strings.TrimSuffix(strings.TrimSuffix(path, "/photos"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	viewer, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	photos, err := a.records.IssuePhotos(r.Context(), viewer, id)
	if err != nil {
		handleRecordError(w, r, err)
		return
	}
	encoded := make([]string, 0, len(photos))
	for _, p := range photos {
		encoded = append(encoded, hex.EncodeToString(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "photos": encoded})
}

// Actions ----------------------------------------------------------------

func (a *API) handleActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	viewer, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}
	actions, err := a.records.ListActions(r.Context(), viewer)
	if err != nil {
		handleRecordError(w, r, err)
		return
	}
	if actions == nil {
		actions = []records.Action{}
	}
	writeJSON(w, http.StatusOK, actions)
}

func (a *API) handleAddAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	owner, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req addActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	action, err := a.records.CreateAction(r.Context(), owner, records.ActionDraft{
		IssueID:     req.IssueID,
		ActionName:  req.ActionName,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		handleRecordError(w, r, err)
		return
	}

	obs.RecordCreated("action")
	a.publish(stream.RecordEvent{
		Kind:        "action",
		RecordID:    action.ID,
		EmployeeID:  action.EmployeeID,
		Name:        action.ActionName,
		Status:      action.Status,
		SubmittedAt: action.CreatedAt,
	})
	_ = audit.LogEvent(r.Context(), "records.action.create", map[string]any{
		"id":          action.ID,
		"action_name": action.ActionName,
	})

	writeJSON(w, http.StatusOK, createdResponse{Message: "Action added successfully", ID: action.ID})
}

// Inspections ------------------------------------------------------------

func (a *API) handleInspections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	viewer, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}
	subs, err := a.records.ListInspections(r.Context(), viewer)
	if err != nil {
		handleRecordError(w, r, err)
		return
	}
	if subs == nil {
		subs = []records.InspectionSubmission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (a *API) handleAddInspection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	owner, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req addInspectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := a.records.CreateInspection(r.Context(), owner, records.InspectionDraft{
		TemplateName: req.TemplateName,
		Items:        req.Items,
	})
	if err != nil {
		handleRecordError(w, r, err)
		return
	}

	obs.RecordCreated("inspection")
	a.publish(stream.RecordEvent{
		Kind:        "inspection",
		RecordID:    sub.RecordID,
		EmployeeID:  sub.EmployeeID,
		Name:        sub.TemplateName,
		SubmittedAt: sub.SubmittedAt,
	})
	_ = audit.LogEvent(r.Context(), "records.inspection.create", map[string]any{
		"record_id":     sub.RecordID,
		"template_name": sub.TemplateName,
		"items":         len(sub.Items),
	})

	writeJSON(w, http.StatusOK, createdResponse{Message: "Inspection added successfully", ID: sub.RecordID})
}

// --- shared ---

func (a *API) publish(evt stream.RecordEvent) {
	if a.stream != nil {
		a.stream.Publish(evt)
	}
}

func handleRecordError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *records.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, r, http.StatusBadRequest, verr.Error())
	case errors.Is(err, records.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "record not found")
	default:
		// Internal tool: surface the store error to help diagnosis.
		writeError(w, r, http.StatusInternalServerError, err.Error())
	}
}
