package records

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxPhotos bounds attachments on a single issue; the backing schema
// has four binary columns.
const MaxPhotos = 4

// Recognized status values are a presentation convention only. The
// service stores status as a free-form string and does not enforce a
// closed set.
var (
	IssueStatuses  = []string{"Open", "In Progress", "Resolved"}
	ActionStatuses = []string{"To Do", "In Progress", "Completed"}
)

// Issue is a reported safety hazard, owned by exactly one employee.
// Owner name fields are filled by a left-join lookup at list time and
// stay null when the owning employee cannot be resolved.
type Issue struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employee_id"`
	IssueName   string    `json:"issue_name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	PhotoCount  int       `json:"photo_count"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerName   *string   `json:"employee_name"`
}

// IssueDraft carries caller-supplied fields for a new issue. Ownership
// is never part of the draft: it is stamped from the authenticated
// identity.
type IssueDraft struct {
	IssueName   string
	Description string
	Status      string
	Photos      [][]byte
}

// Action is a remediation task, optionally back-referencing an issue.
// The reference is informational and not enforced.
type Action struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employee_id"`
	IssueID     string    `json:"issue_id,omitempty"`
	ActionName  string    `json:"action_name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerName   *string   `json:"employee_name"`
}

// ActionDraft carries caller-supplied fields for a new action.
type ActionDraft struct {
	IssueID     string
	ActionName  string
	Description string
	Status      string
}

// QAPair is one answered question inside an inspection submission.
// Order is significant.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// InspectionSubmission is a completed instance of a checklist template.
type InspectionSubmission struct {
	RecordID     string    `json:"record_id"`
	EmployeeID   string    `json:"employee_id"`
	TemplateName string    `json:"template_name"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Items        []QAPair  `json:"items"`
	OwnerName    *string   `json:"employee_name"`
}

// InspectionDraft carries caller-supplied fields for a new submission.
type InspectionDraft struct {
	TemplateName string
	Items        []QAPair
}

// Visibility controls whether list operations return every employee's
// records or only the caller's own.
type Visibility string

const (
	VisibilityOwner Visibility = "owner-only"
	VisibilityAll   Visibility = "all"
)

// ParseVisibility validates a configured visibility mode.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(strings.TrimSpace(strings.ToLower(s))) {
	case VisibilityOwner, "":
		return VisibilityOwner, nil
	case VisibilityAll:
		return VisibilityAll, nil
	default:
		return "", fmt.Errorf("records: unknown visibility %q", s)
	}
}

// ErrNotFound reports a lookup miss for a primary record. Owner-name
// lookup misses during enrichment are not errors.
var ErrNotFound = errors.New("records: not found")

// ValidationError names the request field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("records: field %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("records: missing required field %s", e.Field)
}

func missing(field string) error {
	return &ValidationError{Field: field}
}

// Validate checks the draft's required fields: issue_name and
// description. Status stays free-form.
func (d IssueDraft) Validate() error {
	if strings.TrimSpace(d.IssueName) == "" {
		return missing("issue_name")
	}
	if strings.TrimSpace(d.Description) == "" {
		return missing("description")
	}
	if len(d.Photos) > MaxPhotos {
		return &ValidationError{Field: "photos", Reason: fmt.Sprintf("allows at most %d entries", MaxPhotos)}
	}
	return nil
}

// Validate checks the draft's required fields: action_name, description
// and status.
func (d ActionDraft) Validate() error {
	if strings.TrimSpace(d.ActionName) == "" {
		return missing("action_name")
	}
	if strings.TrimSpace(d.Description) == "" {
		return missing("description")
	}
	if strings.TrimSpace(d.Status) == "" {
		return missing("status")
	}
	return nil
}

// Validate checks the draft's required fields: template_name and at
// least one question/answer pair with non-empty questions.
func (d InspectionDraft) Validate() error {
	if strings.TrimSpace(d.TemplateName) == "" {
		return missing("template_name")
	}
	if len(d.Items) == 0 {
		return missing("items")
	}
	for _, item := range d.Items {
		if strings.TrimSpace(item.Question) == "" {
			return &ValidationError{Field: "items", Reason: "contains an empty question"}
		}
	}
	return nil
}
