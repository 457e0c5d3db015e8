package records

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MajesticSpiral/safety-app/internal/auth"
	"github.com/MajesticSpiral/safety-app/internal/ids"
)

// InMemory implements Service with in-process state. It backs tests and
// local development; production uses the Postgres store.
type InMemory struct {
	mu          sync.RWMutex
	issues      []Issue
	photos      map[string][][]byte
	actions     []Action
	inspections []InspectionSubmission

	directory  auth.EmployeeStore
	visibility Visibility
	now        func() time.Time
}

// NewInMemory creates an empty store. The directory resolves owner
// display names at list time; it may be nil, in which case every
// owner name stays null.
func NewInMemory(directory auth.EmployeeStore, visibility Visibility) *InMemory {
	if visibility == "" {
		visibility = VisibilityOwner
	}
	return &InMemory{
		photos:     make(map[string][][]byte),
		directory:  directory,
		visibility: visibility,
		now:        time.Now,
	}
}

// SetClock overrides the time source. Only intended for tests.
func (s *InMemory) SetClock(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

func (s *InMemory) visibleTo(viewer auth.Identity, ownerID string) bool {
	if s.visibility == VisibilityAll {
		return true
	}
	return ownerID == viewer.EmployeeID
}

// ownerName resolves the display name for enrichment. A lookup miss is
// not an error; the record keeps a null name.
func (s *InMemory) ownerName(ctx context.Context, employeeID string) *string {
	if s.directory == nil {
		return nil
	}
	emp, err := s.directory.Find(ctx, employeeID)
	if err != nil || emp == nil {
		return nil
	}
	name := emp.DisplayName()
	if name == "" {
		return nil
	}
	return &name
}

func (s *InMemory) ListIssues(ctx context.Context, viewer auth.Identity) ([]Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		if !s.visibleTo(viewer, issue.EmployeeID) {
			continue
		}
		issue.OwnerName = s.ownerName(ctx, issue.EmployeeID)
		out = append(out, issue)
	}
	return out, nil
}

func (s *InMemory) CreateIssue(ctx context.Context, owner auth.Identity, draft IssueDraft) (Issue, error) {
	if err := draft.Validate(); err != nil {
		return Issue{}, err
	}
	if owner.EmployeeID == "" {
		return Issue{}, errors.New("records: owner identity is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	issue := Issue{
		ID:          ids.New(),
		EmployeeID:  owner.EmployeeID,
		IssueName:   draft.IssueName,
		Description: draft.Description,
		Status:      draft.Status,
		PhotoCount:  len(draft.Photos),
		CreatedAt:   s.now().UTC(),
	}
	s.issues = append(s.issues, issue)
	if len(draft.Photos) > 0 {
		stored := make([][]byte, len(draft.Photos))
		for i, p := range draft.Photos {
			cp := make([]byte, len(p))
			copy(cp, p)
			stored[i] = cp
		}
		s.photos[issue.ID] = stored
	}
	issue.OwnerName = s.ownerName(ctx, issue.EmployeeID)
	return issue, nil
}

func (s *InMemory) IssuePhotos(ctx context.Context, viewer auth.Identity, issueID string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, issue := range s.issues {
		if issue.ID != issueID {
			continue
		}
		if !s.visibleTo(viewer, issue.EmployeeID) {
			return nil, ErrNotFound
		}
		photos := s.photos[issueID]
		out := make([][]byte, len(photos))
		for i, p := range photos {
			cp := make([]byte, len(p))
			copy(cp, p)
			out[i] = cp
		}
		return out, nil
	}
	return nil, ErrNotFound
}

func (s *InMemory) ListActions(ctx context.Context, viewer auth.Identity) ([]Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Action, 0, len(s.actions))
	for _, action := range s.actions {
		if !s.visibleTo(viewer, action.EmployeeID) {
			continue
		}
		action.OwnerName = s.ownerName(ctx, action.EmployeeID)
		out = append(out, action)
	}
	return out, nil
}

func (s *InMemory) CreateAction(ctx context.Context, owner auth.Identity, draft ActionDraft) (Action, error) {
	if err := draft.Validate(); err != nil {
		return Action{}, err
	}
	if owner.EmployeeID == "" {
		return Action{}, errors.New("records: owner identity is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	action := Action{
		ID:          ids.New(),
		EmployeeID:  owner.EmployeeID,
		IssueID:     draft.IssueID,
		ActionName:  draft.ActionName,
		Description: draft.Description,
		Status:      draft.Status,
		CreatedAt:   s.now().UTC(),
	}
	s.actions = append(s.actions, action)
	action.OwnerName = s.ownerName(ctx, action.EmployeeID)
	return action, nil
}

func (s *InMemory) ListInspections(ctx context.Context, viewer auth.Identity) ([]InspectionSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]InspectionSubmission, 0, len(s.inspections))
	for _, sub := range s.inspections {
		if !s.visibleTo(viewer, sub.EmployeeID) {
			continue
		}
		sub.Items = append([]QAPair(nil), sub.Items...)
		sub.OwnerName = s.ownerName(ctx, sub.EmployeeID)
		out = append(out, sub)
	}
	return out, nil
}

func (s *InMemory) CreateInspection(ctx context.Context, owner auth.Identity, draft InspectionDraft) (InspectionSubmission, error) {
	if err := draft.Validate(); err != nil {
		return InspectionSubmission{}, err
	}
	if owner.EmployeeID == "" {
		return InspectionSubmission{}, errors.New("records: owner identity is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub := InspectionSubmission{
		RecordID:     ids.New(),
		EmployeeID:   owner.EmployeeID,
		TemplateName: draft.TemplateName,
		SubmittedAt:  s.now().UTC(),
		Items:        append([]QAPair(nil), draft.Items...),
	}
	s.inspections = append(s.inspections, sub)
	sub.OwnerName = s.ownerName(ctx, sub.EmployeeID)
	return sub, nil
}

var _ Service = (*InMemory)(nil)
