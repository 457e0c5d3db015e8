package records

import (
	"context"

	"github.com/MajesticSpiral/safety-app/internal/auth"
)

// Service defines domain record operations. Every call is scoped to an
// authenticated identity: creates stamp ownership from it, lists apply
// the configured visibility to it.
type Service interface {
	ListIssues(ctx context.Context, viewer auth.Identity) ([]Issue, error)
	CreateIssue(ctx context.Context, owner auth.Identity, draft IssueDraft) (Issue, error)
	IssuePhotos(ctx context.Context, viewer auth.Identity, issueID string) ([][]byte, error)

	ListActions(ctx context.Context, viewer auth.Identity) ([]Action, error)
	CreateAction(ctx context.Context, owner auth.Identity, draft ActionDraft) (Action, error)

	ListInspections(ctx context.Context, viewer auth.Identity) ([]InspectionSubmission, error)
	CreateInspection(ctx context.Context, owner auth.Identity, draft InspectionDraft) (InspectionSubmission, error)
}
