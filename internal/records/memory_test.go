package records

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MajesticSpiral/safety-app/internal/auth"
)

type directoryStub struct {
	employees map[string]auth.Employee
}

func (d *directoryStub) Find(ctx context.Context, employeeID string) (*auth.Employee, error) {
	if emp, ok := d.employees[employeeID]; ok {
		return &emp, nil
	}
	return nil, auth.ErrNotFound
}

func (d *directoryStub) FindByClockNumber(ctx context.Context, clockNumber string) (*auth.Employee, error) {
	for _, emp := range d.employees {
		if strings.EqualFold(emp.ClockNumber, clockNumber) {
			e := emp
			return &e, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (d *directoryStub) List(ctx context.Context) ([]auth.Employee, error) {
	out := make([]auth.Employee, 0, len(d.employees))
	for _, emp := range d.employees {
		out = append(out, emp)
	}
	return out, nil
}

func testDirectory() *directoryStub {
	return &directoryStub{employees: map[string]auth.Employee{
		"emp-a": {ID: "emp-a", ClockNumber: "1024", FirstName: "Dana", LastName: "Reyes"},
		"emp-b": {ID: "emp-b", ClockNumber: "2048", FirstName: "Lee", LastName: "Okafor"},
	}}
}

var (
	empA = auth.Identity{EmployeeID: "emp-a", ClockNumber: "1024"}
	empB = auth.Identity{EmployeeID: "emp-b", ClockNumber: "2048"}
)

func TestCreateIssueStampsOwner(t *testing.T) {
	store := NewInMemory(testDirectory(), VisibilityOwner)

	issue, err := store.CreateIssue(context.Background(), empA, IssueDraft{
		IssueName:   "Spill",
		Description: "Oil on floor 2",
		Status:      "Open",
	})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if issue.EmployeeID != "emp-a" {
		t.Fatalf("ownership must come from the identity, got %s", issue.EmployeeID)
	}
	if issue.ID == "" {
		t.Fatal("expected assigned id")
	}
	if issue.OwnerName == nil || *issue.OwnerName != "Dana Reyes" {
		t.Fatalf("expected enriched owner name, got %v", issue.OwnerName)
	}
}

func TestCreateIssueValidation(t *testing.T) {
	store := NewInMemory(testDirectory(), VisibilityOwner)

	_, err := store.CreateIssue(context.Background(), empA, IssueDraft{IssueName: "Spill"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "description" {
		t.Fatalf("expected description named, got %s", verr.Field)
	}

	_, err = store.CreateIssue(context.Background(), empA, IssueDraft{
		IssueName:   "Spill",
		Description: "d",
		Photos:      make([][]byte, MaxPhotos+1),
	})
	if !errors.As(err, &verr) || verr.Field != "photos" {
		t.Fatalf("expected photos validation error, got %v", err)
	}
}

func TestCreateActionValidation(t *testing.T) {
	store := NewInMemory(testDirectory(), VisibilityOwner)

	_, err := store.CreateAction(context.Background(), empA, ActionDraft{
		ActionName:  "Mop",
		Description: "Mop the floor",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "status" {
		t.Fatalf("action requires status, got %v", err)
	}

	// Status stays free-form: anything non-empty is accepted.
	if _, err := store.CreateAction(context.Background(), empA, ActionDraft{
		ActionName:  "Mop",
		Description: "Mop the floor",
		Status:      "Someday Maybe",
	}); err != nil {
		t.Fatalf("free-form status rejected: %v", err)
	}
}

func TestListVisibilityOwnerOnly(t *testing.T) {
	store := NewInMemory(testDirectory(), VisibilityOwner)
	ctx := context.Background()

	mustCreateAction(t, store, empA, "Inspect racks")
	mustCreateAction(t, store, empB, "Replace sign")

	got, err := store.ListActions(ctx, empA)
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}
	if len(got) != 1 || got[0].EmployeeID != "emp-a" {
		t.Fatalf("owner-only visibility leaked records: %+v", got)
	}
}

func TestListVisibilityAllEnrichesEachOwner(t *testing.T) {
	store := NewInMemory(testDirectory(), VisibilityAll)
	ctx := context.Background()

	mustCreateAction(t, store, empA, "Inspect racks")
	mustCreateAction(t, store, empB, "Replace sign")

	got, err := store.ListActions(ctx, empA)
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both employees' actions, got %d", len(got))
	}
	names := map[string]string{}
	for _, action := range got {
		if action.OwnerName == nil {
			t.Fatalf("missing owner name on %+v", action)
		}
		names[action.EmployeeID] = *action.OwnerName
	}
	if names["emp-a"] != "Dana Reyes" || names["emp-b"] != "Lee Okafor" {
		t.Fatalf("wrong enrichment: %v", names)
	}
}

func TestListNullNameWhenOwnerUnknown(t *testing.T) {
	store := NewInMemory(testDirectory(), VisibilityAll)
	ghost := auth.Identity{EmployeeID: "emp-ghost"}

	mustCreateAction(t, store, ghost, "Orphaned action")

	got, err := store.ListActions(context.Background(), empA)
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the orphaned action, got %d", len(got))
	}
	if got[0].OwnerName != nil {
		t.Fatalf("owner lookup miss must null-fill, got %v", *got[0].OwnerName)
	}
}

func TestIssuePhotosRoundTrip(t *testing.T) {
	store := NewInMemory(testDirectory(), VisibilityOwner)
	ctx := context.Background()

	issue, err := store.CreateIssue(ctx, empA, IssueDraft{
		IssueName:   "Spill",
		Description: "Oil on floor 2",
		Status:      "Open",
		Photos:      [][]byte{{0xde, 0xad}, {0xbe, 0xef}},
	})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if issue.PhotoCount != 2 {
		t.Fatalf("expected photo count 2, got %d", issue.PhotoCount)
	}

	photos, err := store.IssuePhotos(ctx, empA, issue.ID)
	if err != nil {
		t.Fatalf("IssuePhotos: %v", err)
	}
	if len(photos) != 2 || photos[0][0] != 0xde {
		t.Fatalf("unexpected photos: %v", photos)
	}

	// Owner-only visibility hides the issue (and its photos) from others.
	if _, err := store.IssuePhotos(ctx, empB, issue.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign viewer, got %v", err)
	}
}

func TestCreateInspectionKeepsItemOrder(t *testing.T) {
	store := NewInMemory(testDirectory(), VisibilityOwner)
	ctx := context.Background()

	draft := InspectionDraft{
		TemplateName: "Forklift Daily",
		Items: []QAPair{
			{Question: "Horn works?", Answer: "Yes"},
			{Question: "Brakes ok?", Answer: "Yes"},
			{Question: "Leaks?", Answer: "No"},
		},
	}
	created, err := store.CreateInspection(ctx, empA, draft)
	if err != nil {
		t.Fatalf("CreateInspection: %v", err)
	}

	listed, err := store.ListInspections(ctx, empA)
	if err != nil {
		t.Fatalf("ListInspections: %v", err)
	}
	if len(listed) != 1 || listed[0].RecordID != created.RecordID {
		t.Fatalf("unexpected listing: %+v", listed)
	}
	for i, item := range listed[0].Items {
		if item != draft.Items[i] {
			t.Fatalf("item order not preserved at %d: %+v", i, listed[0].Items)
		}
	}
}

func TestParseVisibility(t *testing.T) {
	if v, err := ParseVisibility(""); err != nil || v != VisibilityOwner {
		t.Fatalf("empty visibility should default to owner-only, got %v %v", v, err)
	}
	if v, err := ParseVisibility("ALL"); err != nil || v != VisibilityAll {
		t.Fatalf("case-insensitive parse failed: %v %v", v, err)
	}
	if _, err := ParseVisibility("everyone"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func mustCreateAction(t *testing.T, store *InMemory, owner auth.Identity, name string) Action {
	t.Helper()
	action, err := store.CreateAction(context.Background(), owner, ActionDraft{
		ActionName:  name,
		Description: "desc",
		Status:      "To Do",
	})
	if err != nil {
		t.Fatalf("CreateAction: %v", err)
	}
	return action
}
