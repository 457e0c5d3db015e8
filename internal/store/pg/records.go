package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/MajesticSpiral/safety-app/internal/auth"
	"github.com/MajesticSpiral/safety-app/internal/ids"
	"github.com/MajesticSpiral/safety-app/internal/records"
)

func ownerNameFrom(first, last sql.NullString) *string {
	emp := auth.Employee{}
	if first.Valid {
		emp.FirstName = first.String
	}
	if last.Valid {
		emp.LastName = last.String
	}
	name := emp.DisplayName()
	if name == "" {
		return nil
	}
	return &name
}

// Issues -----------------------------------------------------------------

func (s *Store) ListIssues(ctx context.Context, viewer auth.Identity) ([]records.Issue, error) {
	query := `
		select i.id, i.employee_id, i.issue_name, i.description, i.status,
		       (case when i.image1 is null then 0 else 1 end) +
		       (case when i.image2 is null then 0 else 1 end) +
		       (case when i.image3 is null then 0 else 1 end) +
		       (case when i.image4 is null then 0 else 1 end) as photo_count,
		       i.created_at, e.first_name, e.last_name
		from issues i
		left join employee_profile e on i.employee_id = e.employee_id`
	args := []any{}
	if s.visibility == records.VisibilityOwner {
		query += ` where i.employee_id = $1`
		args = append(args, viewer.EmployeeID)
	}
	query += ` order by i.id asc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.Issue
	for rows.Next() {
		var (
			issue       records.Issue
			first, last sql.NullString
		)
		if err := rows.Scan(&issue.ID, &issue.EmployeeID, &issue.IssueName, &issue.Description,
			&issue.Status, &issue.PhotoCount, &issue.CreatedAt, &first, &last); err != nil {
			return nil, err
		}
		issue.OwnerName = ownerNameFrom(first, last)
		out = append(out, issue)
	}
	return out, rows.Err()
}

func (s *Store) CreateIssue(ctx context.Context, owner auth.Identity, draft records.IssueDraft) (records.Issue, error) {
	if err := draft.Validate(); err != nil {
		return records.Issue{}, err
	}
	if owner.EmployeeID == "" {
		return records.Issue{}, errors.New("pg: owner identity is required")
	}

	images := make([][]byte, records.MaxPhotos)
	for i, p := range draft.Photos {
		images[i] = p
	}

	issue := records.Issue{
		ID:          ids.New(),
		EmployeeID:  owner.EmployeeID,
		IssueName:   draft.IssueName,
		Description: draft.Description,
		Status:      draft.Status,
		PhotoCount:  len(draft.Photos),
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		insert into issues(id, employee_id, issue_name, description, status, image1, image2, image3, image4, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		issue.ID, issue.EmployeeID, issue.IssueName, issue.Description, issue.Status,
		images[0], images[1], images[2], images[3], issue.CreatedAt)
	if err != nil {
		return records.Issue{}, err
	}

	if emp, err := s.Find(ctx, owner.EmployeeID); err == nil {
		if name := emp.DisplayName(); name != "" {
			issue.OwnerName = &name
		}
	}
	return issue, nil
}

func (s *Store) IssuePhotos(ctx context.Context, viewer auth.Identity, issueID string) ([][]byte, error) {
	query := `select employee_id, image1, image2, image3, image4 from issues where id = $1`
	var (
		ownerID string
		images  [records.MaxPhotos][]byte
	)
	err := s.db.QueryRowContext(ctx, query, issueID).
		Scan(&ownerID, &images[0], &images[1], &images[2], &images[3])
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.visibility == records.VisibilityOwner && ownerID != viewer.EmployeeID {
		return nil, records.ErrNotFound
	}

	var out [][]byte
	for _, img := range images {
		if img != nil {
			out = append(out, img)
		}
	}
	return out, nil
}

// Actions ----------------------------------------------------------------

func (s *Store) ListActions(ctx context.Context, viewer auth.Identity) ([]records.Action, error) {
	query := `
		select a.id, a.employee_id, a.issue_id, a.action_name, a.description, a.status,
		       a.created_at, e.first_name, e.last_name
		from actions a
		left join employee_profile e on a.employee_id = e.employee_id`
	args := []any{}
	if s.visibility == records.VisibilityOwner {
		query += ` where a.employee_id = $1`
		args = append(args, viewer.EmployeeID)
	}
	query += ` order by a.id asc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.Action
	for rows.Next() {
		var (
			action      records.Action
			issueID     sql.NullString
			first, last sql.NullString
		)
		if err := rows.Scan(&action.ID, &action.EmployeeID, &issueID, &action.ActionName,
			&action.Description, &action.Status, &action.CreatedAt, &first, &last); err != nil {
			return nil, err
		}
		if issueID.Valid {
			action.IssueID = issueID.String
		}
		action.OwnerName = ownerNameFrom(first, last)
		out = append(out, action)
	}
	return out, rows.Err()
}

func (s *Store) CreateAction(ctx context.Context, owner auth.Identity, draft records.ActionDraft) (records.Action, error) {
	if err := draft.Validate(); err != nil {
		return records.Action{}, err
	}
	if owner.EmployeeID == "" {
		return records.Action{}, errors.New("pg: owner identity is required")
	}

	action := records.Action{
		ID:          ids.New(),
		EmployeeID:  owner.EmployeeID,
		IssueID:     draft.IssueID,
		ActionName:  draft.ActionName,
		Description: draft.Description,
		Status:      draft.Status,
		CreatedAt:   time.Now().UTC(),
	}
	var issueID any
	if action.IssueID != "" {
		issueID = action.IssueID
	}
	_, err := s.db.ExecContext(ctx, `
		insert into actions(id, employee_id, issue_id, action_name, description, status, created_at)
		values ($1,$2,$3,$4,$5,$6,$7)`,
		action.ID, action.EmployeeID, issueID, action.ActionName, action.Description,
		action.Status, action.CreatedAt)
	if err != nil {
		return records.Action{}, err
	}

	if emp, err := s.Find(ctx, owner.EmployeeID); err == nil {
		if name := emp.DisplayName(); name != "" {
			action.OwnerName = &name
		}
	}
	return action, nil
}

// Inspections ------------------------------------------------------------

func (s *Store) ListInspections(ctx context.Context, viewer auth.Identity) ([]records.InspectionSubmission, error) {
	query := `
		select q.record_id, q.employee_id, q.template_name, q.submitted_at,
		       e.first_name, e.last_name, qi.question, qi.answer
		from inspections q
		left join employee_profile e on q.employee_id = e.employee_id
		left join inspection_items qi on qi.record_id = q.record_id`
	args := []any{}
	if s.visibility == records.VisibilityOwner {
		query += ` where q.employee_id = $1`
		args = append(args, viewer.EmployeeID)
	}
	query += ` order by q.record_id asc, qi.position asc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.InspectionSubmission
	index := map[string]int{}
	for rows.Next() {
		var (
			recordID, employeeID, templateName string
			submittedAt                        time.Time
			first, last                        sql.NullString
			question, answer                   sql.NullString
		)
		if err := rows.Scan(&recordID, &employeeID, &templateName, &submittedAt,
			&first, &last, &question, &answer); err != nil {
			return nil, err
		}
		i, ok := index[recordID]
		if !ok {
			out = append(out, records.InspectionSubmission{
				RecordID:     recordID,
				EmployeeID:   employeeID,
				TemplateName: templateName,
				SubmittedAt:  submittedAt,
				OwnerName:    ownerNameFrom(first, last),
			})
			i = len(out) - 1
			index[recordID] = i
		}
		if question.Valid {
			out[i].Items = append(out[i].Items, records.QAPair{
				Question: question.String,
				Answer:   answer.String,
			})
		}
	}
	return out, rows.Err()
}

func (s *Store) CreateInspection(ctx context.Context, owner auth.Identity, draft records.InspectionDraft) (records.InspectionSubmission, error) {
	if err := draft.Validate(); err != nil {
		return records.InspectionSubmission{}, err
	}
	if owner.EmployeeID == "" {
		return records.InspectionSubmission{}, errors.New("pg: owner identity is required")
	}

	sub := records.InspectionSubmission{
		RecordID:     ids.New(),
		EmployeeID:   owner.EmployeeID,
		TemplateName: draft.TemplateName,
		SubmittedAt:  time.Now().UTC(),
		Items:        append([]records.QAPair(nil), draft.Items...),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return records.InspectionSubmission{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into inspections(record_id, employee_id, template_name, submitted_at)
		values ($1,$2,$3,$4)`,
		sub.RecordID, sub.EmployeeID, sub.TemplateName, sub.SubmittedAt); err != nil {
		return records.InspectionSubmission{}, err
	}
	for i, item := range sub.Items {
		if _, err := tx.ExecContext(ctx, `
			insert into inspection_items(record_id, position, question, answer)
			values ($1,$2,$3,$4)`,
			sub.RecordID, i, item.Question, item.Answer); err != nil {
			return records.InspectionSubmission{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return records.InspectionSubmission{}, err
	}

	if emp, err := s.Find(ctx, owner.EmployeeID); err == nil {
		if name := emp.DisplayName(); name != "" {
			sub.OwnerName = &name
		}
	}
	return sub, nil
}
