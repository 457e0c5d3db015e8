package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MajesticSpiral/safety-app/internal/auth"
	"github.com/MajesticSpiral/safety-app/internal/records"
)

// Store implements the employee credential store and the domain
// records service on PostgreSQL.
type Store struct {
	db         *sql.DB
	visibility records.Visibility
}

var (
	_ auth.EmployeeStore = (*Store)(nil)
	_ records.Service    = (*Store)(nil)
)

// Open connects to PostgreSQL and tunes the pool.
func Open(dsn string, visibility records.Visibility) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return New(db, visibility), nil
}

// New wraps an existing handle; used by tests with sqlmock.
func New(db *sql.DB, visibility records.Visibility) *Store {
	if visibility == "" {
		visibility = records.VisibilityOwner
	}
	return &Store{db: db, visibility: visibility}
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the handle for readiness probes and migrations.
func (s *Store) DB() *sql.DB { return s.db }

// Employee credential store --------------------------------------------

const employeeColumns = `employee_id, clocknumber, password_hash, first_name, last_name, created_at`

func scanEmployee(row interface{ Scan(...any) error }) (*auth.Employee, error) {
	var emp auth.Employee
	err := row.Scan(&emp.ID, &emp.ClockNumber, &emp.PasswordHash, &emp.FirstName, &emp.LastName, &emp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (s *Store) FindByClockNumber(ctx context.Context, clockNumber string) (*auth.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+employeeColumns+` from employee_profile where lower(clocknumber) = lower($1)`,
		clockNumber)
	return scanEmployee(row)
}

func (s *Store) Find(ctx context.Context, employeeID string) (*auth.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+employeeColumns+` from employee_profile where employee_id = $1`,
		employeeID)
	return scanEmployee(row)
}

func (s *Store) List(ctx context.Context) ([]auth.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+employeeColumns+` from employee_profile order by clocknumber asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []auth.Employee
	for rows.Next() {
		var emp auth.Employee
		if err := rows.Scan(&emp.ID, &emp.ClockNumber, &emp.PasswordHash, &emp.FirstName, &emp.LastName, &emp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}
