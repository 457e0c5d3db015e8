package auth

import "context"

// EmployeeStore describes the credential store backing authentication.
// Writes happen in external provisioning; this service only reads.
type EmployeeStore interface {
	// FindByClockNumber matches the clock number case-insensitively.
	FindByClockNumber(ctx context.Context, clockNumber string) (*Employee, error)
	Find(ctx context.Context, employeeID string) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
}
