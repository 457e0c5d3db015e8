package auth

import "time"

// Employee is a provisioned worker record. Employees are created by
// external provisioning and are read-only to this service.
type Employee struct {
	ID           string
	ClockNumber  string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
}

// DisplayName renders the name shown next to records the employee owns.
func (e Employee) DisplayName() string {
	switch {
	case e.FirstName == "" && e.LastName == "":
		return ""
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	default:
		return e.FirstName + " " + e.LastName
	}
}

// Identity is the authenticated principal resolved from a session
// token. It is the sole authorization boundary: there are no roles.
type Identity struct {
	EmployeeID  string
	ClockNumber string
}
