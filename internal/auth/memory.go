package auth

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryEmployees is an in-process EmployeeStore for tests and local
// development. Production reads employees from Postgres.
type MemoryEmployees struct {
	mu        sync.RWMutex
	employees map[string]Employee
}

var _ EmployeeStore = (*MemoryEmployees)(nil)

// NewMemoryEmployees seeds the store with the given employees.
func NewMemoryEmployees(employees ...Employee) *MemoryEmployees {
	s := &MemoryEmployees{employees: make(map[string]Employee, len(employees))}
	for _, emp := range employees {
		s.employees[emp.ID] = emp
	}
	return s
}

// Add registers or replaces an employee record.
func (s *MemoryEmployees) Add(emp Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[emp.ID] = emp
}

func (s *MemoryEmployees) FindByClockNumber(ctx context.Context, clockNumber string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, emp := range s.employees {
		if strings.EqualFold(emp.ClockNumber, clockNumber) {
			e := emp
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryEmployees) Find(ctx context.Context, employeeID string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if emp, ok := s.employees[employeeID]; ok {
		e := emp
		return &e, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryEmployees) List(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClockNumber < out[j].ClockNumber })
	return out, nil
}
