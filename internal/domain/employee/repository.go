package employee

import "context"

// EmployeeRepository is the employee directory.
type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound when the id is unknown
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetName resolves a display name. ok is false when the id is unknown
	GetName(ctx context.Context, id string) (name string, ok bool, err error)

	List(ctx context.Context) ([]Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
}
