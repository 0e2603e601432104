package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type employeeRepository struct {
	mu        sync.RWMutex
	clock     clockwork.Clock
	employees map[string]employee.Employee
}

// NewEmployeeRepository returns a directory pre-filled with seed. Seed entries
// without an id get one assigned.
func NewEmployeeRepository(clock clockwork.Clock, seed ...employee.Employee) employee.EmployeeRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	repo := &employeeRepository{
		clock:     clock,
		employees: make(map[string]employee.Employee, len(seed)),
	}
	now := clock.Now()
	for _, e := range seed {
		if e.ID == "" {
			e.ID = uuid.Must(uuid.NewV7()).String()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
			e.UpdatedAt = now
		}
		repo.employees[e.ID] = e
	}
	return repo
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepository) GetName(ctx context.Context, id string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	return e.FullName, ok, nil
}

func (r *employeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]employee.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b employee.Employee) int {
		return cmp.Or(cmp.Compare(a.FullName, b.FullName), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to generate employee id: %w", err)
	}

	now := r.clock.Now()
	newEmployee.ID = id.String()
	newEmployee.CreatedAt = now
	newEmployee.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[newEmployee.ID] = newEmployee

	return newEmployee, nil
}
