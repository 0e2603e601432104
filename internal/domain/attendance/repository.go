package attendance

import (
	"context"
	"time"
)

// RecordFilter narrows ListByEmployee by check-in instant. Both bounds are inclusive,
// a nil bound leaves that side open.
type RecordFilter struct {
	CheckInFrom *time.Time
	CheckInTo   *time.Time
}

// RecordUpdate carries the mutable fields of a record. Nil fields are left untouched.
type RecordUpdate struct {
	CheckOut *time.Time
	Status   *Status
}

// RecordRepository defines data access methods for attendance records.
// Every list method returns records ordered by check-in, newest first.
type RecordRepository interface {
	// Create stores a new record and returns it with the store-assigned ID
	Create(ctx context.Context, record Record) (Record, error)

	// Update applies a partial update to the record with the given ID
	Update(ctx context.Context, id string, update RecordUpdate) error

	// Delete removes a record. Returns ErrAttendanceNotFound when nothing was deleted
	Delete(ctx context.Context, id string) error

	// GetByEmployeeAndRange returns the latest record of an employee with check-in in [start, end).
	// Returns nil, nil when there is none
	GetByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) (*Record, error)

	ListByEmployee(ctx context.Context, employeeID string, filter RecordFilter) ([]Record, error)

	// ListByCheckInRange returns records with check-in in [start, end)
	ListByCheckInRange(ctx context.Context, start, end time.Time) ([]Record, error)

	// ListOpenByEmployee returns the employee's records that have no check-out
	ListOpenByEmployee(ctx context.Context, employeeID string) ([]Record, error)

	// ListOpenCheckedInBefore returns every open record with check-in before the given instant
	ListOpenCheckedInBefore(ctx context.Context, before time.Time) ([]Record, error)

	ListAll(ctx context.Context) ([]Record, error)
}

// Locker serializes operations for a single employee. Repository calls made with
// the ctx handed to fn run under the lock.
type Locker interface {
	WithEmployeeLock(ctx context.Context, employeeID string, fn func(ctx context.Context) error) error
}
