// Package memory holds in-process implementations of the repositories, used by
// the memory store driver and by service tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type attendanceRepository struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	records map[string]attendance.Record
	// insertion order, so equal check-ins list deterministically
	order []string
}

// NewAttendanceRepository returns an empty record store. clock stamps
// created_at and updated_at.
func NewAttendanceRepository(clock clockwork.Clock) attendance.RecordRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &attendanceRepository{
		clock:   clock,
		records: make(map[string]attendance.Record),
	}
}

func cloneRecord(r attendance.Record) attendance.Record {
	if r.CheckOut != nil {
		out := *r.CheckOut
		r.CheckOut = &out
	}
	if r.EmployeeName != nil {
		name := *r.EmployeeName
		r.EmployeeName = &name
	}
	return r
}

// selectRecords returns copies of the matching records, newest check-in first.
func (a *attendanceRepository) selectRecords(match func(attendance.Record) bool) []attendance.Record {
	out := make([]attendance.Record, 0)
	for i := len(a.order) - 1; i >= 0; i-- {
		r := a.records[a.order[i]]
		if match(r) {
			out = append(out, cloneRecord(r))
		}
	}
	slices.SortStableFunc(out, func(x, y attendance.Record) int {
		return cmp.Compare(y.CheckIn.UnixNano(), x.CheckIn.UnixNano())
	})
	return out
}

func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to generate attendance record id: %w", err)
	}

	now := a.clock.Now()
	record.ID = id.String()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.EmployeeName = nil

	a.mu.Lock()
	defer a.mu.Unlock()
	a.records[record.ID] = cloneRecord(record)
	a.order = append(a.order, record.ID)

	return cloneRecord(record), nil
}

func (a *attendanceRepository) Update(ctx context.Context, id string, update attendance.RecordUpdate) error {
	if update.CheckOut == nil && update.Status == nil {
		return attendance.ErrNoUpdatableFields
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	r, ok := a.records[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	if update.CheckOut != nil {
		out := *update.CheckOut
		r.CheckOut = &out
	}
	if update.Status != nil {
		r.Status = *update.Status
	}
	r.UpdatedAt = a.clock.Now()
	a.records[id] = r

	return nil
}

func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.records[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(a.records, id)
	a.order = slices.DeleteFunc(a.order, func(v string) bool { return v == id })

	return nil
}

func (a *attendanceRepository) GetByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) (*attendance.Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	matches := a.selectRecords(func(r attendance.Record) bool {
		return r.EmployeeID == employeeID && inRange(r.CheckIn, start, end)
	})
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, filter attendance.RecordFilter) ([]attendance.Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.selectRecords(func(r attendance.Record) bool {
		if r.EmployeeID != employeeID {
			return false
		}
		if filter.CheckInFrom != nil && r.CheckIn.Before(*filter.CheckInFrom) {
			return false
		}
		if filter.CheckInTo != nil && r.CheckIn.After(*filter.CheckInTo) {
			return false
		}
		return true
	}), nil
}

func (a *attendanceRepository) ListByCheckInRange(ctx context.Context, start, end time.Time) ([]attendance.Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.selectRecords(func(r attendance.Record) bool {
		return inRange(r.CheckIn, start, end)
	}), nil
}

func (a *attendanceRepository) ListOpenByEmployee(ctx context.Context, employeeID string) ([]attendance.Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.selectRecords(func(r attendance.Record) bool {
		return r.EmployeeID == employeeID && r.IsOpen()
	}), nil
}

func (a *attendanceRepository) ListOpenCheckedInBefore(ctx context.Context, before time.Time) ([]attendance.Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.selectRecords(func(r attendance.Record) bool {
		return r.IsOpen() && r.CheckIn.Before(before)
	}), nil
}

func (a *attendanceRepository) ListAll(ctx context.Context) ([]attendance.Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.selectRecords(func(attendance.Record) bool { return true }), nil
}

// inRange reports whether t lies in [start, end).
func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
