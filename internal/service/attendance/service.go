package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// DefaultReconcileConcurrency bounds how many employees ReconcileAll processes at once.
const DefaultReconcileConcurrency = 8

const (
	msgCheckedIn    = "Checked in successfully."
	msgCheckedOut   = "Checked out successfully."
	msgCanCheckIn   = "You have not checked in today."
	msgCanCheckOut  = "You are checked in. Remember to check out."
	msgDayCompleted = "You have already checked out today."
)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.RecordRepository
	employeeRepo   employee.EmployeeRepository
	locker         attendance.Locker
	publisher      attendance.EventPublisher
	clock          clockwork.Clock
	loc            *time.Location
	concurrency    int
}

type Option func(*AttendanceServiceImpl)

// WithPublisher sends record lifecycle events to p.
func WithPublisher(p attendance.EventPublisher) Option {
	return func(s *AttendanceServiceImpl) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithReconcileConcurrency(n int) Option {
	return func(s *AttendanceServiceImpl) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewAttendanceService builds the attendance engine. All calendar-day math
// runs in loc.
func NewAttendanceService(
	attendanceRepo attendance.RecordRepository,
	employeeRepo employee.EmployeeRepository,
	locker attendance.Locker,
	clock clockwork.Clock,
	loc *time.Location,
	opts ...Option,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	s := &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		locker:         locker,
		publisher:      attendance.NoopPublisher,
		clock:          clock,
		loc:            loc,
		concurrency:    DefaultReconcileConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func storeFailure(op string, err error) error {
	if errors.Is(err, attendance.ErrStoreFailure) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", attendance.ErrStoreFailure, op, err)
}

// MarkAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAttendance(ctx context.Context, req attendance.MarkAttendanceRequest) (attendance.MarkAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.MarkAttendanceResponse{}, err
	}

	var (
		resp    attendance.MarkAttendanceResponse
		events  []recordEvent
		ruleErr error
	)

	err := s.locker.WithEmployeeLock(ctx, req.EmployeeID, func(ctx context.Context) error {
		var err error
		resp, events, err = s.mark(ctx, req.EmployeeID, req.Type, s.clock.Now())
		if err != nil && !errors.Is(err, attendance.ErrStoreFailure) {
			// rejected actions still keep the reconciliation that ran before them
			ruleErr = err
			return nil
		}
		return err
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to mark attendance", "employee_id", req.EmployeeID, "type", req.Type, "error", err)
		return attendance.MarkAttendanceResponse{}, err
	}

	// published only once the locked unit has committed
	s.publish(events)
	if ruleErr != nil {
		return attendance.MarkAttendanceResponse{}, ruleErr
	}
	return resp, nil
}

// mark runs reconciliation and then the requested transition. Events for every
// applied change are returned even when the transition itself is rejected.
func (s *AttendanceServiceImpl) mark(ctx context.Context, employeeID, rawType string, now time.Time) (attendance.MarkAttendanceResponse, []recordEvent, error) {
	closed, err := s.reconcile(ctx, employeeID, now)
	if err != nil {
		return attendance.MarkAttendanceResponse{}, nil, err
	}
	events := make([]recordEvent, 0, len(closed)+1)
	for _, r := range closed {
		events = append(events, recordEvent{attendance.EventAutoCompleted, r})
	}

	action, err := attendance.ParseAction(rawType)
	if err != nil {
		return attendance.MarkAttendanceResponse{}, events, err
	}

	start, next := attendance.DayRange(now, s.loc)
	today, err := s.attendanceRepo.GetByEmployeeAndRange(ctx, employeeID, start, next)
	if err != nil {
		return attendance.MarkAttendanceResponse{}, events, storeFailure("get today's record", err)
	}

	if action == attendance.ActionCheckIn {
		record, err := s.checkIn(ctx, employeeID, today, now)
		if err != nil {
			return attendance.MarkAttendanceResponse{}, events, err
		}
		events = append(events, recordEvent{attendance.EventCheckedIn, record})
		return markResponse(record, action, msgCheckedIn), events, nil
	}

	record, err := s.checkOut(ctx, today, now)
	if err != nil {
		return attendance.MarkAttendanceResponse{}, events, err
	}
	events = append(events, recordEvent{attendance.EventCheckedOut, record})
	return markResponse(record, action, msgCheckedOut), events, nil
}

func (s *AttendanceServiceImpl) checkIn(ctx context.Context, employeeID string, today *attendance.Record, now time.Time) (attendance.Record, error) {
	if today != nil && today.Status != attendance.StatusIncomplete {
		return attendance.Record{}, attendance.ErrAlreadyCheckedIn
	}

	record, err := s.attendanceRepo.Create(ctx, attendance.Record{
		EmployeeID: employeeID,
		CheckIn:    now,
		Status:     attendance.StatusPresent,
		TimeStatus: attendance.ClassifyCheckIn(now, s.loc),
	})
	if err != nil {
		return attendance.Record{}, storeFailure("create record", err)
	}

	slog.InfoContext(ctx, "employee checked in",
		"employee_id", employeeID,
		"record_id", record.ID,
		"time_status", record.TimeStatus,
	)
	return record, nil
}

func (s *AttendanceServiceImpl) checkOut(ctx context.Context, today *attendance.Record, now time.Time) (attendance.Record, error) {
	if today == nil {
		return attendance.Record{}, attendance.ErrNotCheckedIn
	}
	if today.CheckOut != nil {
		return attendance.Record{}, attendance.ErrAlreadyCheckedOut
	}
	if !now.After(today.CheckIn) {
		return attendance.Record{}, attendance.ErrInvalidCheckOutTime
	}
	if !today.Status.CanTransitionTo(attendance.StatusCompleted) {
		return attendance.Record{}, attendance.ErrInvalidTransition
	}

	status := attendance.StatusCompleted
	if err := s.attendanceRepo.Update(ctx, today.ID, attendance.RecordUpdate{CheckOut: &now, Status: &status}); err != nil {
		return attendance.Record{}, storeFailure("update record", err)
	}

	record := *today
	record.CheckOut = &now
	record.Status = status

	slog.InfoContext(ctx, "employee checked out",
		"employee_id", record.EmployeeID,
		"record_id", record.ID,
	)
	return record, nil
}

// ReconcileStaleOpenRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ReconcileStaleOpenRecords(ctx context.Context, employeeID string) (int, error) {
	var closed []attendance.Record
	err := s.locker.WithEmployeeLock(ctx, employeeID, func(ctx context.Context) error {
		var err error
		closed, err = s.reconcile(ctx, employeeID, s.clock.Now())
		return err
	})
	if err != nil {
		return 0, err
	}

	events := make([]recordEvent, 0, len(closed))
	for _, r := range closed {
		events = append(events, recordEvent{attendance.EventAutoCompleted, r})
	}
	s.publish(events)
	return len(closed), nil
}

// reconcile closes the employee's open records from other days. It expects the
// employee lock to be held. Updates made before a failure stay applied unless
// the locker rolls them back.
func (s *AttendanceServiceImpl) reconcile(ctx context.Context, employeeID string, now time.Time) ([]attendance.Record, error) {
	open, err := s.attendanceRepo.ListOpenByEmployee(ctx, employeeID)
	if err != nil {
		return nil, storeFailure("list open records", err)
	}

	var closed []attendance.Record
	for _, rec := range open {
		if attendance.SameDay(rec.CheckIn, now, s.loc) {
			continue
		}
		if !rec.Status.CanTransitionTo(attendance.StatusAutoCompleted) {
			slog.WarnContext(ctx, "skipping stale open record with unexpected status",
				"record_id", rec.ID,
				"status", rec.Status,
			)
			continue
		}

		out := attendance.AutoCheckOutTime(rec.CheckIn, s.loc)
		status := attendance.StatusAutoCompleted
		if err := s.attendanceRepo.Update(ctx, rec.ID, attendance.RecordUpdate{CheckOut: &out, Status: &status}); err != nil {
			return nil, storeFailure("auto-complete record", err)
		}

		rec.CheckOut = &out
		rec.Status = status
		closed = append(closed, rec)

		slog.InfoContext(ctx, "auto-completed stale attendance record",
			"employee_id", employeeID,
			"record_id", rec.ID,
			"check_out", formatInstant(out),
		)
	}

	return closed, nil
}

// ReconcileAll implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ReconcileAll(ctx context.Context) (int, error) {
	now := s.clock.Now()
	startOfToday, _ := attendance.DayRange(now, s.loc)

	stale, err := s.attendanceRepo.ListOpenCheckedInBefore(ctx, startOfToday)
	if err != nil {
		return 0, storeFailure("list stale open records", err)
	}

	seen := make(map[string]struct{})
	var employeeIDs []string
	for _, rec := range stale {
		if _, ok := seen[rec.EmployeeID]; ok {
			continue
		}
		seen[rec.EmployeeID] = struct{}{}
		employeeIDs = append(employeeIDs, rec.EmployeeID)
	}

	closedPerEmployee := make([]int, len(employeeIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, employeeID := range employeeIDs {
		g.Go(func() error {
			n, err := s.ReconcileStaleOpenRecords(gctx, employeeID)
			if err != nil {
				// one employee's failure must not stop the others
				slog.ErrorContext(gctx, "failed to reconcile employee", "employee_id", employeeID, "error", err)
				return nil
			}
			closedPerEmployee[i] = n
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, n := range closedPerEmployee {
		total += n
	}
	return total, nil
}

// ListRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListRecords(ctx context.Context, filter attendance.ListRecordsFilter) ([]attendance.RecordResponse, error) {
	if err := filter.Validate(s.loc); err != nil {
		return nil, err
	}

	records, err := s.attendanceRepo.ListByEmployee(ctx, filter.EmployeeID, filter.Bounds(s.loc))
	if err != nil {
		return nil, storeFailure("list records by employee", err)
	}

	resp := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, mapRecordToResponse(r))
	}
	return resp, nil
}

// GetStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStatus(ctx context.Context, employeeID string) (attendance.AttendanceStatusResponse, error) {
	if validator.IsEmpty(employeeID) {
		return attendance.AttendanceStatusResponse{}, validator.ValidationErrors{{
			Field:   "employee_id",
			Message: "employee_id is required",
		}}
	}

	now := s.clock.Now()
	start, next := attendance.DayRange(now, s.loc)

	today, err := s.attendanceRepo.GetByEmployeeAndRange(ctx, employeeID, start, next)
	if err != nil {
		return attendance.AttendanceStatusResponse{}, storeFailure("get today's record", err)
	}

	resp := attendance.AttendanceStatusResponse{
		EmployeeID: employeeID,
		Date:       now.In(s.loc).Format("2006-01-02"),
	}

	switch {
	case today == nil || today.Status == attendance.StatusIncomplete:
		resp.CanCheckIn = true
		resp.Message = msgCanCheckIn
	case today.IsOpen():
		resp.CanCheckOut = true
		resp.Message = msgCanCheckOut
	default:
		resp.Message = msgDayCompleted
	}

	if today != nil {
		view := mapRecordToResponse(*today)
		resp.HasCheckedIn = true
		resp.TodayAttendance = &view
		resp.HasOpenRecord = today.IsOpen()
	}

	return resp, nil
}

// ListToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListToday(ctx context.Context) ([]attendance.RecordResponse, error) {
	start, next := attendance.DayRange(s.clock.Now(), s.loc)

	records, err := s.attendanceRepo.ListByCheckInRange(ctx, start, next)
	if err != nil {
		return nil, storeFailure("list today's records", err)
	}
	return s.decorate(ctx, records)
}

// ListAll implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAll(ctx context.Context) ([]attendance.RecordResponse, error) {
	records, err := s.attendanceRepo.ListAll(ctx)
	if err != nil {
		return nil, storeFailure("list records", err)
	}
	return s.decorate(ctx, records)
}

// decorate maps records to views carrying the employee name, resolving each
// distinct employee once.
func (s *AttendanceServiceImpl) decorate(ctx context.Context, records []attendance.Record) ([]attendance.RecordResponse, error) {
	names := make(map[string]string)
	resp := make([]attendance.RecordResponse, 0, len(records))

	for _, r := range records {
		name, ok := names[r.EmployeeID]
		if !ok {
			found, known, err := s.employeeRepo.GetName(ctx, r.EmployeeID)
			if err != nil {
				return nil, storeFailure("resolve employee name", err)
			}
			name = employee.UnknownName
			if known {
				name = found
			}
			names[r.EmployeeID] = name
		}

		view := mapRecordToResponse(r)
		view.EmployeeName = &name
		resp = append(resp, view)
	}
	return resp, nil
}

// DeleteRecord implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteRecord(ctx context.Context, id string) error {
	if err := s.attendanceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			slog.WarnContext(ctx, "attendance record to delete was not found", "record_id", id)
			return nil
		}
		err = storeFailure("delete record", err)
		slog.ErrorContext(ctx, "failed to delete attendance record", "record_id", id, "error", err)
		return err
	}

	slog.InfoContext(ctx, "attendance record deleted", "record_id", id)
	s.publisher.PublishRecordEvent(attendance.EventDeleted, attendance.RecordResponse{ID: id})
	return nil
}

type recordEvent struct {
	eventType string
	record    attendance.Record
}

func (s *AttendanceServiceImpl) publish(events []recordEvent) {
	for _, e := range events {
		s.publisher.PublishRecordEvent(e.eventType, mapRecordToResponse(e.record))
	}
}

func markResponse(r attendance.Record, action attendance.Action, message string) attendance.MarkAttendanceResponse {
	return attendance.MarkAttendanceResponse{
		RecordID:   r.ID,
		Type:       action,
		Status:     r.Status,
		TimeStatus: r.TimeStatus,
		Message:    message,
	}
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func mapRecordToResponse(r attendance.Record) attendance.RecordResponse {
	resp := attendance.RecordResponse{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		CheckIn:    formatInstant(r.CheckIn),
		Status:     r.Status,
		TimeStatus: r.TimeStatus,
	}
	if r.CheckOut != nil {
		out := formatInstant(*r.CheckOut)
		resp.CheckOut = &out
	}
	return resp
}
