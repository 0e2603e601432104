package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// MarkAttendance reconciles stale open records, then applies a check-in or check-out
	MarkAttendance(ctx context.Context, req MarkAttendanceRequest) (MarkAttendanceResponse, error)

	// ReconcileStaleOpenRecords force-closes the employee's open records from previous days
	ReconcileStaleOpenRecords(ctx context.Context, employeeID string) (int, error)

	// ReconcileAll runs reconciliation for every employee holding a stale open record
	ReconcileAll(ctx context.Context) (int, error)

	// ListRecords retrieves one employee's records, optionally bounded by check-in date
	ListRecords(ctx context.Context, filter ListRecordsFilter) ([]RecordResponse, error)

	// GetStatus reports today's attendance state for an employee
	GetStatus(ctx context.Context, employeeID string) (AttendanceStatusResponse, error)

	// ListToday retrieves today's records decorated with employee names
	ListToday(ctx context.Context) ([]RecordResponse, error)

	// ListAll retrieves every record decorated with employee names
	ListAll(ctx context.Context) ([]RecordResponse, error)

	// DeleteRecord removes a record unconditionally. Missing records are not an error
	DeleteRecord(ctx context.Context, id string) error
}
