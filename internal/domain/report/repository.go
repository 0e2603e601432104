package report

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

// RecordSource is the read side of the record store the aggregator needs.
type RecordSource interface {
	ListAll(ctx context.Context) ([]attendance.Record, error)
}

// EmployeeSource is the read side of the employee directory the aggregator needs.
type EmployeeSource interface {
	List(ctx context.Context) ([]employee.Employee, error)
}
