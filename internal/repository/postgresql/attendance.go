package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const recordColumns = `id, employee_id, check_in, check_out, status, time_status, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.RecordRepository {
	return &attendanceRepository{db: db}
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var r attendance.Record
	err := row.Scan(&r.ID, &r.EmployeeID, &r.CheckIn, &r.CheckOut, &r.Status, &r.TimeStatus, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (a *attendanceRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]attendance.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Create implements attendance.RecordRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (employee_id, check_in, check_out, status, time_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.EmployeeID,
		record.CheckIn,
		record.CheckOut,
		record.Status,
		record.TimeStatus,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return record, nil
}

// Update implements attendance.RecordRepository.
func (a *attendanceRepository) Update(ctx context.Context, id string, update attendance.RecordUpdate) error {
	q := GetQuerier(ctx, a.db)

	updates := make([]string, 0)
	args := make([]interface{}, 0)
	argIdx := 1

	if update.CheckOut != nil {
		updates = append(updates, fmt.Sprintf("check_out = $%d", argIdx))
		args = append(args, *update.CheckOut)
		argIdx++
	}
	if update.Status != nil {
		updates = append(updates, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *update.Status)
		argIdx++
	}

	if len(updates) == 0 {
		return attendance.ErrNoUpdatableFields
	}

	updates = append(updates, "updated_at = NOW()")
	args = append(args, id)

	query := "UPDATE attendance_records SET " + strings.Join(updates, ", ") +
		fmt.Sprintf(" WHERE id = $%d RETURNING id", argIdx)

	var updatedID string
	if err := q.QueryRow(ctx, query, args...).Scan(&updatedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to update attendance record: %w", err)
	}

	return nil
}

// Delete implements attendance.RecordRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// GetByEmployeeAndRange implements attendance.RecordRepository.
func (a *attendanceRepository) GetByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND check_in >= $2
		  AND check_in < $3
		ORDER BY check_in DESC
		LIMIT 1
	`

	r, err := scanRecord(q.QueryRow(ctx, query, employeeID, start, end))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record by employee and range: %w", err)
	}

	return &r, nil
}

// ListByEmployee implements attendance.RecordRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, filter attendance.RecordFilter) ([]attendance.Record, error) {
	where := "WHERE employee_id = $1"
	args := []interface{}{employeeID}
	argIdx := 2

	if filter.CheckInFrom != nil {
		where += fmt.Sprintf(" AND check_in >= $%d", argIdx)
		args = append(args, *filter.CheckInFrom)
		argIdx++
	}
	if filter.CheckInTo != nil {
		where += fmt.Sprintf(" AND check_in <= $%d", argIdx)
		args = append(args, *filter.CheckInTo)
	}

	query := fmt.Sprintf(`SELECT %s FROM attendance_records %s ORDER BY check_in DESC`, recordColumns, where)

	records, err := a.queryRecords(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records by employee: %w", err)
	}
	return records, nil
}

// ListByCheckInRange implements attendance.RecordRepository.
func (a *attendanceRepository) ListByCheckInRange(ctx context.Context, start, end time.Time) ([]attendance.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE check_in >= $1 AND check_in < $2
		ORDER BY check_in DESC
	`

	records, err := a.queryRecords(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records by range: %w", err)
	}
	return records, nil
}

// ListOpenByEmployee implements attendance.RecordRepository.
func (a *attendanceRepository) ListOpenByEmployee(ctx context.Context, employeeID string) ([]attendance.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND check_out IS NULL
		ORDER BY check_in DESC
	`

	records, err := a.queryRecords(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance records: %w", err)
	}
	return records, nil
}

// ListOpenCheckedInBefore implements attendance.RecordRepository.
func (a *attendanceRepository) ListOpenCheckedInBefore(ctx context.Context, before time.Time) ([]attendance.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE check_out IS NULL AND check_in < $1
		ORDER BY check_in DESC
	`

	records, err := a.queryRecords(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale open attendance records: %w", err)
	}
	return records, nil
}

// ListAll implements attendance.RecordRepository.
func (a *attendanceRepository) ListAll(ctx context.Context) ([]attendance.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM attendance_records ORDER BY check_in DESC`

	records, err := a.queryRecords(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	return records, nil
}
