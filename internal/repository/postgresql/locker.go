package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type advisoryLocker struct {
	db *database.DB
}

// NewEmployeeLocker serializes work per employee with a transaction-scoped
// advisory lock. Everything fn does through its ctx commits or rolls back as one unit.
func NewEmployeeLocker(db *database.DB) attendance.Locker {
	return &advisoryLocker{db: db}
}

// Begin and commit failures are reported as attendance.ErrStoreFailure.
func (l *advisoryLocker) WithEmployeeLock(ctx context.Context, employeeID string, fn func(ctx context.Context) error) error {
	err := WithTransaction(ctx, l.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, l.db)
		if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, employeeID); err != nil {
			return fmt.Errorf("%w: failed to acquire employee lock: %w", attendance.ErrStoreFailure, err)
		}
		return fn(ctx)
	})
	if err != nil && !errors.Is(err, attendance.ErrStoreFailure) {
		return fmt.Errorf("%w: employee lock transaction: %w", attendance.ErrStoreFailure, err)
	}
	return err
}
