package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

const ReconcileJobName = "reconcile_stale_attendances"

// AttendanceJobs auto-completes records left open from earlier days, so
// reports stay correct for employees who never come back to mark attendance.
type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	interval          time.Duration
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, interval time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		interval:          interval,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(ReconcileJobName, j.interval, j.ReconcileStaleAttendances)
}

func (j *AttendanceJobs) ReconcileStaleAttendances(ctx context.Context) error {
	slog.Info("Cron: Starting reconcile stale attendances job")

	closed, err := j.attendanceService.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to reconcile stale attendances: %w", err)
	}

	slog.Info("Cron: Reconcile stale attendances job completed", "auto_completed", closed)
	return nil
}
