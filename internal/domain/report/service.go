package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// ComputeTopPerformers ranks employees by lateness, earliness, attendance and overtime
	ComputeTopPerformers(ctx context.Context) (TopPerformersResponse, error)
}
