package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultChunkSize is the number of records one worker folds before merging.
	DefaultChunkSize = 1024
	// DefaultWorkers bounds the number of concurrent accumulation workers.
	DefaultWorkers = 4
)

type ReportServiceImpl struct {
	records   report.RecordSource
	employees report.EmployeeSource
	chunkSize int
	workers   int
}

func NewReportService(records report.RecordSource, employees report.EmployeeSource) report.ReportService {
	return &ReportServiceImpl{
		records:   records,
		employees: employees,
		chunkSize: DefaultChunkSize,
		workers:   DefaultWorkers,
	}
}

// ComputeTopPerformers implements report.ReportService.
func (s *ReportServiceImpl) ComputeTopPerformers(ctx context.Context) (report.TopPerformersResponse, error) {
	var (
		names  map[string]string
		chunks []attendanceRecords
	)

	// the two snapshots are independent reads
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		all, err := s.records.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to load attendance records: %w", err)
		}
		chunks = chunk(all, s.chunkSize)
		return nil
	})
	g.Go(func() error {
		employees, err := s.employees.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to load employees: %w", err)
		}
		names = make(map[string]string, len(employees))
		for _, e := range employees {
			names[e.ID] = e.FullName
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "failed to compute top performers", "error", err)
		return report.TopPerformersResponse{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
	}

	partials := make([]*report.Accumulator, len(chunks))
	fold := new(errgroup.Group)
	fold.SetLimit(s.workers)
	for i, c := range chunks {
		fold.Go(func() error {
			acc := report.NewAccumulator(names)
			for j, r := range c.records {
				acc.Add(c.offset+j, r)
			}
			partials[i] = acc
			return nil
		})
	}
	_ = fold.Wait()

	total := report.NewAccumulator(names)
	for _, p := range partials {
		total.Merge(p)
	}

	return report.Rank(total.Stats()), nil
}
