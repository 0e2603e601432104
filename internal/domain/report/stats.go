package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

const (
	// StandardWorkday is the baseline beyond which worked time counts as overtime.
	StandardWorkday = 5 * time.Hour
	// TopN is the length of each ranked list.
	TopN = 3
)

// Overtime returns the time worked beyond StandardWorkday, never negative.
func Overtime(checkIn, checkOut time.Time) time.Duration {
	worked := checkOut.Sub(checkIn)
	if worked <= StandardWorkday {
		return 0
	}
	return worked - StandardWorkday
}

type accumulator struct {
	stats    EmployeeStats
	first    int
	overtime time.Duration
}

// Accumulator builds per-employee counters from a stream of records.
// Overtime is summed as a Duration so that merging partial accumulators gives
// the same result regardless of how the records were split.
type Accumulator struct {
	names   map[string]string
	entries map[string]*accumulator
}

// NewAccumulator returns an empty accumulator resolving names from names.
// A missing id resolves to employee.UnknownName.
func NewAccumulator(names map[string]string) *Accumulator {
	return &Accumulator{
		names:   names,
		entries: make(map[string]*accumulator),
	}
}

// Add folds one record into the counters. index is the record's position in
// the full input and decides the tie-break order of its employee.
func (a *Accumulator) Add(index int, record attendance.Record) {
	e, ok := a.entries[record.EmployeeID]
	if !ok {
		name, known := a.names[record.EmployeeID]
		if !known {
			name = employee.UnknownName
		}
		e = &accumulator{
			stats: EmployeeStats{ID: record.EmployeeID, Name: name},
			first: index,
		}
		a.entries[record.EmployeeID] = e
	}
	if index < e.first {
		e.first = index
	}

	e.stats.AttendanceCount++
	switch record.TimeStatus {
	case attendance.TimeStatusLate:
		e.stats.LateCount++
	case attendance.TimeStatusEarly:
		e.stats.EarlyCount++
	}

	if record.CheckOut != nil && !record.CheckIn.IsZero() {
		e.overtime += Overtime(record.CheckIn, *record.CheckOut)
	}
}

// Merge adds other's counters into a.
func (a *Accumulator) Merge(other *Accumulator) {
	for id, o := range other.entries {
		e, ok := a.entries[id]
		if !ok {
			cp := *o
			a.entries[id] = &cp
			continue
		}
		if o.first < e.first {
			e.first = o.first
		}
		e.stats.AttendanceCount += o.stats.AttendanceCount
		e.stats.LateCount += o.stats.LateCount
		e.stats.EarlyCount += o.stats.EarlyCount
		e.overtime += o.overtime
	}
}

// Stats returns one entry per employee in order of first appearance.
func (a *Accumulator) Stats() []EmployeeStats {
	entries := make([]*accumulator, 0, len(a.entries))
	for _, e := range a.entries {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(x, y *accumulator) int {
		return cmp.Compare(x.first, y.first)
	})

	out := make([]EmployeeStats, 0, len(entries))
	for _, e := range entries {
		s := e.stats
		s.OvertimeHours = e.overtime.Hours()
		out = append(out, s)
	}
	return out
}

// TopBy returns up to TopN entries ordered by metric descending. Ties keep the
// input order.
func TopBy[T cmp.Ordered](stats []EmployeeStats, metric func(EmployeeStats) T) []EmployeeStats {
	ranked := make([]EmployeeStats, len(stats))
	copy(ranked, stats)
	slices.SortStableFunc(ranked, func(x, y EmployeeStats) int {
		return cmp.Compare(metric(y), metric(x))
	})
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	return ranked
}

// Rank builds the four top-performer lists from per-employee stats.
func Rank(stats []EmployeeStats) TopPerformersResponse {
	return TopPerformersResponse{
		TopLate:       TopBy(stats, func(s EmployeeStats) int { return s.LateCount }),
		TopEarly:      TopBy(stats, func(s EmployeeStats) int { return s.EarlyCount }),
		TopAttendance: TopBy(stats, func(s EmployeeStats) int { return s.AttendanceCount }),
		TopOvertime:   TopBy(stats, func(s EmployeeStats) float64 { return s.OvertimeHours }),
	}
}
