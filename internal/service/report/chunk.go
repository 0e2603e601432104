package report

import "github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"

// attendanceRecords is a contiguous slice of the full record list. offset is
// the position of its first record in that list.
type attendanceRecords struct {
	offset  int
	records []attendance.Record
}

func chunk(all []attendance.Record, size int) []attendanceRecords {
	if size <= 0 {
		size = len(all)
	}
	var out []attendanceRecords
	for start := 0; start < len(all); start += size {
		end := min(start+size, len(all))
		out = append(out, attendanceRecords{offset: start, records: all[start:end]})
	}
	return out
}
