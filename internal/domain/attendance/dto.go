package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// MARK ATTENDANCE DTOs
// ========================================

type MarkAttendanceRequest struct {
	EmployeeID string `json:"employee_id"`
	Type       string `json:"type"` // check-in, check-out
}

func (r *MarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if validator.IsEmpty(r.Type) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MarkAttendanceResponse struct {
	RecordID   string     `json:"record_id"`
	Type       Action     `json:"type"`
	Status     Status     `json:"status"`
	TimeStatus TimeStatus `json:"time_status"`
	Message    string     `json:"message"`
}

// ========================================
// RECORD DTOs
// ========================================

type RecordResponse struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName *string    `json:"employee_name,omitempty"`
	CheckIn      string     `json:"check_in"`
	CheckOut     *string    `json:"check_out"`
	Status       Status     `json:"status"`
	TimeStatus   TimeStatus `json:"time_status"`
}

type ListRecordsFilter struct {
	EmployeeID string  `json:"employee_id"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD or RFC3339
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD or RFC3339
}

func (f *ListRecordsFilter) Validate(loc *time.Location) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	var start, end *time.Time
	if f.StartDate != nil && *f.StartDate != "" {
		if t, ok := parseBound(*f.StartDate, loc, false); ok {
			start = &t
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD or RFC3339 format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if t, ok := parseBound(*f.EndDate, loc, true); ok {
			end = &t
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD or RFC3339 format",
			})
		}
	}

	if start != nil && end != nil && start.After(*end) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Bounds converts the textual dates into an inclusive RecordFilter.
// Call Validate first; unparsable bounds are ignored here.
func (f *ListRecordsFilter) Bounds(loc *time.Location) RecordFilter {
	var filter RecordFilter
	if f.StartDate != nil && *f.StartDate != "" {
		if t, ok := parseBound(*f.StartDate, loc, false); ok {
			filter.CheckInFrom = &t
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if t, ok := parseBound(*f.EndDate, loc, true); ok {
			filter.CheckInTo = &t
		}
	}
	return filter
}

// parseBound accepts a full timestamp or a plain date. A plain end date covers
// the whole day, so it resolves to the last nanosecond before the next midnight.
func parseBound(s string, loc *time.Location, endOfDay bool) (time.Time, bool) {
	if t, ok := validator.IsValidDateTime(s); ok {
		return t, true
	}
	d, ok := validator.IsValidDateIn(s, loc)
	if !ok {
		return time.Time{}, false
	}
	if endOfDay {
		_, next := DayRange(d, loc)
		return next.Add(-time.Nanosecond), true
	}
	return d, true
}

// ========================================
// ATTENDANCE STATUS DTOs
// ========================================

type AttendanceStatusResponse struct {
	EmployeeID      string          `json:"employee_id"`
	Date            string          `json:"date"`
	HasCheckedIn    bool            `json:"has_checked_in"`
	TodayAttendance *RecordResponse `json:"today_attendance,omitempty"`
	HasOpenRecord   bool            `json:"has_open_record"`
	CanCheckIn      bool            `json:"can_check_in"`
	CanCheckOut     bool            `json:"can_check_out"`
	Message         string          `json:"message"`
}
