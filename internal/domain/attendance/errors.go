package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn    = errors.New("you have already checked in today")
	ErrNotCheckedIn        = errors.New("you have not checked in today")
	ErrAlreadyCheckedOut   = errors.New("you have already checked out today")
	ErrInvalidAction       = errors.New("invalid attendance type")
	ErrInvalidCheckOutTime = errors.New("check-out must be after check-in")
	ErrInvalidTransition   = errors.New("attendance record cannot change to the requested status")
	ErrNoUpdatableFields   = errors.New("no updatable fields provided for attendance update")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrStoreFailure       = errors.New("attendance store failure")
)
