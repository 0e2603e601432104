package attendance

import (
	"time"
)

type Record struct {
	ID         string
	EmployeeID string
	CheckIn    time.Time
	CheckOut   *time.Time
	Status     Status
	TimeStatus TimeStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// DTO
	EmployeeName *string
}

// IsOpen reports whether the record still waits for a check-out.
func (r Record) IsOpen() bool {
	return r.CheckOut == nil
}

type Status string

const (
	StatusPresent       Status = "present"
	StatusCompleted     Status = "completed"
	StatusIncomplete    Status = "incomplete"
	StatusAutoCompleted Status = "auto-completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusCompleted, StatusIncomplete, StatusAutoCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusAutoCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle step.
// A present record may close or be flagged incomplete; an incomplete record may
// still close.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPresent:
		return next == StatusCompleted || next == StatusAutoCompleted || next == StatusIncomplete
	case StatusIncomplete:
		return next == StatusCompleted || next == StatusAutoCompleted
	}
	return false
}

type TimeStatus string

const (
	TimeStatusEarly TimeStatus = "Early"
	TimeStatusGood  TimeStatus = "Good"
	TimeStatusLate  TimeStatus = "Late"
)

func (t TimeStatus) Valid() bool {
	switch t {
	case TimeStatusEarly, TimeStatusGood, TimeStatusLate:
		return true
	}
	return false
}

type Action string

const (
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
)

// ParseAction converts raw input into an Action, failing with ErrInvalidAction.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionCheckIn, ActionCheckOut:
		return Action(s), nil
	}
	return "", ErrInvalidAction
}
