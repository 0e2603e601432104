package employee

import (
	"time"
)

type Employee struct {
	ID        string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UnknownName is shown wherever an attendance record references an employee
// id that the directory does not know.
const UnknownName = "Unknown"
