package report

// ========================================
// TOP PERFORMERS
// ========================================

type EmployeeStats struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	LateCount       int     `json:"late_count"`
	EarlyCount      int     `json:"early_count"`
	AttendanceCount int     `json:"attendance_count"`
	OvertimeHours   float64 `json:"overtime_hours"`
}

type TopPerformersResponse struct {
	TopLate       []EmployeeStats `json:"top_late"`
	TopEarly      []EmployeeStats `json:"top_early"`
	TopAttendance []EmployeeStats `json:"top_attendance"`
	TopOvertime   []EmployeeStats `json:"top_overtime"`
}
