package attendance

import (
	"context"
)

// AttendanceRepository defines data access methods for attendance records.
// Implementations enforce one record per (employee, date).
type AttendanceRepository interface {
	// GetByEmployeeAndDate returns nil when the employee has no record that day
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*Attendance, error)

	// Create inserts a new record; a second record for the same day returns ErrDuplicateClockIn
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID returns ErrRecordNotFound when missing
	GetByID(ctx context.Context, id string) (Attendance, error)

	// Modify loads the record, applies fn and persists the result atomically.
	// An error from fn aborts the write and is returned unchanged.
	Modify(ctx context.Context, id string, fn func(*Attendance) error) (Attendance, error)

	// UpsertRegularization attaches a request to the day's record, creating an
	// Absent record when none exists
	UpsertRegularization(ctx context.Context, employeeID string, date string, regularization Regularization) (Attendance, error)

	// List retrieves records joined with employee identity, filtered and paginated
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// CountByStatus counts the records of one day grouped by status
	CountByStatus(ctx context.Context, date string) (map[Status]int64, error)
}
