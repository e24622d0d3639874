package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// MarkPunch records a clock-in or clock-out for the employee in the request
	MarkPunch(ctx context.Context, req PunchRequest) (PunchResponse, error)

	// RequestRegularization files (or replaces) a correction request for a day
	RequestRegularization(ctx context.Context, req RegularizationRequest) (AttendanceResponse, error)

	// AdminUpdateRecord edits status/work mode and approves a pending regularization
	AdminUpdateRecord(ctx context.Context, req AdminUpdateRequest) (AttendanceResponse, error)

	// RejectRegularization rejects a pending regularization
	RejectRegularization(ctx context.Context, id string) (AttendanceResponse, error)

	// ListDashboard retrieves all records with employee identity (admin)
	ListDashboard(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetMyAttendance retrieves the records of one employee
	GetMyAttendance(ctx context.Context, employeeID string, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// GetAttendance retrieves a single record by ID
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// DailySummary counts a day's records per status
	DailySummary(ctx context.Context, date string) (DailySummaryResponse, error)
}
