package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrDuplicateClockIn  = errors.New("already clocked in")
	ErrNoPriorClockIn    = errors.New("you must clock in first")
	ErrAlreadyClockedOut = errors.New("already clocked out")
	ErrWeekendRejected   = errors.New("attendance cannot be marked on weekends")

	// Regularization errors
	ErrRegularizationNotPending = errors.New("regularization is not pending")
	ErrInvalidRegularization    = errors.New("approved times would put clock-out before clock-in")

	// General errors
	ErrRecordNotFound    = errors.New("attendance record not found")
	ErrConcurrentUpdate  = errors.New("attendance record was modified concurrently")
	ErrStorage           = errors.New("attendance storage failure")
	ErrInvalidShiftStart = errors.New("invalid shift start, expected HH:MM")
)
