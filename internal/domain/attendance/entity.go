package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusAbsent  Status = "Absent"
	StatusHalfDay Status = "Half-day"
	StatusOnLeave Status = "On Leave"
	StatusHoliday Status = "Holiday"
)

var Statuses = []Status{StatusPresent, StatusLate, StatusAbsent, StatusHalfDay, StatusOnLeave, StatusHoliday}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type WorkMode string

const (
	WorkModeOffice WorkMode = "Office"
	WorkModeRemote WorkMode = "Remote"
)

func (m WorkMode) Valid() bool {
	return m == WorkModeOffice || m == WorkModeRemote
}

// WorkModeFor maps an on-site check to the work mode recorded on the punch.
func WorkModeFor(onSite bool) WorkMode {
	if onSite {
		return WorkModeOffice
	}
	return WorkModeRemote
}

type RegularizationStatus string

const (
	RegularizationNone     RegularizationStatus = "None"
	RegularizationPending  RegularizationStatus = "Pending"
	RegularizationApproved RegularizationStatus = "Approved"
	RegularizationRejected RegularizationStatus = "Rejected"
)

func (s RegularizationStatus) Valid() bool {
	switch s {
	case RegularizationNone, RegularizationPending, RegularizationApproved, RegularizationRejected:
		return true
	}
	return false
}

type PunchType string

const (
	PunchClockIn  PunchType = "clock-in"
	PunchClockOut PunchType = "clock-out"
)

// Regularization is an employee's correction request attached to a record.
// Only the latest request is kept.
type Regularization struct {
	Status      RegularizationStatus
	Reason      string
	NewClockIn  *time.Time
	NewClockOut *time.Time
}

// Attendance is one employee's record for one calendar day (Date is YYYY-MM-DD).
type Attendance struct {
	ID               string
	EmployeeID       string
	Date             string
	ClockInTime      *time.Time
	ClockOutTime     *time.Time
	ClockInProofURL  *string
	ClockOutProofURL *string
	Status           Status
	WorkMode         WorkMode
	Latitude         *float64
	Longitude        *float64
	LateMinutes      int
	TotalWorkHours   *float64
	Regularization   Regularization
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO
	EmployeeName  *string
	EmployeeCode  *string
	EmployeeEmail *string
}
