package mongodb

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/google/uuid"
)

type employeeDocument struct {
	ID                string    `bson:"_id"`
	Name              string    `bson:"name"`
	Email             string    `bson:"email"`
	EmployeeCode      string    `bson:"employee_code"`
	PasswordHash      string    `bson:"password_hash"`
	Role              string    `bson:"role"`
	FaceDescriptor    []float64 `bson:"face_descriptor,omitempty"`
	ProfilePictureURL *string   `bson:"profile_picture_url,omitempty"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func toEmployeeDocument(e employee.Employee) employeeDocument {
	return employeeDocument{
		ID:                e.ID,
		Name:              e.Name,
		Email:             e.Email,
		EmployeeCode:      e.EmployeeCode,
		PasswordHash:      e.PasswordHash,
		Role:              string(e.Role),
		FaceDescriptor:    e.FaceDescriptor,
		ProfilePictureURL: e.ProfilePictureURL,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func (d employeeDocument) toEntity() employee.Employee {
	return employee.Employee{
		ID:                d.ID,
		Name:              d.Name,
		Email:             d.Email,
		EmployeeCode:      d.EmployeeCode,
		PasswordHash:      d.PasswordHash,
		Role:              employee.Role(d.Role),
		FaceDescriptor:    d.FaceDescriptor,
		ProfilePictureURL: d.ProfilePictureURL,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type regularizationDocument struct {
	Status      string     `bson:"status"`
	Reason      string     `bson:"reason"`
	NewClockIn  *time.Time `bson:"new_clock_in,omitempty"`
	NewClockOut *time.Time `bson:"new_clock_out,omitempty"`
}

type attendanceDocument struct {
	ID               string                 `bson:"_id"`
	EmployeeID       string                 `bson:"employee_id"`
	Date             string                 `bson:"date"`
	ClockInTime      *time.Time             `bson:"clock_in_time,omitempty"`
	ClockOutTime     *time.Time             `bson:"clock_out_time,omitempty"`
	ClockInProofURL  *string                `bson:"clock_in_proof_url,omitempty"`
	ClockOutProofURL *string                `bson:"clock_out_proof_url,omitempty"`
	Status           string                 `bson:"status"`
	WorkMode         string                 `bson:"work_mode"`
	Latitude         *float64               `bson:"latitude,omitempty"`
	Longitude        *float64               `bson:"longitude,omitempty"`
	LateMinutes      int                    `bson:"late_minutes"`
	TotalWorkHours   *float64               `bson:"total_work_hours,omitempty"`
	Regularization   regularizationDocument `bson:"regularization"`
	Version          int64                  `bson:"version"`
	CreatedAt        time.Time              `bson:"created_at"`
	UpdatedAt        time.Time              `bson:"updated_at"`
}

// attendanceRow is an attendance document joined with its employee by $lookup.
type attendanceRow struct {
	attendanceDocument `bson:",inline"`
	Employee           *employeeDocument `bson:"employee,omitempty"`
}

func toRegularizationDocument(r attendance.Regularization) regularizationDocument {
	status := r.Status
	if status == "" {
		status = attendance.RegularizationNone
	}
	return regularizationDocument{
		Status:      string(status),
		Reason:      r.Reason,
		NewClockIn:  r.NewClockIn,
		NewClockOut: r.NewClockOut,
	}
}

func toAttendanceDocument(a attendance.Attendance) attendanceDocument {
	return attendanceDocument{
		ID:               a.ID,
		EmployeeID:       a.EmployeeID,
		Date:             a.Date,
		ClockInTime:      a.ClockInTime,
		ClockOutTime:     a.ClockOutTime,
		ClockInProofURL:  a.ClockInProofURL,
		ClockOutProofURL: a.ClockOutProofURL,
		Status:           string(a.Status),
		WorkMode:         string(a.WorkMode),
		Latitude:         a.Latitude,
		Longitude:        a.Longitude,
		LateMinutes:      a.LateMinutes,
		TotalWorkHours:   a.TotalWorkHours,
		Regularization:   toRegularizationDocument(a.Regularization),
		Version:          a.Version,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (r attendanceRow) toEntity() attendance.Attendance {
	d := r.attendanceDocument
	att := attendance.Attendance{
		ID:               d.ID,
		EmployeeID:       d.EmployeeID,
		Date:             d.Date,
		ClockInTime:      utcPtr(d.ClockInTime),
		ClockOutTime:     utcPtr(d.ClockOutTime),
		ClockInProofURL:  d.ClockInProofURL,
		ClockOutProofURL: d.ClockOutProofURL,
		Status:           attendance.Status(d.Status),
		WorkMode:         attendance.WorkMode(d.WorkMode),
		Latitude:         d.Latitude,
		Longitude:        d.Longitude,
		LateMinutes:      d.LateMinutes,
		TotalWorkHours:   d.TotalWorkHours,
		Regularization: attendance.Regularization{
			Status:      attendance.RegularizationStatus(d.Regularization.Status),
			Reason:      d.Regularization.Reason,
			NewClockIn:  utcPtr(d.Regularization.NewClockIn),
			NewClockOut: utcPtr(d.Regularization.NewClockOut),
		},
		Version:   d.Version,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if r.Employee != nil {
		att.EmployeeName = &r.Employee.Name
		att.EmployeeCode = &r.Employee.EmployeeCode
		att.EmployeeEmail = &r.Employee.Email
	}
	return att
}

// utcPtr normalizes decoded BSON datetimes, which come back in time.Local.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}
