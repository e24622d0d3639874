package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// PUNCH DTOs
// ========================================

type PunchRequest struct {
	EmployeeID string    `json:"-"`
	Type       PunchType `json:"type"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	// Image is the proof snapshot, either a data URL or base64. Stored as-is.
	Image *string `json:"image,omitempty"`
}

func (r *PunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Type != PunchClockIn && r.Type != PunchClockOut {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: clock-in, clock-out",
		})
	}

	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateCoordinates(lat, lng *float64) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if (lat == nil) != (lng == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "latitude and longitude must be provided together",
		})
		return errs
	}
	if lat == nil {
		return nil
	}

	if !geo.ValidCoordinate(*lat, 0) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if !geo.ValidCoordinate(0, *lng) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	return errs
}

// FacePunchRequest is a kiosk punch where the employee is identified by face.
type FacePunchRequest struct {
	Descriptor []float64 `json:"descriptor"`
	PunchRequest
}

type PunchResponse struct {
	Message    string             `json:"message"`
	Attendance AttendanceResponse `json:"attendance"`
}

// ========================================
// ADMIN DTOs
// ========================================

type AdminUpdateRequest struct {
	ID       string  `json:"-"`
	Status   *string `json:"status,omitempty"`
	WorkMode *string `json:"work_mode,omitempty"`
}

func (r *AdminUpdateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Status != nil && !Status(*r.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + joinStatuses(),
		})
	}

	if r.WorkMode != nil && !WorkMode(*r.WorkMode).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "work_mode",
			Message: "work_mode must be one of: Office, Remote",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func joinStatuses() string {
	names := make([]string, 0, len(Statuses))
	for _, s := range Statuses {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// ========================================
// REGULARIZATION DTOs
// ========================================

type RegularizationRequest struct {
	EmployeeID   string  `json:"-"`
	Date         string  `json:"date"` // YYYY-MM-DD
	Reason       string  `json:"reason"`
	ClockInTime  *string `json:"clock_in_time,omitempty"`  // RFC3339
	ClockOutTime *string `json:"clock_out_time,omitempty"` // RFC3339
}

func (r *RegularizationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if len(r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	var in, out time.Time
	var inValid, outValid bool
	if r.ClockInTime != nil {
		if in, inValid = validator.IsValidDateTime(*r.ClockInTime); !inValid {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_in_time",
				Message: "clock_in_time must be an RFC3339 timestamp",
			})
		}
	}
	if r.ClockOutTime != nil {
		if out, outValid = validator.IsValidDateTime(*r.ClockOutTime); !outValid {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_out_time",
				Message: "clock_out_time must be an RFC3339 timestamp",
			})
		}
	}
	if inValid && outValid && !out.After(in) {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_out_time",
			Message: "clock_out_time must be after clock_in_time",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ProposedTimes returns the parsed proposed punches. Call after Validate.
func (r *RegularizationRequest) ProposedTimes() (in, out *time.Time) {
	if r.ClockInTime != nil {
		if t, ok := validator.IsValidDateTime(*r.ClockInTime); ok {
			t = t.UTC()
			in = &t
		}
	}
	if r.ClockOutTime != nil {
		if t, ok := validator.IsValidDateTime(*r.ClockOutTime); ok {
			t = t.UTC()
			out = &t
		}
	}
	return in, out
}

// ========================================
// RESPONSE DTOs
// ========================================

type EmployeeSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	EmployeeCode string `json:"employee_code"`
	Email        string `json:"email"`
}

type RegularizationResponse struct {
	Status      string  `json:"status"`
	Reason      string  `json:"reason,omitempty"`
	NewClockIn  *string `json:"new_clock_in,omitempty"`
	NewClockOut *string `json:"new_clock_out,omitempty"`
}

type AttendanceResponse struct {
	ID               string                 `json:"id"`
	EmployeeID       string                 `json:"employee_id"`
	Employee         *EmployeeSummary       `json:"employee,omitempty"`
	Date             string                 `json:"date"`
	ClockInTime      *string                `json:"clock_in_time,omitempty"`
	ClockOutTime     *string                `json:"clock_out_time,omitempty"`
	ClockInProofURL  *string                `json:"clock_in_proof_url,omitempty"`
	ClockOutProofURL *string                `json:"clock_out_proof_url,omitempty"`
	Status           string                 `json:"status"`
	WorkMode         string                 `json:"work_mode"`
	Latitude         *float64               `json:"latitude,omitempty"`
	Longitude        *float64               `json:"longitude,omitempty"`
	IsLate           bool                   `json:"is_late"`
	LateMinutes      int                    `json:"late_minutes"`
	TotalWorkHours   *float64               `json:"total_work_hours,omitempty"`
	Regularization   RegularizationResponse `json:"regularization"`
	CreatedAt        string                 `json:"created_at"`
	UpdatedAt        string                 `json:"updated_at"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type DailySummaryResponse struct {
	Date   string           `json:"date"`
	Total  int64            `json:"total"`
	Counts map[string]int64 `json:"counts"`
}

// ========================================
// FILTERS
// ========================================

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID           *string `json:"employee_id,omitempty"`
	EmployeeName         *string `json:"employee_name,omitempty"`
	Date                 *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate            *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate              *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status               *string `json:"status,omitempty"`
	RegularizationStatus *string `json:"regularization_status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, employee_name, clock_in_time, clock_out_time, status
	SortOrder string `json:"sort_order"` // asc, desc
}

var sortFields = []string{"date", "employee_name", "clock_in_time", "clock_out_time", "status"}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !Status(*f.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + joinStatuses(),
		})
	}

	if f.RegularizationStatus != nil && !RegularizationStatus(*f.RegularizationStatus).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "regularization_status",
			Message: "regularization_status must be one of: None, Pending, Approved, Rejected",
		})
	}

	// Date validation
	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	// Sort validation
	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, sortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: " + strings.Join(sortFields, ", "),
			})
		}
	} else {
		f.SortBy = "date" // Default sort
	}

	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// MyAttendanceFilter is the employee-facing filter; the employee comes from the token.
type MyAttendanceFilter struct {
	Date      *string `json:"date,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Status    *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// ForEmployee widens the filter to an AttendanceFilter scoped to one employee.
func (f MyAttendanceFilter) ForEmployee(employeeID string) AttendanceFilter {
	return AttendanceFilter{
		EmployeeID: &employeeID,
		Date:       f.Date,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		Status:     f.Status,
		Page:       f.Page,
		Limit:      f.Limit,
		SortBy:     f.SortBy,
		SortOrder:  f.SortOrder,
	}
}
