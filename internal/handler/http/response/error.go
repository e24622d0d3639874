package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/face"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// errorMappings is checked in order with errors.Is.
var errorMappings = []errorMapping{
	// Auth
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token"},
	{auth.ErrAdminPrivilegeRequired, http.StatusForbidden, CodeForbidden, "Admin privilege required"},

	// Employee
	{employee.ErrEmployeeNotFound, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "Employee not found"},
	{employee.ErrEmployeeCodeExists, http.StatusConflict, "EMPLOYEE_CODE_EXISTS", "Employee code already exists"},
	{employee.ErrEmailExists, http.StatusConflict, "EMAIL_EXISTS", "Email already registered"},

	// Face
	{face.ErrFaceNotRecognized, http.StatusUnauthorized, "FACE_NOT_RECOGNIZED", "Face not recognized"},

	// Attendance
	{attendance.ErrDuplicateClockIn, http.StatusConflict, "DUPLICATE_CLOCK_IN", "Already clocked in today"},
	{attendance.ErrAlreadyClockedOut, http.StatusConflict, "ALREADY_CLOCKED_OUT", "Already clocked out today"},
	{attendance.ErrRegularizationNotPending, http.StatusConflict, "REGULARIZATION_NOT_PENDING", "Regularization is not pending"},
	{attendance.ErrInvalidRegularization, http.StatusConflict, "INVALID_REGULARIZATION", "Approved times would put clock-out before clock-in"},
	{attendance.ErrConcurrentUpdate, http.StatusConflict, "CONCURRENT_UPDATE", "Record was modified concurrently, please retry"},
	{attendance.ErrNoPriorClockIn, http.StatusBadRequest, "NO_CLOCK_IN", "No clock-in found for today"},
	{attendance.ErrWeekendRejected, http.StatusBadRequest, "WEEKEND", "Attendance cannot be marked on weekends"},
	{attendance.ErrRecordNotFound, http.StatusNotFound, "ATTENDANCE_NOT_FOUND", "Attendance record not found"},
	{attendance.ErrStorage, http.StatusInternalServerError, "STORAGE_UNAVAILABLE", "Attendance storage is unavailable"},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			Error(w, m.status, m.code, m.message, nil)
			return
		}
	}
	Error(w, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred", nil)
}
