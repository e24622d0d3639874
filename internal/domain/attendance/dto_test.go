package attendance

import (
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	return verrs.ToMap()
}

func TestPunchRequest_Validate(t *testing.T) {
	ok := PunchRequest{EmployeeID: "e1", Type: PunchClockIn}
	assert.NoError(t, ok.Validate())

	withLocation := PunchRequest{EmployeeID: "e1", Type: PunchClockOut, Latitude: f64Ptr(40.7), Longitude: f64Ptr(-73.9)}
	assert.NoError(t, withLocation.Validate())

	bad := PunchRequest{Type: "lunch", Latitude: f64Ptr(91), Longitude: f64Ptr(181)}
	fields := validationFields(t, bad.Validate())
	assert.Contains(t, fields, "employee_id")
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "latitude")
	assert.Contains(t, fields, "longitude")

	half := PunchRequest{EmployeeID: "e1", Type: PunchClockIn, Latitude: f64Ptr(10)}
	assert.Contains(t, validationFields(t, half.Validate()), "location")
}

func TestAdminUpdateRequest_Validate(t *testing.T) {
	ok := AdminUpdateRequest{ID: "r1", Status: strPtr("On Leave"), WorkMode: strPtr("Remote")}
	assert.NoError(t, ok.Validate())

	empty := AdminUpdateRequest{ID: "r1"}
	assert.NoError(t, empty.Validate())

	bad := AdminUpdateRequest{ID: "r1", Status: strPtr("present"), WorkMode: strPtr("WFH")}
	fields := validationFields(t, bad.Validate())
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "work_mode")
}

func TestRegularizationRequest_Validate(t *testing.T) {
	ok := RegularizationRequest{
		EmployeeID:   "e1",
		Date:         "2024-03-04",
		Reason:       "forgot",
		ClockInTime:  strPtr("2024-03-04T09:00:00Z"),
		ClockOutTime: strPtr("2024-03-04T17:00:00+00:00"),
	}
	require.NoError(t, ok.Validate())
	in, out := ok.ProposedTimes()
	require.NotNil(t, in)
	require.NotNil(t, out)
	assert.Equal(t, 8.0, out.Sub(*in).Hours())

	noTimes := RegularizationRequest{EmployeeID: "e1", Date: "2024-03-04", Reason: "sick"}
	require.NoError(t, noTimes.Validate())
	in, out = noTimes.ProposedTimes()
	assert.Nil(t, in)
	assert.Nil(t, out)

	badDate := RegularizationRequest{EmployeeID: "e1", Date: "04/03/2024", Reason: "x"}
	assert.Contains(t, validationFields(t, badDate.Validate()), "date")

	badTime := RegularizationRequest{EmployeeID: "e1", Date: "2024-03-04", Reason: "x", ClockInTime: strPtr("9am")}
	assert.Contains(t, validationFields(t, badTime.Validate()), "clock_in_time")

	reversed := RegularizationRequest{
		EmployeeID:   "e1",
		Date:         "2024-03-04",
		Reason:       "x",
		ClockInTime:  strPtr("2024-03-04T17:00:00Z"),
		ClockOutTime: strPtr("2024-03-04T09:00:00Z"),
	}
	assert.Contains(t, validationFields(t, reversed.Validate()), "clock_out_time")
}

func TestAttendanceFilter_Defaults(t *testing.T) {
	f := AttendanceFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, "date", f.SortBy)
	assert.Equal(t, "desc", f.SortOrder)

	bad := AttendanceFilter{Limit: 500, Status: strPtr("Gone"), StartDate: strPtr("yesterday"), SortBy: "salary"}
	fields := validationFields(t, bad.Validate())
	assert.Contains(t, fields, "limit")
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "start_date")
	assert.Contains(t, fields, "sort_by")
}

func TestMyAttendanceFilter_ForEmployee(t *testing.T) {
	my := MyAttendanceFilter{Status: strPtr("Late"), Page: 2, Limit: 5}
	f := my.ForEmployee("emp-1")

	require.NotNil(t, f.EmployeeID)
	assert.Equal(t, "emp-1", *f.EmployeeID)
	assert.Equal(t, "Late", *f.Status)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 5, f.Limit)
}
