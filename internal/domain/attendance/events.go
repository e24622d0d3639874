package attendance

// Event names delivered on the live attendance stream.
const (
	EventClockIn                 = "attendance.clock_in"
	EventClockOut                = "attendance.clock_out"
	EventRegularizationRequested = "attendance.regularization_requested"
	EventRecordUpdated           = "attendance.updated"
	EventRegularizationRejected  = "attendance.regularization_rejected"
)

// Event reports a change to an attendance record.
type Event struct {
	Type       string             `json:"type"`
	EmployeeID string             `json:"employee_id"`
	Attendance AttendanceResponse `json:"attendance"`
}

// EventStream broadcasts attendance events. Admin subscribers receive every
// event; other subscribers only receive events about themselves.
type EventStream interface {
	Publish(event Event)
	Subscribe(employeeID string, all bool) (<-chan Event, func())
}
