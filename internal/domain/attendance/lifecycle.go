package attendance

import "time"

// ClockOut closes an open record at the given instant.
func (a *Attendance) ClockOut(at time.Time, proofURL *string) error {
	if a.ClockInTime == nil {
		return ErrNoPriorClockIn
	}
	if a.ClockOutTime != nil {
		return ErrAlreadyClockedOut
	}

	a.ClockOutTime = &at
	a.ClockOutProofURL = proofURL
	a.recomputeWorkHours()
	return nil
}

// ApplyAdminUpdate sets the provided fields and approves a pending
// regularization, copying its proposed times into the record. Approval fails
// with ErrInvalidRegularization, leaving the record untouched, when the merged
// times would have a clock-out without a clock-in or not after it.
func (a *Attendance) ApplyAdminUpdate(status *Status, workMode *WorkMode) error {
	pending := a.Regularization.Status == RegularizationPending

	in, out := a.ClockInTime, a.ClockOutTime
	if pending {
		if a.Regularization.NewClockIn != nil {
			in = a.Regularization.NewClockIn
		}
		if a.Regularization.NewClockOut != nil {
			out = a.Regularization.NewClockOut
		}
		if out != nil && (in == nil || !out.After(*in)) {
			return ErrInvalidRegularization
		}
	}

	if status != nil {
		a.Status = *status
	}
	if workMode != nil {
		a.WorkMode = *workMode
	}

	if !pending {
		return nil
	}

	a.Regularization.Status = RegularizationApproved
	if a.Regularization.NewClockIn != nil {
		newIn := *a.Regularization.NewClockIn
		a.ClockInTime = &newIn
	}
	if a.Regularization.NewClockOut != nil {
		newOut := *a.Regularization.NewClockOut
		a.ClockOutTime = &newOut
	}
	a.recomputeWorkHours()
	return nil
}

// RejectRegularization closes a pending request. Punch fields are left as they are.
func (a *Attendance) RejectRegularization() error {
	if a.Regularization.Status != RegularizationPending {
		return ErrRegularizationNotPending
	}
	a.Regularization.Status = RegularizationRejected
	return nil
}

func (a *Attendance) recomputeWorkHours() {
	if a.ClockInTime == nil || a.ClockOutTime == nil {
		return
	}
	hours := WorkHours(*a.ClockInTime, *a.ClockOutTime)
	a.TotalWorkHours = &hours
}

// NewPendingRegularization builds a request awaiting admin review.
func NewPendingRegularization(reason string, newClockIn, newClockOut *time.Time) Regularization {
	return Regularization{
		Status:      RegularizationPending,
		Reason:      reason,
		NewClockIn:  newClockIn,
		NewClockOut: newClockOut,
	}
}
