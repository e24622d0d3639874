package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestAttendance_ClockOut(t *testing.T) {
	in := at(t, "2024-03-04T09:00:00Z")
	out := at(t, "2024-03-04T17:30:00Z")

	t.Run("computes hours", func(t *testing.T) {
		a := Attendance{ClockInTime: timePtr(in)}
		proof := "attendance/2024-03-04/x.jpg"

		require.NoError(t, a.ClockOut(out, &proof))
		require.NotNil(t, a.TotalWorkHours)
		assert.Equal(t, 8.5, *a.TotalWorkHours)
		assert.Equal(t, out, *a.ClockOutTime)
		assert.Equal(t, &proof, a.ClockOutProofURL)
	})

	t.Run("no clock in", func(t *testing.T) {
		a := Attendance{Status: StatusAbsent}
		assert.ErrorIs(t, a.ClockOut(out, nil), ErrNoPriorClockIn)
		assert.Nil(t, a.ClockOutTime)
	})

	t.Run("already out", func(t *testing.T) {
		first := at(t, "2024-03-04T16:00:00Z")
		a := Attendance{ClockInTime: timePtr(in), ClockOutTime: timePtr(first)}
		assert.ErrorIs(t, a.ClockOut(out, nil), ErrAlreadyClockedOut)
		assert.Equal(t, first, *a.ClockOutTime)
	})
}

func TestAttendance_ApplyAdminUpdate(t *testing.T) {
	t.Run("promotes pending and copies proposed times", func(t *testing.T) {
		newIn := at(t, "2024-03-04T09:00:00Z")
		newOut := at(t, "2024-03-04T18:00:00Z")
		a := Attendance{
			Status:         StatusAbsent,
			WorkMode:       WorkModeOffice,
			Regularization: NewPendingRegularization("forgot to punch", &newIn, &newOut),
		}
		status := StatusPresent

		require.NoError(t, a.ApplyAdminUpdate(&status, nil))

		assert.Equal(t, StatusPresent, a.Status)
		assert.Equal(t, WorkModeOffice, a.WorkMode)
		assert.Equal(t, RegularizationApproved, a.Regularization.Status)
		assert.Equal(t, newIn, *a.ClockInTime)
		assert.Equal(t, newOut, *a.ClockOutTime)
		require.NotNil(t, a.TotalWorkHours)
		assert.Equal(t, 9.0, *a.TotalWorkHours)
	})

	t.Run("partial proposal keeps other canonical time", func(t *testing.T) {
		in := at(t, "2024-03-04T10:20:00Z")
		newOut := at(t, "2024-03-04T18:50:00Z")
		a := Attendance{
			ClockInTime:    timePtr(in),
			Status:         StatusLate,
			Regularization: NewPendingRegularization("left late", nil, &newOut),
		}

		require.NoError(t, a.ApplyAdminUpdate(nil, nil))

		assert.Equal(t, in, *a.ClockInTime)
		assert.Equal(t, newOut, *a.ClockOutTime)
		assert.Equal(t, 8.5, *a.TotalWorkHours)
		assert.Equal(t, StatusLate, a.Status)
	})

	t.Run("no pending request only sets fields", func(t *testing.T) {
		in := at(t, "2024-03-04T09:00:00Z")
		a := Attendance{
			ClockInTime:    timePtr(in),
			Status:         StatusPresent,
			WorkMode:       WorkModeOffice,
			Regularization: Regularization{Status: RegularizationRejected},
		}
		mode := WorkModeRemote

		require.NoError(t, a.ApplyAdminUpdate(nil, &mode))

		assert.Equal(t, WorkModeRemote, a.WorkMode)
		assert.Equal(t, RegularizationRejected, a.Regularization.Status)
		assert.Nil(t, a.ClockOutTime)
		assert.Nil(t, a.TotalWorkHours)
	})

	t.Run("proposed clock in after existing clock out", func(t *testing.T) {
		in := at(t, "2024-03-04T09:00:00Z")
		out := at(t, "2024-03-04T17:00:00Z")
		newIn := at(t, "2024-03-04T20:00:00Z")
		hours := 8.0
		a := Attendance{
			ClockInTime:    timePtr(in),
			ClockOutTime:   timePtr(out),
			TotalWorkHours: &hours,
			Status:         StatusPresent,
			Regularization: NewPendingRegularization("wrong clock in", &newIn, nil),
		}
		status := StatusLate

		assert.ErrorIs(t, a.ApplyAdminUpdate(&status, nil), ErrInvalidRegularization)

		assert.Equal(t, StatusPresent, a.Status)
		assert.Equal(t, RegularizationPending, a.Regularization.Status)
		assert.Equal(t, in, *a.ClockInTime)
		assert.Equal(t, 8.0, *a.TotalWorkHours)
	})

	t.Run("proposed clock out without any clock in", func(t *testing.T) {
		newOut := at(t, "2024-03-04T17:00:00Z")
		a := Attendance{
			Status:         StatusAbsent,
			Regularization: NewPendingRegularization("left at five", nil, &newOut),
		}

		assert.ErrorIs(t, a.ApplyAdminUpdate(nil, nil), ErrInvalidRegularization)
		assert.Nil(t, a.ClockOutTime)
	})

	t.Run("equal times are rejected", func(t *testing.T) {
		same := at(t, "2024-03-04T09:00:00Z")
		a := Attendance{
			ClockInTime:    timePtr(same),
			Regularization: NewPendingRegularization("zero length", nil, &same),
		}

		assert.ErrorIs(t, a.ApplyAdminUpdate(nil, nil), ErrInvalidRegularization)
	})
}

func TestAttendance_RejectRegularization(t *testing.T) {
	in := at(t, "2024-03-04T09:00:00Z")
	proposedIn := at(t, "2024-03-04T08:00:00Z")
	a := Attendance{
		ClockInTime:    timePtr(in),
		Regularization: NewPendingRegularization("came early", &proposedIn, nil),
	}

	require.NoError(t, a.RejectRegularization())
	assert.Equal(t, RegularizationRejected, a.Regularization.Status)
	assert.Equal(t, in, *a.ClockInTime)

	assert.ErrorIs(t, a.RejectRegularization(), ErrRegularizationNotPending)
}
