package attendance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ClockTime is a wall-clock time of day without a date.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" (24h).
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidShiftStart, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidShiftStart, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidShiftStart, s)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Policy holds the shift rules punches are classified against.
type Policy struct {
	ShiftStart ClockTime
	Weekends   []time.Weekday
	Location   *time.Location
}

// DefaultPolicy starts the shift at 10:00 UTC with Saturday and Sunday off.
func DefaultPolicy() Policy {
	return Policy{
		ShiftStart: ClockTime{Hour: 10},
		Weekends:   []time.Weekday{time.Saturday, time.Sunday},
		Location:   time.UTC,
	}
}

// NewPolicy builds a policy from its textual configuration. An empty timezone means UTC.
func NewPolicy(shiftStart string, weekends []time.Weekday, timezone string) (Policy, error) {
	start, err := ParseClockTime(shiftStart)
	if err != nil {
		return Policy{}, err
	}

	loc := time.UTC
	if timezone != "" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return Policy{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
	}

	return Policy{
		ShiftStart: start,
		Weekends:   append([]time.Weekday(nil), weekends...),
		Location:   loc,
	}, nil
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// LocalDate returns the YYYY-MM-DD calendar date of t in the policy location.
func (p Policy) LocalDate(t time.Time) string {
	return t.In(p.location()).Format(DateLayout)
}

// IsWeekend reports whether t falls on a configured weekend day.
func (p Policy) IsWeekend(t time.Time) bool {
	day := t.In(p.location()).Weekday()
	for _, w := range p.Weekends {
		if day == w {
			return true
		}
	}
	return false
}

// ShiftStartOn returns the shift start on the same calendar day as t.
func (p Policy) ShiftStartOn(t time.Time) time.Time {
	local := t.In(p.location())
	return time.Date(local.Year(), local.Month(), local.Day(), p.ShiftStart.Hour, p.ShiftStart.Minute, 0, 0, p.location())
}

// Classify returns Present for a clock-in at or before the shift start and
// Late with the whole minutes elapsed otherwise.
func Classify(clockIn, shiftStart time.Time) (Status, int) {
	if !clockIn.After(shiftStart) {
		return StatusPresent, 0
	}
	return StatusLate, int(math.Floor(clockIn.Sub(shiftStart).Minutes()))
}

// WorkHours is the span between two punches in hours, rounded to 2 decimals.
func WorkHours(clockIn, clockOut time.Time) float64 {
	return math.Round(clockOut.Sub(clockIn).Hours()*100) / 100
}
