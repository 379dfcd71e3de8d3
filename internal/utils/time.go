package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/proofstreak/internal/constants"
)

// Clock resolves "now" and the calendar it is evaluated in. The zero value uses
// the wall clock in UTC.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// NewClock returns a wall clock evaluated in the named timezone.
func NewClock(timezone string) (Clock, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return Clock{Now: time.Now, Location: loc}, nil
}

// FixedClock always reports t.
func FixedClock(t time.Time) Clock {
	return Clock{Now: func() time.Time { return t }, Location: t.Location()}
}

func (c Clock) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Current returns the current instant in the clock's location.
func (c Clock) Current() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().In(c.loc())
}

// Today returns midnight of the current calendar date.
func (c Clock) Today() time.Time {
	return StartOfDay(c.Current())
}

// TodayString returns the current calendar date as YYYY-MM-DD.
func (c Clock) TodayString() string {
	return c.Current().Format(constants.DateFormat)
}

// DayOf returns the calendar date of t (as YYYY-MM-DD) in the clock's location.
func (c Clock) DayOf(t time.Time) string {
	return t.In(c.loc()).Format(constants.DateFormat)
}

// MinuteString returns the current wall-clock time truncated to HH:MM.
func (c Clock) MinuteString() string {
	return c.Current().Format(constants.TimeFormat)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" the system's local timezone is returned; empty means UTC.
func LoadLocation(timezone string) (*time.Location, error) {
	switch timezone {
	case "", "UTC":
		return time.UTC, nil
	case "Local":
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	if len(timeStr) != len(constants.TimeFormat) {
		return false
	}
	_, err := ParseTime(timeStr)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}
