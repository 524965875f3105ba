package clock

import "time"

// Clock supplies the current instant. The location of Now() is the
// location every day boundary is computed in.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock in the local time zone.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// At returns a Fixed clock for the given local date and time.
func At(year int, month time.Month, day, hour, min int) Fixed {
	return Fixed(time.Date(year, month, day, hour, min, 0, 0, time.Local))
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
