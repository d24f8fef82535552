package rules

import (
	"fmt"
	"time"
)

// ClockLayout is the time-of-day format used in configuration.
const ClockLayout = "15:04:05"

const secondsPerDay = 24 * 60 * 60

// Clock is a time of day in whole seconds since midnight.
type Clock int

// ParseClock parses "HH:MM:SS".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
}

// ClockOf returns the time of day of t in its own location.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// String renders the clock as "HH:MM:SS".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(c)/3600, int(c)%3600/60, int(c)%60)
}

// Window is an inclusive time-of-day range. Start after End wraps past
// midnight.
type Window struct {
	Start Clock
	End   Clock
}

// Contains reports whether c falls inside the window.
func (w Window) Contains(c Clock) bool {
	if w.Start <= w.End {
		return c >= w.Start && c <= w.End
	}
	return c >= w.Start || c <= w.End
}

// Full reports whether the window covers every second of the day.
func (w Window) Full() bool {
	return (w.End+1)%secondsPerDay == w.Start
}

// Complement returns the window covering every second w does not. It
// returns false for a full window, which has no complement.
func (w Window) Complement() (Window, bool) {
	if w.Full() {
		return Window{}, false
	}
	return Window{
		Start: (w.End + 1) % secondsPerDay,
		End:   (w.Start - 1 + secondsPerDay) % secondsPerDay,
	}, true
}

// String renders the window as "start-end".
func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
