package rules

import (
	"errors"
	"testing"
	"time"
)

func mustClock(t *testing.T, s string) Clock {
	t.Helper()
	c, err := ParseClock(s)
	if err != nil {
		t.Fatalf("ParseClock(%q) error = %v", s, err)
	}
	return c
}

func TestParseClock(t *testing.T) {
	c := mustClock(t, "06:30:00")
	if c != 6*3600+30*60 {
		t.Errorf("ParseClock() = %d", c)
	}
	if c.String() != "06:30:00" {
		t.Errorf("String() = %q", c.String())
	}
	for _, bad := range []string{"", "6:30", "25:00:00", "noon"} {
		if _, err := ParseClock(bad); !errors.Is(err, ErrInvalidClock) {
			t.Errorf("ParseClock(%q) error = %v, want ErrInvalidClock", bad, err)
		}
	}
}

func TestWindowContains(t *testing.T) {
	day := Window{Start: mustClock(t, "06:30:00"), End: mustClock(t, "17:59:59")}
	night, ok := day.Complement()
	if !ok {
		t.Fatal("Complement() ok = false, want true")
	}

	if night.String() != "18:00:00-06:29:59" {
		t.Errorf("Complement() = %s, want 18:00:00-06:29:59", night)
	}

	tests := []struct {
		clock   string
		inDay   bool
		inNight bool
	}{
		{"06:29:59", false, true},
		{"06:30:00", true, false},
		{"12:00:00", true, false},
		{"17:59:59", true, false},
		{"18:00:00", false, true},
		{"00:00:00", false, true},
		{"23:59:59", false, true},
	}
	for _, tt := range tests {
		c := mustClock(t, tt.clock)
		if got := day.Contains(c); got != tt.inDay {
			t.Errorf("day.Contains(%s) = %v, want %v", tt.clock, got, tt.inDay)
		}
		if got := night.Contains(c); got != tt.inNight {
			t.Errorf("night.Contains(%s) = %v, want %v", tt.clock, got, tt.inNight)
		}
	}
}

func TestWindowFull(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		full  bool
	}{
		{"whole day", "00:00:00", "23:59:59", true},
		{"whole day wrapping", "18:00:00", "17:59:59", true},
		{"office hours", "06:30:00", "17:59:59", false},
		{"single second", "12:00:00", "12:00:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Window{Start: mustClock(t, tt.start), End: mustClock(t, tt.end)}
			if got := w.Full(); got != tt.full {
				t.Errorf("Full() = %v, want %v", got, tt.full)
			}
			if _, ok := w.Complement(); ok == tt.full {
				t.Errorf("Complement() ok = %v, want %v", ok, !tt.full)
			}
		})
	}
}

func TestClockOf(t *testing.T) {
	ts := time.Date(2026, 1, 5, 17, 59, 59, 900_000_000, time.UTC)
	if got := ClockOf(ts).String(); got != "17:59:59" {
		t.Errorf("ClockOf() = %s", got)
	}
}
