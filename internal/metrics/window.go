package metrics

import (
	"strings"
	"time"
)

// Window is a rolling aggregation period ending at the evaluation time.
type Window struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Days int    `json:"days" yaml:"days" toml:"days"`
}

// Named windows.
var (
	WindowWeekly      = Window{Name: "weekly", Days: 7}
	WindowFortnightly = Window{Name: "fortnightly", Days: 14}
	WindowMonthly     = Window{Name: "monthly", Days: 30}
)

// WindowByName returns the named window with its default day count.
func WindowByName(name string) (Window, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case WindowWeekly.Name:
		return WindowWeekly, true
	case WindowFortnightly.Name:
		return WindowFortnightly, true
	case WindowMonthly.Name:
		return WindowMonthly, true
	}
	return Window{}, false
}

// Range returns the half-open interval [start, end) the window covers at now.
func (w Window) Range(now time.Time) (time.Time, time.Time) {
	end := now.UTC()
	return end.AddDate(0, 0, -w.Days), end
}

// Weeks is the window length expressed in weeks.
func (w Window) Weeks() float64 {
	return float64(w.Days) / 7
}
