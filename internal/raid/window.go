package raid

import (
	"strings"
	"time"
)

// Window is one recurring day/time interval during which raiding is
// permitted. Start and End are "HH:mm" wall-clock strings compared
// lexicographically, both bounds inclusive.
type Window struct {
	Day   string `yaml:"day"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !strings.EqualFold(t.Weekday().String(), w.Day) {
		return false
	}
	hm := t.Format("15:04")
	return hm >= w.Start && hm <= w.End
}

// WindowConfig gates raiding to configured recurring intervals. Disabled
// means always open.
type WindowConfig struct {
	Enabled bool     `yaml:"enabled"`
	Windows []Window `yaml:"windows"`
}

// DefaultWindowConfig mirrors the stock raid schedule.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Enabled: true,
		Windows: []Window{
			{Day: "Wednesday", Start: "19:00", End: "22:00"},
			{Day: "Saturday", Start: "19:00", End: "22:00"},
		},
	}
}

// OpenAt reports whether raiding is permitted at t.
func (c WindowConfig) OpenAt(t time.Time) bool {
	if !c.Enabled {
		return true
	}
	for _, w := range c.Windows {
		if w.Contains(t) {
			return true
		}
	}
	return false
}
