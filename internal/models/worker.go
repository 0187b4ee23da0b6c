package models

import (
	"fmt"
	"strings"
	"time"
)

// Worker is a person whose days receive task slices.
type Worker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// WeekdayHours holds the base capacity for Monday..Friday.
	WeekdayHours [5]float64 `json:"weekday_hours"`
}

// BaseHours returns the weekday baseline for wd. Weekends have no baseline.
func (w Worker) BaseHours(wd time.Weekday) float64 {
	if wd == time.Saturday || wd == time.Sunday {
		return 0
	}
	return w.WeekdayHours[wd-time.Monday]
}

// Validate checks the worker's fields.
func (w Worker) Validate() error {
	if strings.TrimSpace(w.ID) == "" {
		return fmt.Errorf("worker id cannot be empty")
	}
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("worker name cannot be empty")
	}
	for i, h := range w.WeekdayHours {
		if h < 0 || h > 24 {
			return fmt.Errorf("%s hours must be between 0 and 24, got %v", (time.Monday + time.Weekday(i)).String(), h)
		}
	}
	return nil
}

// UniformWeek builds a Monday..Friday schedule with the same hours every day.
func UniformWeek(h float64) [5]float64 {
	return [5]float64{h, h, h, h, h}
}

// WeekFromList builds a schedule from 1 value (applied to every day) or 5 values.
func WeekFromList(hours []float64) ([5]float64, error) {
	switch len(hours) {
	case 1:
		return UniformWeek(hours[0]), nil
	case 5:
		var week [5]float64
		copy(week[:], hours)
		return week, nil
	default:
		return [5]float64{}, fmt.Errorf("expected 1 or 5 weekday hour values, got %d", len(hours))
	}
}
