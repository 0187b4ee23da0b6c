package models

// DayLoad reports capacity against committed hours for one worker-day.
type DayLoad struct {
	WorkerID string  `json:"worker_id"`
	Date     string  `json:"date"`
	Capacity float64 `json:"capacity"`
	Used     float64 `json:"used"`
	Vacation bool    `json:"vacation,omitempty"`
}

// Free returns the unallocated hours, never negative.
func (d DayLoad) Free() float64 {
	if d.Used >= d.Capacity {
		return 0
	}
	return d.Capacity - d.Used
}

// Excess returns the hours committed beyond capacity.
func (d DayLoad) Excess() float64 {
	if d.Used <= d.Capacity {
		return 0
	}
	return d.Used - d.Capacity
}

// Overassigned reports whether committed hours exceed capacity.
func (d DayLoad) Overassigned() bool {
	return d.Excess() > 1e-4
}
