package models

// DayOverride is a per-(worker, day) exception to default capacity.
type DayOverride struct {
	WorkerID        string  `json:"worker_id"`
	Date            string  `json:"date"` // YYYY-MM-DD format
	Extra           float64 `json:"extra"`
	SaturdayEnabled bool    `json:"saturday_enabled"`
	SundayEnabled   bool    `json:"sunday_enabled"`
	Vacation        bool    `json:"vacation"`
}

// IsDefault reports whether the override has no effect on capacity.
func (o DayOverride) IsDefault() bool {
	return o.Extra == 0 && !o.SaturdayEnabled && !o.SundayEnabled && !o.Vacation
}

// Overrides indexes overrides by worker id, then date.
type Overrides map[string]map[string]DayOverride

// Get returns the override for (workerID, date), if any.
func (ov Overrides) Get(workerID, date string) (DayOverride, bool) {
	byDate, ok := ov[workerID]
	if !ok {
		return DayOverride{}, false
	}
	o, ok := byDate[date]
	return o, ok
}

// Lookup returns the override for (workerID, date) or a default one.
func (ov Overrides) Lookup(workerID, date string) DayOverride {
	if o, ok := ov.Get(workerID, date); ok {
		return o
	}
	return DayOverride{WorkerID: workerID, Date: date}
}

// With returns a copy of ov containing o. Only the affected worker's map is copied.
// A default override is stored as absence.
func (ov Overrides) With(o DayOverride) Overrides {
	if o.IsDefault() {
		return ov.Without(o.WorkerID, o.Date)
	}
	out := make(Overrides, len(ov)+1)
	for k, v := range ov {
		out[k] = v
	}
	byDate := make(map[string]DayOverride, len(ov[o.WorkerID])+1)
	for d, existing := range ov[o.WorkerID] {
		byDate[d] = existing
	}
	byDate[o.Date] = o
	out[o.WorkerID] = byDate
	return out
}

// Without returns a copy of ov with the (workerID, date) entry removed.
func (ov Overrides) Without(workerID, date string) Overrides {
	out := make(Overrides, len(ov))
	for k, v := range ov {
		out[k] = v
	}
	if _, ok := ov.Get(workerID, date); !ok {
		return out
	}
	byDate := make(map[string]DayOverride, len(ov[workerID]))
	for d, existing := range ov[workerID] {
		if d != date {
			byDate[d] = existing
		}
	}
	if len(byDate) == 0 {
		delete(out, workerID)
	} else {
		out[workerID] = byDate
	}
	return out
}

// Clone deep-copies ov.
func (ov Overrides) Clone() Overrides {
	out := make(Overrides, len(ov))
	for k, byDate := range ov {
		cp := make(map[string]DayOverride, len(byDate))
		for d, o := range byDate {
			cp[d] = o
		}
		out[k] = cp
	}
	return out
}

// OverridesFromList indexes a flat override list.
func OverridesFromList(list []DayOverride) Overrides {
	ov := make(Overrides)
	for _, o := range list {
		if ov[o.WorkerID] == nil {
			ov[o.WorkerID] = make(map[string]DayOverride)
		}
		ov[o.WorkerID][o.Date] = o
	}
	return ov
}
