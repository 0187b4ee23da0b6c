package scheduler

import (
	"time"

	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/utils"
)

// Capacity returns the hours worker w can accept on date.
// Malformed dates have no capacity.
func (s *Scheduler) Capacity(w models.Worker, date string, ov models.Overrides) float64 {
	day, err := utils.ParseDate(date)
	if err != nil {
		return 0
	}
	return s.capacityAt(w, day, ov)
}

func (s *Scheduler) capacityAt(w models.Worker, day time.Time, ov models.Overrides) float64 {
	o, _ := ov.Get(w.ID, utils.FormatDate(day))
	if o.Vacation {
		return 0
	}

	var total float64
	switch wd := day.Weekday(); wd {
	case time.Saturday:
		if o.SaturdayEnabled {
			total = s.cfg.WeekendHours
		}
	case time.Sunday:
		if o.SundayEnabled {
			total = s.cfg.WeekendHours
		}
	default:
		total = w.BaseHours(wd) + utils.ClampHours(o.Extra, 0, s.cfg.MaxExtraHours)
	}

	total = utils.RoundHalf(total)
	if total < 0 {
		return 0
	}
	return total
}

// UsedHours sums the hours committed to workerID on date.
func UsedHours(slices []models.TaskSlice, workerID, date string) float64 {
	var used float64
	for _, sl := range slices {
		if sl.WorkerID == workerID && sl.Date == date {
			used += sl.Hours
		}
	}
	return used
}

// DayIndex holds one worker's committed hours per date.
type DayIndex map[string]float64

// NewDayIndex indexes the hours of workerID's slices by date.
func NewDayIndex(slices []models.TaskSlice, workerID string) DayIndex {
	idx := make(DayIndex)
	for _, sl := range slices {
		if sl.WorkerID == workerID {
			idx[sl.Date] += sl.Hours
		}
	}
	return idx
}

// Used returns the hours committed on date.
func (d DayIndex) Used(date string) float64 {
	return d[date]
}

// Add commits h more hours on date.
func (d DayIndex) Add(date string, h float64) {
	d[date] = utils.RoundHalf(d[date] + h)
}

// DayLoad computes capacity and usage for one worker-day.
func (s *Scheduler) DayLoad(w models.Worker, date string, ov models.Overrides, used DayIndex) models.DayLoad {
	o, _ := ov.Get(w.ID, date)
	return models.DayLoad{
		WorkerID: w.ID,
		Date:     date,
		Capacity: s.Capacity(w, date, ov),
		Used:     used.Used(date),
		Vacation: o.Vacation,
	}
}
