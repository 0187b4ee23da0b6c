package planner

import (
	"time"

	"github.com/julianstephens/hourplan/internal/constants"
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/scheduler"
	"github.com/julianstephens/hourplan/internal/utils"
)

// ActualInput records the hours actually worked on a block on one day.
type ActualInput struct {
	WorkerID string  `json:"worker_id"`
	BlockID  string  `json:"block_id"`
	Date     string  `json:"date"`
	Hours    float64 `json:"hours"`
}

// SetActualHours fixes the block's slice on the given day to the recorded
// hours, drops the block's later slices and lays out whatever is left of the
// block from the following day. When the recorded hours exceed the day's
// capacity, the day's override is raised so capacity matches what happened.
func (p *Planner) SetActualHours(snap models.Snapshot, in ActualInput) (Result, error) {
	w, err := p.worker(snap, in.WorkerID)
	if err != nil {
		return Result{}, err
	}
	date, err := validDate("date", in.Date)
	if err != nil {
		return Result{}, err
	}
	value, err := validHours(in.Hours, true)
	if err != nil {
		return Result{}, err
	}

	// kept is what the remainder is planned around; rebuilt is the block's
	// new slice list.
	var (
		current     = snap.SlicesFor(w.ID)
		kept        []models.TaskSlice
		block       []models.TaskSlice
		rebuilt     []models.TaskSlice
		total       float64
		placedPrior float64
		dayID       string
	)
	for _, sl := range current {
		if sl.BlockID != in.BlockID {
			kept = append(kept, sl)
			continue
		}
		block = append(block, sl)
		total += sl.Hours
		switch {
		case sl.Date < date:
			placedPrior += sl.Hours
			kept = append(kept, sl)
			rebuilt = append(rebuilt, sl)
		case sl.Date == date:
			dayID = sl.ID
		}
	}
	if len(block) == 0 {
		return Result{}, notFoundf("block %s for worker %s", in.BlockID, w.ID)
	}
	models.SortByDate(block)
	proto := block[0]

	if value > 0 {
		if dayID == "" {
			dayID = p.sched.NewID()
		}
		fixed := proto
		fixed.ID = dayID
		fixed.Date = date
		fixed.Hours = value
		kept = append(kept, fixed)
		rebuilt = append(rebuilt, fixed)
	}

	changes := models.ChangeSet{}
	next := snap
	if o, changed := p.truthfulOverride(w, date, value, snap.Overrides); changed {
		next.Overrides = snap.Overrides.With(o)
		changes.Overrides = []models.DayOverride{o}
	}

	remaining := utils.RoundHalf(total - placedPrior - value)
	if remaining > constants.HourEpsilon {
		nextDay, err := utils.AddDays(date, 1)
		if err != nil {
			return Result{}, invalidf("date: %v", err)
		}
		replanned, err := p.sched.PlanBlock(scheduler.PlanRequest{
			Label:   proto.Label,
			Hours:   remaining,
			Worker:  w,
			Start:   nextDay,
			BlockID: proto.BlockID,
			Color:   proto.Color,
			Kind:    proto.Kind,
		}, next.Overrides, kept)
		if err != nil {
			return Result{}, err
		}
		rebuilt = append(rebuilt, replanned...)
	}

	list := spliceBlock(current, in.BlockID, rebuilt)
	next = next.ReplaceWorkerSlices(w.ID, list)
	changes.WorkerSlices = map[string][]models.TaskSlice{w.ID: list}
	return p.finish(next, changes, nil), nil
}

// truthfulOverride returns the override that gives date enough capacity for
// value hours, and whether it differs from the stored one. A worked day is
// never a vacation day.
func (p *Planner) truthfulOverride(w models.Worker, date string, value float64, ov models.Overrides) (models.DayOverride, bool) {
	current := ov.Lookup(w.ID, date)
	o := current
	if value <= 0 {
		return o, false
	}
	o.Vacation = false

	cfg := p.sched.Config()
	wd, _ := utils.Weekday(date)
	switch wd {
	case time.Saturday:
		o.SaturdayEnabled = true
	case time.Sunday:
		o.SundayEnabled = true
	default:
		capacity := p.sched.Capacity(w, date, ov.With(o))
		if excess := value - capacity; excess > constants.HourEpsilon {
			o.Extra = utils.ClampHours(utils.RoundHalf(o.Extra+excess), 0, cfg.MaxExtraHours)
		}
	}
	return o, o != current
}
