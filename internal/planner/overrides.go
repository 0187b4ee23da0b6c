package planner

import (
	"math"
	"time"

	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/utils"
)

func (p *Planner) normalizeExtra(extra float64) (float64, error) {
	if math.IsNaN(extra) || math.IsInf(extra, 0) || extra < 0 {
		return 0, invalidf("extra hours must be a non-negative number (got %v)", extra)
	}
	return utils.ClampHours(utils.RoundHalf(extra), 0, p.sched.Config().MaxExtraHours), nil
}

// EditDayOverride stores o for its (worker, date) and repacks the worker's
// schedule from that date. An all-default override clears the entry.
func (p *Planner) EditDayOverride(snap models.Snapshot, o models.DayOverride) (Result, error) {
	w, err := p.worker(snap, o.WorkerID)
	if err != nil {
		return Result{}, err
	}
	if o.Date, err = validDate("date", o.Date); err != nil {
		return Result{}, err
	}
	if o.Extra, err = p.normalizeExtra(o.Extra); err != nil {
		return Result{}, err
	}

	next := snap
	next.Overrides = snap.Overrides.With(o)
	next, slices, err := p.reflow(next, w, o.Date)
	if err != nil {
		return Result{}, err
	}

	changes := singleWorker(w.ID, slices)
	changes.Overrides = []models.DayOverride{o}
	return p.finish(next, changes, nil), nil
}

// RangeAction selects what ApplyRange changes on each date.
type RangeAction string

const (
	RangeExtra         RangeAction = "extra"
	RangeVacation      RangeAction = "vacation"
	RangeClearVacation RangeAction = "clear-vacation"
)

// RangeInput describes a bulk override edit over an inclusive date range.
// From and To may be given in either order.
type RangeInput struct {
	WorkerID string      `json:"worker_id"`
	From     string      `json:"from"`
	To       string      `json:"to"`
	Action   RangeAction `json:"action"`
	Extra    float64     `json:"extra,omitempty"`
}

// ApplyRange updates the override of every date in the range and repacks
// the worker's schedule once from the earliest date. Extra hours are only
// written on weekdays, where they have an effect.
func (p *Planner) ApplyRange(snap models.Snapshot, in RangeInput) (Result, error) {
	w, err := p.worker(snap, in.WorkerID)
	if err != nil {
		return Result{}, err
	}
	if _, err := validDate("from", in.From); err != nil {
		return Result{}, err
	}
	if _, err := validDate("to", in.To); err != nil {
		return Result{}, err
	}
	dates, err := utils.DateRange(in.From, in.To)
	if err != nil {
		return Result{}, invalidf("range: %v", err)
	}
	if horizon := p.sched.Config().HorizonDays; len(dates) > horizon {
		return Result{}, invalidf("range spans %d days, more than the %d day horizon", len(dates), horizon)
	}

	var extra float64
	switch in.Action {
	case RangeExtra:
		if extra, err = p.normalizeExtra(in.Extra); err != nil {
			return Result{}, err
		}
	case RangeVacation, RangeClearVacation:
	default:
		return Result{}, invalidf("unknown range action %q", in.Action)
	}

	ov := snap.Overrides
	var written []models.DayOverride
	for _, d := range dates {
		o := ov.Lookup(w.ID, d)
		switch in.Action {
		case RangeExtra:
			wd, _ := utils.Weekday(d)
			if wd == time.Saturday || wd == time.Sunday {
				continue
			}
			o.Extra = extra
		case RangeVacation:
			o.Vacation = true
		case RangeClearVacation:
			if _, ok := ov.Get(w.ID, d); !ok {
				continue
			}
			o.Vacation = false
		}
		ov = ov.With(o)
		written = append(written, o)
	}

	next := snap
	next.Overrides = ov
	next, slices, err := p.reflow(next, w, dates[0])
	if err != nil {
		return Result{}, err
	}

	changes := singleWorker(w.ID, slices)
	changes.Overrides = written
	return p.finish(next, changes, nil), nil
}
