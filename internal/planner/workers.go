package planner

import (
	"strings"

	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/scheduler"
	"github.com/julianstephens/hourplan/internal/utils"
)

// AddWorker registers a new worker. Workers start without any slices.
func (p *Planner) AddWorker(snap models.Snapshot, w models.Worker) (Result, error) {
	if err := w.Validate(); err != nil {
		return Result{}, invalidf("%v", err)
	}
	if _, exists := snap.Worker(w.ID); exists {
		return Result{}, invalidf("worker %s already exists", w.ID)
	}
	next := snap.WithWorker(w)
	return p.finish(next, models.ChangeSet{Workers: []models.Worker{w}}, nil), nil
}

// RenameWorker changes a worker's display name. Slices are untouched.
func (p *Planner) RenameWorker(snap models.Snapshot, workerID, name string) (Result, error) {
	w, err := p.worker(snap, workerID)
	if err != nil {
		return Result{}, err
	}
	w.Name = strings.TrimSpace(name)
	if err := w.Validate(); err != nil {
		return Result{}, invalidf("%v", err)
	}
	return p.finish(snap.WithWorker(w), models.ChangeSet{Workers: []models.Worker{w}}, nil), nil
}

// UpdateWorkerHours replaces a worker's weekday schedule and repacks the
// worker's work from effectiveFrom.
func (p *Planner) UpdateWorkerHours(snap models.Snapshot, workerID string, hours [5]float64, effectiveFrom string) (Result, error) {
	current, err := p.worker(snap, workerID)
	if err != nil {
		return Result{}, err
	}
	from, err := validDate("effective date", effectiveFrom)
	if err != nil {
		return Result{}, err
	}

	w := current
	for i, h := range hours {
		w.WeekdayHours[i] = utils.RoundHalf(h)
	}
	if err := w.Validate(); err != nil {
		return Result{}, invalidf("%v", err)
	}

	next, slices, err := p.reflow(snap.WithWorker(w), w, from)
	if err != nil {
		return Result{}, err
	}
	changes := singleWorker(w.ID, slices)
	changes.Workers = []models.Worker{w}
	return p.finish(next, changes, nil), nil
}

// DaySummaries reports capacity and usage for every day of [from, to].
func (p *Planner) DaySummaries(snap models.Snapshot, workerID, from, to string) ([]models.DayLoad, error) {
	w, err := p.worker(snap, workerID)
	if err != nil {
		return nil, err
	}
	if _, err := validDate("from", from); err != nil {
		return nil, err
	}
	if _, err := validDate("to", to); err != nil {
		return nil, err
	}
	dates, err := utils.DateRange(from, to)
	if err != nil {
		return nil, invalidf("range: %v", err)
	}
	if horizon := p.sched.Config().HorizonDays; len(dates) > horizon {
		return nil, invalidf("range spans %d days, more than the %d day horizon", len(dates), horizon)
	}

	idx := scheduler.NewDayIndex(snap.Slices, w.ID)
	loads := make([]models.DayLoad, 0, len(dates))
	for _, d := range dates {
		loads = append(loads, p.sched.DayLoad(w, d, snap.Overrides, idx))
	}
	return loads, nil
}
