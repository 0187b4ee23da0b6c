// Package planner implements the mutation operations on a planning snapshot.
// Every operation takes a snapshot by value and returns a new one together
// with the change set to persist; inputs are never modified.
package planner

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/scheduler"
	"github.com/julianstephens/hourplan/internal/utils"
)

// ErrNotFound is returned when a referenced worker, block or slice does not exist.
var ErrNotFound = errors.New("not found")

// Result is the outcome of a mutation.
type Result struct {
	Snapshot models.Snapshot
	Changes  models.ChangeSet
	// Overassigned lists days of the affected workers whose committed hours
	// exceed capacity. It is informational, never an error.
	Overassigned []models.DayLoad
	// Created holds the slices of a block created by the operation.
	Created []models.TaskSlice
}

type Planner struct {
	sched *scheduler.Scheduler
}

func New(sched *scheduler.Scheduler) *Planner {
	if sched == nil {
		sched = scheduler.New()
	}
	return &Planner{sched: sched}
}

// Scheduler returns the engine the planner drives.
func (p *Planner) Scheduler() *scheduler.Scheduler {
	return p.sched
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", scheduler.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func (p *Planner) worker(snap models.Snapshot, workerID string) (models.Worker, error) {
	if workerID == "" {
		return models.Worker{}, invalidf("worker is required")
	}
	w, ok := snap.Worker(workerID)
	if !ok {
		return models.Worker{}, notFoundf("worker %s", workerID)
	}
	return w, nil
}

func validDate(label, date string) (string, error) {
	t, err := utils.ParseDate(date)
	if err != nil {
		return "", invalidf("%s: %v", label, err)
	}
	return utils.FormatDate(t), nil
}

func validHours(h float64, allowZero bool) (float64, error) {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, invalidf("hours must be a finite number")
	}
	rounded := utils.RoundHalf(h)
	if rounded < 0 || (!allowZero && rounded == 0) {
		return 0, invalidf("hours must be positive after rounding to 0.5 (got %v)", h)
	}
	return rounded, nil
}

// reflow replaces w's slices in snap with the result of a reflow from cutoff.
func (p *Planner) reflow(snap models.Snapshot, w models.Worker, cutoff string) (models.Snapshot, []models.TaskSlice, error) {
	slices, err := p.sched.ReflowFrom(w, cutoff, snap.Overrides, snap.Slices)
	if err != nil {
		return models.Snapshot{}, nil, fmt.Errorf("failed to reflow worker %s from %s: %w", w.ID, cutoff, err)
	}
	return snap.ReplaceWorkerSlices(w.ID, slices), slices, nil
}

// finish computes overassignment for every worker the change set touches.
func (p *Planner) finish(snap models.Snapshot, changes models.ChangeSet, created []models.TaskSlice) Result {
	touched := make(map[string]bool)
	for id := range changes.WorkerSlices {
		touched[id] = true
	}
	for _, o := range changes.Overrides {
		touched[o.WorkerID] = true
	}
	for _, w := range changes.Workers {
		touched[w.ID] = true
	}

	var over []models.DayLoad
	for _, w := range snap.Workers {
		if touched[w.ID] {
			over = append(over, p.overassigned(snap, w)...)
		}
	}
	return Result{Snapshot: snap, Changes: changes, Overassigned: over, Created: created}
}

func (p *Planner) overassigned(snap models.Snapshot, w models.Worker) []models.DayLoad {
	idx := scheduler.NewDayIndex(snap.Slices, w.ID)
	dates := make([]string, 0, len(idx))
	for d := range idx {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var out []models.DayLoad
	for _, d := range dates {
		load := p.sched.DayLoad(w, d, snap.Overrides, idx)
		if load.Overassigned() {
			out = append(out, load)
		}
	}
	return out
}

// Overassigned lists every overassigned day in the snapshot, by worker then date.
func (p *Planner) Overassigned(snap models.Snapshot) []models.DayLoad {
	var out []models.DayLoad
	for _, w := range snap.Workers {
		out = append(out, p.overassigned(snap, w)...)
	}
	return out
}

// spliceBlock replaces blockID's slices in list with block, placed where the
// block's first slice was so the block keeps its place in the reflow queue.
// A block absent from list goes last.
func spliceBlock(list []models.TaskSlice, blockID string, block []models.TaskSlice) []models.TaskSlice {
	block = append([]models.TaskSlice(nil), block...)
	models.SortByDate(block)

	out := make([]models.TaskSlice, 0, len(list)+len(block))
	inserted := false
	for _, sl := range list {
		if sl.BlockID != blockID {
			out = append(out, sl)
			continue
		}
		if !inserted {
			out = append(out, block...)
			inserted = true
		}
	}
	if !inserted {
		out = append(out, block...)
	}
	return out
}

func singleWorker(workerID string, slices []models.TaskSlice) models.ChangeSet {
	return models.ChangeSet{WorkerSlices: map[string][]models.TaskSlice{workerID: slices}}
}
