package planner

import (
	"strings"

	"github.com/julianstephens/hourplan/internal/constants"
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/scheduler"
)

// CreateBlockInput describes new ordinary demand.
type CreateBlockInput struct {
	WorkerID string  `json:"worker_id"`
	Label    string  `json:"label"`
	Hours    float64 `json:"hours"`
	Start    string  `json:"start"`
	Floor    string  `json:"floor,omitempty"`
}

// CreateBlock lays out a new block over the worker's free capacity.
func (p *Planner) CreateBlock(snap models.Snapshot, in CreateBlockInput) (Result, error) {
	w, err := p.worker(snap, in.WorkerID)
	if err != nil {
		return Result{}, err
	}

	created, err := p.sched.PlanBlock(scheduler.PlanRequest{
		Label:  in.Label,
		Hours:  in.Hours,
		Worker: w,
		Start:  in.Start,
		Floor:  in.Floor,
		Kind:   models.BlockKindNormal,
	}, snap.Overrides, snap.Slices)
	if err != nil {
		return Result{}, err
	}

	slices := append(snap.SlicesFor(w.ID), created...)
	next := snap.ReplaceWorkerSlices(w.ID, slices)
	return p.finish(next, singleWorker(w.ID, slices), created), nil
}

// UrgentInput describes urgent work pinned to one day.
type UrgentInput struct {
	WorkerID string  `json:"worker_id"`
	Label    string  `json:"label"`
	Hours    float64 `json:"hours"`
	Date     string  `json:"date"`
}

// InsertUrgent places a new urgent block exactly on the given day, whatever
// the day's capacity, and repacks the worker's other work around it.
func (p *Planner) InsertUrgent(snap models.Snapshot, in UrgentInput) (Result, error) {
	w, err := p.worker(snap, in.WorkerID)
	if err != nil {
		return Result{}, err
	}
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return Result{}, invalidf("block label is required")
	}
	hours, err := validHours(in.Hours, false)
	if err != nil {
		return Result{}, err
	}
	date, err := validDate("date", in.Date)
	if err != nil {
		return Result{}, err
	}

	urgent := models.TaskSlice{
		ID:       p.sched.NewID(),
		BlockID:  p.sched.NewID(),
		Label:    label,
		Date:     date,
		Hours:    hours,
		WorkerID: w.ID,
		Color:    constants.UrgentColor,
		Kind:     models.BlockKindUrgent,
	}
	set := scheduler.NewSliceSet(snap.SlicesFor(w.ID)...)
	set.MergeOrAppend(urgent)

	next, slices, err := p.reflow(snap.ReplaceWorkerSlices(w.ID, set.Slices()), w, date)
	if err != nil {
		return Result{}, err
	}
	return p.finish(next, singleWorker(w.ID, slices), []models.TaskSlice{urgent}), nil
}

// DeleteBlock removes every slice of a block and pulls later work forward.
func (p *Planner) DeleteBlock(snap models.Snapshot, workerID, blockID string) (Result, error) {
	w, err := p.worker(snap, workerID)
	if err != nil {
		return Result{}, err
	}

	var kept []models.TaskSlice
	earliest := ""
	for _, sl := range snap.SlicesFor(w.ID) {
		if sl.BlockID != blockID {
			kept = append(kept, sl)
			continue
		}
		if earliest == "" || sl.Date < earliest {
			earliest = sl.Date
		}
	}
	if earliest == "" {
		return Result{}, notFoundf("block %s for worker %s", blockID, w.ID)
	}

	next, slices, err := p.reflow(snap.ReplaceWorkerSlices(w.ID, kept), w, earliest)
	if err != nil {
		return Result{}, err
	}
	return p.finish(next, singleWorker(w.ID, slices), nil), nil
}

// ResizeBlock changes a block's total hours and lays it out again from its
// first date, keeping its id, label, color and kind.
func (p *Planner) ResizeBlock(snap models.Snapshot, workerID, blockID string, hours float64) (Result, error) {
	w, err := p.worker(snap, workerID)
	if err != nil {
		return Result{}, err
	}
	total, err := validHours(hours, false)
	if err != nil {
		return Result{}, err
	}

	var kept, block []models.TaskSlice
	for _, sl := range snap.SlicesFor(w.ID) {
		if sl.BlockID == blockID {
			block = append(block, sl)
		} else {
			kept = append(kept, sl)
		}
	}
	if len(block) == 0 {
		return Result{}, notFoundf("block %s for worker %s", blockID, w.ID)
	}
	models.SortByDate(block)
	first := block[0]

	replanned, err := p.sched.PlanBlock(scheduler.PlanRequest{
		Label:   first.Label,
		Hours:   total,
		Worker:  w,
		Start:   first.Date,
		BlockID: first.BlockID,
		Color:   first.Color,
		Kind:    first.Kind,
	}, snap.Overrides, kept)
	if err != nil {
		return Result{}, err
	}

	list := spliceBlock(snap.SlicesFor(w.ID), blockID, replanned)
	next, slices, err := p.reflow(snap.ReplaceWorkerSlices(w.ID, list), w, first.Date)
	if err != nil {
		return Result{}, err
	}
	return p.finish(next, singleWorker(w.ID, slices), nil), nil
}

// FindBlocks returns the worker's blocks whose label contains query, ignoring
// case, ordered by first date. An empty query matches every block.
func (p *Planner) FindBlocks(snap models.Snapshot, workerID, query string) ([]models.BlockSummary, error) {
	w, err := p.worker(snap, workerID)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))

	var matches []models.TaskSlice
	for _, sl := range snap.SlicesFor(w.ID) {
		if q == "" || strings.Contains(strings.ToLower(sl.Label), q) {
			matches = append(matches, sl)
		}
	}
	return scheduler.SummarizeBlocks(matches), nil
}
