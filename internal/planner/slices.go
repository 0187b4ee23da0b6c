package planner

import (
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/scheduler"
)

// DeleteSlice removes one slice and pulls the worker's later work forward.
func (p *Planner) DeleteSlice(snap models.Snapshot, sliceID string) (Result, error) {
	target, ok := snap.Slice(sliceID)
	if !ok {
		return Result{}, notFoundf("slice %s", sliceID)
	}
	w, err := p.worker(snap, target.WorkerID)
	if err != nil {
		return Result{}, err
	}

	var kept []models.TaskSlice
	for _, sl := range snap.SlicesFor(w.ID) {
		if sl.ID != sliceID {
			kept = append(kept, sl)
		}
	}

	next, slices, err := p.reflow(snap.ReplaceWorkerSlices(w.ID, kept), w, target.Date)
	if err != nil {
		return Result{}, err
	}
	return p.finish(next, singleWorker(w.ID, slices), nil), nil
}

// MoveSliceInput names a slice and where it should go. An empty WorkerID
// keeps the slice's worker.
type MoveSliceInput struct {
	SliceID  string `json:"slice_id"`
	WorkerID string `json:"worker_id,omitempty"`
	Date     string `json:"date"`
}

// MoveSlice moves one slice to another day and/or worker. It merges with the
// block's slice already there, if any. Nothing is reflowed, so the target day
// may end up overassigned.
func (p *Planner) MoveSlice(snap models.Snapshot, in MoveSliceInput) (Result, error) {
	src, ok := snap.Slice(in.SliceID)
	if !ok {
		return Result{}, notFoundf("slice %s", in.SliceID)
	}
	date, err := validDate("target date", in.Date)
	if err != nil {
		return Result{}, err
	}
	toWorker := in.WorkerID
	if toWorker == "" {
		toWorker = src.WorkerID
	}
	if _, err := p.worker(snap, toWorker); err != nil {
		return Result{}, err
	}
	if toWorker == src.WorkerID && date == src.Date {
		return p.finish(snap, models.ChangeSet{}, nil), nil
	}

	var srcSlices []models.TaskSlice
	for _, sl := range snap.SlicesFor(src.WorkerID) {
		if sl.ID != src.ID {
			srcSlices = append(srcSlices, sl)
		}
	}

	moved := src
	moved.WorkerID = toWorker
	moved.Date = date

	changes := models.ChangeSet{WorkerSlices: make(map[string][]models.TaskSlice)}
	next := snap
	if toWorker == src.WorkerID {
		set := scheduler.NewSliceSet(srcSlices...)
		set.MergeOrAppend(moved)
		changes.WorkerSlices[src.WorkerID] = set.Slices()
	} else {
		set := scheduler.NewSliceSet(snap.SlicesFor(toWorker)...)
		set.MergeOrAppend(moved)
		changes.WorkerSlices[src.WorkerID] = srcSlices
		changes.WorkerSlices[toWorker] = set.Slices()
	}
	for _, id := range changes.AffectedWorkers() {
		next = next.ReplaceWorkerSlices(id, changes.WorkerSlices[id])
	}
	return p.finish(next, changes, nil), nil
}
