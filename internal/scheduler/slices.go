package scheduler

import (
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/utils"
)

// SliceSet is an ordered slice collection that keeps at most one slice per
// (worker, block, date). Same-key additions merge into the existing slice.
type SliceSet struct {
	slices []models.TaskSlice
	index  map[models.SliceKey]int
}

// NewSliceSet builds a set from initial, merging duplicates.
func NewSliceSet(initial ...models.TaskSlice) *SliceSet {
	ss := &SliceSet{
		slices: make([]models.TaskSlice, 0, len(initial)),
		index:  make(map[models.SliceKey]int, len(initial)),
	}
	for _, sl := range initial {
		ss.MergeOrAppend(sl)
	}
	return ss
}

// MergeOrAppend adds candidate's hours to the slice with the same key, or
// appends candidate. It reports whether a merge happened.
func (ss *SliceSet) MergeOrAppend(candidate models.TaskSlice) bool {
	key := candidate.Key()
	if i, ok := ss.index[key]; ok {
		ss.slices[i].Hours = utils.RoundHalf(ss.slices[i].Hours + candidate.Hours)
		return true
	}
	ss.index[key] = len(ss.slices)
	ss.slices = append(ss.slices, candidate)
	return false
}

// Get returns the slice stored under key.
func (ss *SliceSet) Get(key models.SliceKey) (models.TaskSlice, bool) {
	i, ok := ss.index[key]
	if !ok {
		return models.TaskSlice{}, false
	}
	return ss.slices[i], true
}

// Len returns the number of slices.
func (ss *SliceSet) Len() int {
	return len(ss.slices)
}

// Slices returns a copy of the slices in insertion order.
func (ss *SliceSet) Slices() []models.TaskSlice {
	return append([]models.TaskSlice(nil), ss.slices...)
}

// AggregateToQueue collapses chronologically sorted slices into one demand
// entry per block, in first-occurrence order.
func AggregateToQueue(slices []models.TaskSlice) []models.QueueItem {
	positions := make(map[string]int)
	var queue []models.QueueItem
	for _, sl := range slices {
		i, ok := positions[sl.BlockID]
		if !ok {
			i = len(queue)
			positions[sl.BlockID] = i
			queue = append(queue, models.QueueItem{
				BlockID: sl.BlockID,
				Label:   sl.Label,
				Color:   sl.Color,
				Kind:    sl.Kind,
			})
		}
		queue[i].Hours = utils.RoundHalf(queue[i].Hours + sl.Hours)
	}
	return queue
}

// SummarizeBlocks aggregates slices into one summary per (worker, block),
// ordered by first date.
func SummarizeBlocks(slices []models.TaskSlice) []models.BlockSummary {
	sorted := append([]models.TaskSlice(nil), slices...)
	models.SortByDate(sorted)

	type blockKey struct{ worker, block string }
	positions := make(map[blockKey]int)
	var out []models.BlockSummary
	for _, sl := range sorted {
		k := blockKey{sl.WorkerID, sl.BlockID}
		i, ok := positions[k]
		if !ok {
			i = len(out)
			positions[k] = i
			out = append(out, models.BlockSummary{
				BlockID:   sl.BlockID,
				WorkerID:  sl.WorkerID,
				Label:     sl.Label,
				Color:     sl.Color,
				Kind:      sl.Kind,
				FirstDate: sl.Date,
			})
		}
		out[i].LastDate = sl.Date
		out[i].TotalHours = utils.RoundHalf(out[i].TotalHours + sl.Hours)
	}
	return out
}
