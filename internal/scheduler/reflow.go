package scheduler

import (
	"math"

	"github.com/julianstephens/hourplan/internal/constants"
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/utils"
)

// ReflowFrom recompacts worker w's schedule from cutoff onward.
//
// Slices dated before cutoff are returned untouched. Pinned (urgent) slices
// keep their date and hours and consume capacity first. Every other slice is
// aggregated per block, in order of first appearance, and laid out again
// earliest-first. A slice rebuilt for a (block, date) that already had one
// keeps that slice's id, so reflowing an unchanged schedule is a no-op.
//
// all may contain other workers' slices; only w's are returned.
func (s *Scheduler) ReflowFrom(w models.Worker, cutoff string, ov models.Overrides, all []models.TaskSlice) ([]models.TaskSlice, error) {
	start, err := utils.ParseDate(cutoff)
	if err != nil {
		return nil, invalidf("cutoff date: %v", err)
	}
	if w.ID == "" {
		return nil, invalidf("worker is required")
	}
	cutoff = utils.FormatDate(start)

	var before, pinned, movable []models.TaskSlice
	existingIDs := make(map[models.SliceKey]string)
	for _, sl := range all {
		switch {
		case sl.WorkerID != w.ID:
		case sl.Date < cutoff:
			before = append(before, sl)
		case sl.Pinned():
			pinned = append(pinned, sl)
		default:
			movable = append(movable, sl)
			existingIDs[sl.Key()] = sl.ID
		}
	}

	models.SortByDate(movable)
	models.SortByDate(pinned)
	queue := AggregateToQueue(movable)

	rebuilt := NewSliceSet()
	next := 0 // next pinned slice to place
	day := start
	for i := 0; len(queue) > 0; i++ {
		if i >= s.cfg.HorizonDays {
			var unplaced float64
			for _, q := range queue {
				unplaced += q.Hours
			}
			return nil, &CapacityExhaustedError{
				WorkerID: w.ID,
				From:     cutoff,
				Unplaced: utils.RoundHalf(unplaced),
				Horizon:  s.cfg.HorizonDays,
			}
		}

		date := utils.FormatDate(day)
		capLeft := s.capacityAt(w, day, ov)
		for next < len(pinned) && pinned[next].Date == date {
			rebuilt.MergeOrAppend(pinned[next])
			capLeft -= pinned[next].Hours
			next++
		}

		for len(queue) > 0 && capLeft > constants.HourEpsilon {
			head := &queue[0]
			take := math.Min(head.Hours, utils.FloorHalf(capLeft))
			if take <= 0 {
				break
			}
			key := models.SliceKey{WorkerID: w.ID, BlockID: head.BlockID, Date: date}
			id, ok := existingIDs[key]
			if !ok {
				id = s.newID()
			}
			rebuilt.MergeOrAppend(models.TaskSlice{
				ID:       id,
				BlockID:  head.BlockID,
				Label:    head.Label,
				Date:     date,
				Hours:    take,
				WorkerID: w.ID,
				Color:    head.Color,
				Kind:     head.Kind,
			})
			head.Hours = utils.RoundHalf(head.Hours - take)
			capLeft = utils.RoundHalf(capLeft - take)
			if head.Hours <= constants.HourEpsilon {
				queue = queue[1:]
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	// pinned slices past the last rebuilt day
	for ; next < len(pinned); next++ {
		rebuilt.MergeOrAppend(pinned[next])
	}

	out := make([]models.TaskSlice, 0, len(before)+rebuilt.Len())
	out = append(out, before...)
	out = append(out, rebuilt.Slices()...)
	return out, nil
}
