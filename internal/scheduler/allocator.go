package scheduler

import (
	"math"
	"strings"

	"github.com/julianstephens/hourplan/internal/constants"
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/utils"
)

// PlanRequest describes a block to lay out over a worker's free capacity.
type PlanRequest struct {
	Label  string
	Hours  float64
	Worker models.Worker
	Start  string
	// Floor raises Start when Start is earlier. Empty means no floor.
	Floor string
	// BlockID re-plans an existing block under its id. Empty allocates a new id.
	BlockID string
	// Color keeps an existing block's color. Empty derives one from the block id.
	Color string
	Kind  models.BlockKind
}

// PlanBlock places req.Hours greedily, day by day from the start date, on
// whatever capacity the existing slices leave free. Each visited day receives
// at most one slice. It returns only the new slices. Existing slices are never
// modified.
func (s *Scheduler) PlanBlock(req PlanRequest, ov models.Overrides, existing []models.TaskSlice) ([]models.TaskSlice, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, invalidf("block label is required")
	}
	if req.Worker.ID == "" {
		return nil, invalidf("worker is required")
	}
	if math.IsNaN(req.Hours) || math.IsInf(req.Hours, 0) {
		return nil, invalidf("hours must be a finite number")
	}
	hours := utils.RoundHalf(req.Hours)
	if hours <= 0 {
		return nil, invalidf("hours must be positive after rounding to 0.5 (got %v)", req.Hours)
	}

	start, err := utils.ParseDate(req.Start)
	if err != nil {
		return nil, invalidf("start date: %v", err)
	}
	if req.Floor != "" {
		floor, err := utils.ParseDate(req.Floor)
		if err != nil {
			return nil, invalidf("floor date: %v", err)
		}
		if start.Before(floor) {
			start = floor
		}
	}

	kind := req.Kind
	if kind == "" {
		kind = models.BlockKindNormal
	}
	if !kind.Valid() {
		return nil, invalidf("unknown block kind %q", kind)
	}
	blockID := req.BlockID
	if blockID == "" {
		blockID = s.newID()
	}
	color := req.Color
	if color == "" {
		color = ColorFor(kind, blockID)
	}

	used := NewDayIndex(existing, req.Worker.ID)
	out := NewSliceSet()
	remaining := hours
	day := start
	for i := 0; i < s.cfg.HorizonDays && remaining > constants.HourEpsilon; i++ {
		date := utils.FormatDate(day)
		free := s.capacityAt(req.Worker, day, ov) - used.Used(date)
		if free > constants.HourEpsilon {
			take := math.Min(remaining, utils.FloorHalf(free))
			if take > 0 {
				out.MergeOrAppend(models.TaskSlice{
					ID:       s.newID(),
					BlockID:  blockID,
					Label:    label,
					Date:     date,
					Hours:    take,
					WorkerID: req.Worker.ID,
					Color:    color,
					Kind:     kind,
				})
				used.Add(date, take)
				remaining = utils.RoundHalf(remaining - take)
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	if remaining > constants.HourEpsilon {
		return nil, &CapacityExhaustedError{
			WorkerID: req.Worker.ID,
			BlockID:  blockID,
			From:     utils.FormatDate(start),
			Unplaced: remaining,
			Horizon:  s.cfg.HorizonDays,
		}
	}
	return out.Slices(), nil
}
