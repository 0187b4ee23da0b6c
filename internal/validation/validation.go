package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/scheduler"
	"github.com/julianstephens/hourplan/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidWorker    ConflictType = "invalid_worker"
	ConflictUnknownWorker    ConflictType = "unknown_worker"
	ConflictInvalidDate      ConflictType = "invalid_date"
	ConflictInvalidHours     ConflictType = "invalid_hours"
	ConflictInvalidKind      ConflictType = "invalid_kind"
	ConflictDuplicateSliceID ConflictType = "duplicate_slice_id"
	ConflictDuplicateSlice   ConflictType = "duplicate_slice"
	ConflictInvalidOverride  ConflictType = "invalid_override"
	ConflictOvercommitted    ConflictType = "overcommitted"
)

// Conflict represents one inconsistency found in a snapshot
type Conflict struct {
	Type        ConflictType `json:"type"`
	Description string       `json:"description"`
	WorkerID    string       `json:"worker_id,omitempty"`
	Date        string       `json:"date,omitempty"`
	SliceIDs    []string     `json:"slice_ids,omitempty"`
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict `json:"conflicts"`
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Count returns how many conflicts of type t were found.
func (vr *ValidationResult) Count(t ConflictType) int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}
	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(c Conflict) {
	vr.Conflicts = append(vr.Conflicts, c)
}

// Validator checks stored snapshots against the engine's invariants
type Validator struct {
	sched *scheduler.Scheduler
}

func New(sched *scheduler.Scheduler) *Validator {
	return &Validator{sched: sched}
}

// ValidateSnapshot reports every broken invariant in snap. Overcommitted days
// are reported too, although the engine allows them when urgent work is
// pinned past capacity or a slice was moved by hand.
func (v *Validator) ValidateSnapshot(snap models.Snapshot) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	workers := make(map[string]models.Worker, len(snap.Workers))
	for _, w := range snap.Workers {
		if err := w.Validate(); err != nil {
			result.add(Conflict{
				Type:        ConflictInvalidWorker,
				Description: fmt.Sprintf("Worker %q is invalid: %v", w.ID, err),
				WorkerID:    w.ID,
			})
		}
		workers[w.ID] = w
	}

	v.validateOverrides(snap, workers, &result)
	v.validateSlices(snap, workers, &result)
	v.validateLoad(snap, workers, &result)

	sort.SliceStable(result.Conflicts, func(i, j int) bool {
		a, b := result.Conflicts[i], result.Conflicts[j]
		if a.WorkerID != b.WorkerID {
			return a.WorkerID < b.WorkerID
		}
		return a.Date < b.Date
	})
	return result
}

func (v *Validator) validateOverrides(snap models.Snapshot, workers map[string]models.Worker, result *ValidationResult) {
	maxExtra := v.sched.Config().MaxExtraHours
	for workerID, byDate := range snap.Overrides {
		if _, ok := workers[workerID]; !ok {
			result.add(Conflict{
				Type:        ConflictUnknownWorker,
				Description: fmt.Sprintf("Overrides reference unknown worker %q", workerID),
				WorkerID:    workerID,
			})
			continue
		}
		for date, o := range byDate {
			if !utils.ValidateDate(date) {
				result.add(Conflict{
					Type:        ConflictInvalidDate,
					Description: fmt.Sprintf("Override for %q has invalid date %q", workerID, date),
					WorkerID:    workerID,
					Date:        date,
				})
				continue
			}
			if o.Extra < 0 || o.Extra > maxExtra || !utils.IsHalfMultiple(o.Extra) {
				result.add(Conflict{
					Type:        ConflictInvalidOverride,
					Description: fmt.Sprintf("Override for %q on %s has extra %v outside [0, %v] or off the half-hour grid", workerID, date, o.Extra, maxExtra),
					WorkerID:    workerID,
					Date:        date,
				})
			}
		}
	}
}

func (v *Validator) validateSlices(snap models.Snapshot, workers map[string]models.Worker, result *ValidationResult) {
	byID := make(map[string]int)
	byKey := make(map[models.SliceKey][]string)
	var keys []models.SliceKey

	for _, sl := range snap.Slices {
		byID[sl.ID]++
		if _, ok := workers[sl.WorkerID]; !ok {
			result.add(Conflict{
				Type:        ConflictUnknownWorker,
				Description: fmt.Sprintf("Slice %s references unknown worker %q", sl.ID, sl.WorkerID),
				WorkerID:    sl.WorkerID,
				Date:        sl.Date,
				SliceIDs:    []string{sl.ID},
			})
		}
		if !utils.ValidateDate(sl.Date) {
			result.add(Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Slice %s has invalid date %q", sl.ID, sl.Date),
				WorkerID:    sl.WorkerID,
				Date:        sl.Date,
				SliceIDs:    []string{sl.ID},
			})
		}
		if sl.Hours <= 0 || !utils.IsHalfMultiple(sl.Hours) {
			result.add(Conflict{
				Type:        ConflictInvalidHours,
				Description: fmt.Sprintf("Slice %s has %v hours, want a positive multiple of 0.5", sl.ID, sl.Hours),
				WorkerID:    sl.WorkerID,
				Date:        sl.Date,
				SliceIDs:    []string{sl.ID},
			})
		}
		if !sl.Kind.Valid() {
			result.add(Conflict{
				Type:        ConflictInvalidKind,
				Description: fmt.Sprintf("Slice %s has unknown kind %q", sl.ID, sl.Kind),
				WorkerID:    sl.WorkerID,
				Date:        sl.Date,
				SliceIDs:    []string{sl.ID},
			})
		}
		k := sl.Key()
		if _, seen := byKey[k]; !seen {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], sl.ID)
	}

	var dupIDs []string
	for id, n := range byID {
		if n > 1 {
			dupIDs = append(dupIDs, id)
		}
	}
	sort.Strings(dupIDs)
	for _, id := range dupIDs {
		result.add(Conflict{
			Type:        ConflictDuplicateSliceID,
			Description: fmt.Sprintf("Slice id %s is used %d times", id, byID[id]),
			SliceIDs:    []string{id},
		})
	}

	for _, k := range keys {
		if ids := byKey[k]; len(ids) > 1 {
			result.add(Conflict{
				Type:        ConflictDuplicateSlice,
				Description: fmt.Sprintf("Block %s has %d slices for %q on %s", k.BlockID, len(ids), k.WorkerID, k.Date),
				WorkerID:    k.WorkerID,
				Date:        k.Date,
				SliceIDs:    ids,
			})
		}
	}
}

func (v *Validator) validateLoad(snap models.Snapshot, workers map[string]models.Worker, result *ValidationResult) {
	used := make(map[string]map[string]float64)
	for _, sl := range snap.Slices {
		if _, ok := workers[sl.WorkerID]; !ok || !utils.ValidateDate(sl.Date) {
			continue
		}
		if used[sl.WorkerID] == nil {
			used[sl.WorkerID] = make(map[string]float64)
		}
		used[sl.WorkerID][sl.Date] += sl.Hours
	}

	for workerID, byDate := range used {
		w := workers[workerID]
		for date, hours := range byDate {
			load := models.DayLoad{
				WorkerID: workerID,
				Date:     date,
				Capacity: v.sched.Capacity(w, date, snap.Overrides),
				Used:     utils.RoundHalf(hours),
			}
			if load.Overassigned() {
				result.add(Conflict{
					Type:        ConflictOvercommitted,
					Description: fmt.Sprintf("%s is overcommitted on %s: %v hours assigned, %v available", w.Name, date, load.Used, load.Capacity),
					WorkerID:    workerID,
					Date:        date,
				})
			}
		}
	}
}
