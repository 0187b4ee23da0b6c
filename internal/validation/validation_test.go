package validation

import (
	"strings"
	"testing"

	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/scheduler"
)

const (
	monday   = "2025-01-06"
	tuesday  = "2025-01-07"
	saturday = "2025-01-11"
)

func newValidator() *Validator {
	return New(scheduler.New())
}

func worker(id string) models.Worker {
	return models.Worker{ID: id, Name: strings.ToUpper(id), WeekdayHours: models.UniformWeek(8)}
}

func slice(id, block, date string, hours float64) models.TaskSlice {
	return models.TaskSlice{ID: id, BlockID: block, WorkerID: "ana", Label: "L", Date: date, Hours: hours, Color: "#000000", Kind: models.BlockKindNormal}
}

func TestValidateSnapshot_NoConflicts(t *testing.T) {
	snap := models.Snapshot{
		Workers: []models.Worker{worker("ana")},
		Overrides: models.OverridesFromList([]models.DayOverride{
			{WorkerID: "ana", Date: saturday, SaturdayEnabled: true},
		}),
		Slices: []models.TaskSlice{
			slice("s1", "b1", monday, 8),
			slice("s2", "b1", tuesday, 4),
			slice("s3", "b2", tuesday, 4),
			slice("s4", "b3", saturday, 8),
		},
	}

	result := newValidator().ValidateSnapshot(snap)
	if result.HasConflicts() {
		t.Errorf("expected no conflicts, got:\n%s", result.FormatReport())
	}
	if got := result.FormatReport(); got != "No conflicts detected." {
		t.Errorf("FormatReport = %q", got)
	}
}

func TestValidateSnapshot_Conflicts(t *testing.T) {
	tests := []struct {
		name string
		snap models.Snapshot
		want ConflictType
	}{
		{
			name: "invalid worker",
			snap: models.Snapshot{Workers: []models.Worker{{ID: "ana", Name: ""}}},
			want: ConflictInvalidWorker,
		},
		{
			name: "slice for unknown worker",
			snap: models.Snapshot{Slices: []models.TaskSlice{slice("s1", "b1", monday, 4)}},
			want: ConflictUnknownWorker,
		},
		{
			name: "override for unknown worker",
			snap: models.Snapshot{Overrides: models.OverridesFromList([]models.DayOverride{{WorkerID: "ghost", Date: monday, Vacation: true}})},
			want: ConflictUnknownWorker,
		},
		{
			name: "invalid slice date",
			snap: models.Snapshot{Workers: []models.Worker{worker("ana")}, Slices: []models.TaskSlice{slice("s1", "b1", "2025-13-01", 4)}},
			want: ConflictInvalidDate,
		},
		{
			name: "off-grid hours",
			snap: models.Snapshot{Workers: []models.Worker{worker("ana")}, Slices: []models.TaskSlice{slice("s1", "b1", monday, 1.25)}},
			want: ConflictInvalidHours,
		},
		{
			name: "zero hours",
			snap: models.Snapshot{Workers: []models.Worker{worker("ana")}, Slices: []models.TaskSlice{slice("s1", "b1", monday, 0)}},
			want: ConflictInvalidHours,
		},
		{
			name: "unknown kind",
			snap: models.Snapshot{Workers: []models.Worker{worker("ana")}, Slices: []models.TaskSlice{func() models.TaskSlice {
				s := slice("s1", "b1", monday, 2)
				s.Kind = "pinned"
				return s
			}()}},
			want: ConflictInvalidKind,
		},
		{
			name: "duplicate id",
			snap: models.Snapshot{Workers: []models.Worker{worker("ana")}, Slices: []models.TaskSlice{
				slice("s1", "b1", monday, 2),
				slice("s1", "b2", tuesday, 2),
			}},
			want: ConflictDuplicateSliceID,
		},
		{
			name: "duplicate key",
			snap: models.Snapshot{Workers: []models.Worker{worker("ana")}, Slices: []models.TaskSlice{
				slice("s1", "b1", monday, 2),
				slice("s2", "b1", monday, 2),
			}},
			want: ConflictDuplicateSlice,
		},
		{
			name: "extra above cap",
			snap: models.Snapshot{
				Workers:   []models.Worker{worker("ana")},
				Overrides: models.OverridesFromList([]models.DayOverride{{WorkerID: "ana", Date: monday, Extra: 12}}),
			},
			want: ConflictInvalidOverride,
		},
		{
			name: "overcommitted weekday",
			snap: models.Snapshot{Workers: []models.Worker{worker("ana")}, Slices: []models.TaskSlice{
				slice("s1", "b1", monday, 6),
				slice("s2", "b2", monday, 4),
			}},
			want: ConflictOvercommitted,
		},
		{
			name: "work on a disabled weekend",
			snap: models.Snapshot{Workers: []models.Worker{worker("ana")}, Slices: []models.TaskSlice{slice("s1", "b1", saturday, 1)}},
			want: ConflictOvercommitted,
		},
		{
			name: "work on vacation",
			snap: models.Snapshot{
				Workers:   []models.Worker{worker("ana")},
				Overrides: models.OverridesFromList([]models.DayOverride{{WorkerID: "ana", Date: monday, Vacation: true}}),
				Slices:    []models.TaskSlice{slice("s1", "b1", monday, 1)},
			},
			want: ConflictOvercommitted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newValidator().ValidateSnapshot(tt.snap)
			if result.Count(tt.want) == 0 {
				t.Errorf("expected a %s conflict, got:\n%s", tt.want, result.FormatReport())
			}
		})
	}
}

func TestValidateSnapshot_ExtraRaisesCapacity(t *testing.T) {
	snap := models.Snapshot{
		Workers:   []models.Worker{worker("ana")},
		Overrides: models.OverridesFromList([]models.DayOverride{{WorkerID: "ana", Date: monday, Extra: 2}}),
		Slices:    []models.TaskSlice{slice("s1", "b1", monday, 10)},
	}
	result := newValidator().ValidateSnapshot(snap)
	if result.HasConflicts() {
		t.Errorf("10 hours fit 8 + 2 extra, got:\n%s", result.FormatReport())
	}
}

func TestFormatReport(t *testing.T) {
	result := ValidationResult{Conflicts: []Conflict{
		{Type: ConflictOvercommitted, Description: "first"},
		{Type: ConflictInvalidHours, Description: "second"},
	}}
	report := result.FormatReport()
	if !strings.HasPrefix(report, "Conflicts detected:") || !strings.Contains(report, "- first\n- second\n") {
		t.Errorf("unexpected report:\n%s", report)
	}
}
