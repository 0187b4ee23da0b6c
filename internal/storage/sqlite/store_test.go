package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "hourplan.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testWorker(id string) models.Worker {
	return models.Worker{ID: id, Name: strings.ToUpper(id), WeekdayHours: models.UniformWeek(8)}
}

func testSlice(id, worker, block, date string, hours float64) models.TaskSlice {
	return models.TaskSlice{
		ID:       id,
		BlockID:  block,
		WorkerID: worker,
		Label:    "Label " + block,
		Date:     date,
		Hours:    hours,
		Color:    "#123456",
		Kind:     models.BlockKindNormal,
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	if err == nil || !strings.Contains(err.Error(), "hourplan init") {
		t.Errorf("Load error = %v, want init hint", err)
	}
}

func TestInitThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hourplan.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	defer reopened.Close()
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reopened.GetConfigPath() != path {
		t.Errorf("GetConfigPath = %s, want %s", reopened.GetConfigPath(), path)
	}
}

func TestApplyChangeSet_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	cs := models.ChangeSet{
		Workers: []models.Worker{testWorker("ana"), testWorker("ben")},
		Overrides: []models.DayOverride{
			{WorkerID: "ana", Date: "2025-01-06", Extra: 2},
			{WorkerID: "ana", Date: "2025-01-11", SaturdayEnabled: true},
			{WorkerID: "ben", Date: "2025-01-07", Vacation: true},
		},
		WorkerSlices: map[string][]models.TaskSlice{
			"ana": {
				testSlice("s2", "ana", "b2", "2025-01-06", 4),
				testSlice("s1", "ana", "b1", "2025-01-06", 6),
			},
			"ben": {testSlice("s3", "ben", "b3", "2025-01-08", 8)},
		},
	}
	if err := store.ApplyChangeSet(ctx, cs); err != nil {
		t.Fatalf("ApplyChangeSet failed: %v", err)
	}

	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(snap.Workers) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(snap.Workers))
	}
	ana := snap.SlicesFor("ana")
	if len(ana) != 2 || ana[0].ID != "s2" || ana[1].ID != "s1" {
		t.Errorf("ana's slices should keep their stored order, got %+v", ana)
	}
	if o, ok := snap.Overrides.Get("ana", "2025-01-11"); !ok || !o.SaturdayEnabled {
		t.Errorf("saturday override not loaded: %+v", o)
	}
	if o, ok := snap.Overrides.Get("ben", "2025-01-07"); !ok || !o.Vacation {
		t.Errorf("vacation override not loaded: %+v", o)
	}
}

func TestApplyChangeSet_ReplacesOnlyAffectedWorkers(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	initial := models.ChangeSet{
		Workers: []models.Worker{testWorker("ana"), testWorker("ben")},
		WorkerSlices: map[string][]models.TaskSlice{
			"ana": {testSlice("s1", "ana", "b1", "2025-01-06", 8)},
			"ben": {testSlice("s2", "ben", "b2", "2025-01-06", 8)},
		},
	}
	if err := store.ApplyChangeSet(ctx, initial); err != nil {
		t.Fatalf("ApplyChangeSet failed: %v", err)
	}

	// s1 moves to ben under the same id
	moved := testSlice("s1", "ben", "b1", "2025-01-07", 8)
	err := store.ApplyChangeSet(ctx, models.ChangeSet{
		WorkerSlices: map[string][]models.TaskSlice{
			"ana": nil,
			"ben": {testSlice("s2", "ben", "b2", "2025-01-06", 8), moved},
		},
	})
	if err != nil {
		t.Fatalf("ApplyChangeSet failed: %v", err)
	}

	snap, _ := store.LoadSnapshot(ctx)
	if got := snap.SlicesFor("ana"); len(got) != 0 {
		t.Errorf("ana should have no slices, got %+v", got)
	}
	ben := snap.SlicesFor("ben")
	if len(ben) != 2 || ben[1].ID != "s1" || ben[1].Date != "2025-01-07" {
		t.Errorf("unexpected slices for ben: %+v", ben)
	}
}

func TestApplyChangeSet_DefaultOverrideDeletes(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	o := models.DayOverride{WorkerID: "ana", Date: "2025-01-06", Extra: 2}
	if err := store.ApplyChangeSet(ctx, models.ChangeSet{
		Workers:   []models.Worker{testWorker("ana")},
		Overrides: []models.DayOverride{o},
	}); err != nil {
		t.Fatalf("ApplyChangeSet failed: %v", err)
	}

	o.Extra = 0
	if err := store.ApplyChangeSet(ctx, models.ChangeSet{Overrides: []models.DayOverride{o}}); err != nil {
		t.Fatalf("ApplyChangeSet failed: %v", err)
	}
	snap, _ := store.LoadSnapshot(ctx)
	if _, ok := snap.Overrides.Get("ana", "2025-01-06"); ok {
		t.Error("default override should be removed from storage")
	}
}

func TestApplyChangeSet_Descriptions(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.ApplyChangeSet(ctx, models.ChangeSet{Descriptions: []models.Description{
		{Label: "Report", Text: "Use the Q1 template"},
		{Label: "Review", Text: "Two reviewers"},
	}}); err != nil {
		t.Fatalf("ApplyChangeSet failed: %v", err)
	}
	if err := store.ApplyChangeSet(ctx, models.ChangeSet{Descriptions: []models.Description{
		{Label: " Report ", Text: "Use the Q2 template"},
		{Label: "Review"},
	}}); err != nil {
		t.Fatalf("ApplyChangeSet failed: %v", err)
	}

	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	want := []models.Description{{Label: "Report", Text: "Use the Q2 template"}}
	if got := snap.Descriptions.List(); len(got) != 1 || got[0] != want[0] {
		t.Errorf("descriptions = %+v, want %+v", got, want)
	}
}

func TestApplyChangeSet_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.ApplyChangeSet(ctx, models.ChangeSet{
		Workers:      []models.Worker{testWorker("ana")},
		WorkerSlices: map[string][]models.TaskSlice{"ana": {testSlice("s1", "ana", "b1", "2025-01-06", 8)}},
	}); err != nil {
		t.Fatalf("ApplyChangeSet failed: %v", err)
	}

	// duplicate (worker, block, date) violates the unique constraint
	err := store.ApplyChangeSet(ctx, models.ChangeSet{
		WorkerSlices: map[string][]models.TaskSlice{"ana": {
			testSlice("s2", "ana", "b1", "2025-01-07", 4),
			testSlice("s3", "ana", "b1", "2025-01-07", 4),
		}},
	})
	if err == nil {
		t.Fatal("expected constraint violation")
	}

	snap, _ := store.LoadSnapshot(ctx)
	got := snap.SlicesFor("ana")
	if len(got) != 1 || got[0].ID != "s1" {
		t.Errorf("failed change set should leave storage untouched, got %+v", got)
	}
}

func TestWorkers(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if _, err := store.GetWorker(ctx, "ana"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetWorker on empty store = %v, want ErrNotFound", err)
	}

	w := testWorker("ana")
	w.WeekdayHours = [5]float64{8, 8, 8, 8, 6}
	if err := store.ApplyChangeSet(ctx, models.ChangeSet{
		Workers:      []models.Worker{w},
		Overrides:    []models.DayOverride{{WorkerID: "ana", Date: "2025-01-06", Extra: 1}},
		WorkerSlices: map[string][]models.TaskSlice{"ana": {testSlice("s1", "ana", "b1", "2025-01-06", 8)}},
	}); err != nil {
		t.Fatalf("ApplyChangeSet failed: %v", err)
	}

	got, err := store.GetWorker(ctx, "ana")
	if err != nil {
		t.Fatalf("GetWorker failed: %v", err)
	}
	if got != w {
		t.Errorf("GetWorker = %+v, want %+v", got, w)
	}

	w.Name = "Ana María"
	if err := store.ApplyChangeSet(ctx, models.ChangeSet{Workers: []models.Worker{w}}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	list, err := store.ListWorkers(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "Ana María" {
		t.Errorf("ListWorkers = %+v, %v", list, err)
	}

	if err := store.DeleteWorker(ctx, "ana"); err != nil {
		t.Fatalf("DeleteWorker failed: %v", err)
	}
	snap, _ := store.LoadSnapshot(ctx)
	if len(snap.Workers) != 0 || len(snap.Slices) != 0 || len(snap.Overrides) != 0 {
		t.Errorf("worker data should be gone, got %+v", snap)
	}
	if err := store.DeleteWorker(ctx, "ana"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteWorker = %v, want ErrNotFound", err)
	}
}

func TestMethodsBeforeLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "hourplan.db"))
	if _, err := store.LoadSnapshot(context.Background()); err == nil {
		t.Error("LoadSnapshot should fail before Load")
	}
}
