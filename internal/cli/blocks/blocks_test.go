package blocks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/hourplan/internal/cli"
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/scheduler"
	"github.com/julianstephens/hourplan/internal/storage/sqlite"
)

const (
	mon = "2025-01-06"
	tue = "2025-01-07"
	wed = "2025-01-08"
	thu = "2025-01-09"
)

func newTestContext(t *testing.T) *cli.Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "hourplan.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx, err := cli.NewContext(store, nil, nil)
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	ctx.Yes = true
	for _, id := range []string{"ana", "ben"} {
		w := models.Worker{ID: id, Name: id, WeekdayHours: models.UniformWeek(8)}
		if _, err := ctx.Service.AddWorker(context.Background(), w); err != nil {
			t.Fatalf("AddWorker failed: %v", err)
		}
	}
	return ctx
}

// hoursByDate sums a worker's slices per day.
func hoursByDate(t *testing.T, ctx *cli.Context, workerID string) map[string]float64 {
	t.Helper()
	snap, err := ctx.Service.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	out := make(map[string]float64)
	for _, sl := range snap.SlicesFor(workerID) {
		out[sl.Date] += sl.Hours
	}
	return out
}

func blockID(t *testing.T, ctx *cli.Context, workerID, label string) string {
	t.Helper()
	blocks, err := ctx.Service.FindBlocks(context.Background(), workerID, label)
	if err != nil {
		t.Fatalf("FindBlocks failed: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected one block labeled %q, got %d", label, len(blocks))
	}
	return blocks[0].BlockID
}

func assertHours(t *testing.T, got, want map[string]float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("hours by date = %v, want %v", got, want)
	}
	for d, h := range want {
		if got[d] != h {
			t.Errorf("hours on %s = %v, want %v", d, got[d], h)
		}
	}
}

func TestBlockAdd(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&BlockAddCmd{Worker: "ana", Label: "Report", Hours: 20, Start: mon}).Run(ctx); err != nil {
		t.Fatalf("BlockAddCmd.Run() error = %v", err)
	}
	assertHours(t, hoursByDate(t, ctx, "ana"), map[string]float64{mon: 8, tue: 8, wed: 4})

	t.Run("invalid input", func(t *testing.T) {
		tests := []BlockAddCmd{
			{Worker: "ana", Label: "Tiny", Hours: 0.2, Start: mon},
			{Worker: "ana", Label: "", Hours: 4, Start: mon},
			{Worker: "nobody", Label: "Ghost", Hours: 4, Start: mon},
			{Worker: "ana", Label: "Bad date", Hours: 4, Start: "2025-13-01"},
		}
		for _, cmd := range tests {
			if err := cmd.Run(ctx); err == nil {
				t.Errorf("BlockAddCmd%+v should fail", cmd)
			}
		}
	})
}

func TestBlockAdd_CapacityExhausted(t *testing.T) {
	ctx := newTestContext(t)
	err := (&BlockAddCmd{Worker: "ana", Label: "Huge", Hours: 100000, Start: mon}).Run(ctx)
	if !errors.Is(err, scheduler.ErrCapacityExhausted) {
		t.Fatalf("BlockAddCmd.Run() error = %v, want ErrCapacityExhausted", err)
	}
	if got := hoursByDate(t, ctx, "ana"); len(got) != 0 {
		t.Errorf("expected nothing saved, got %v", got)
	}
}

func TestBlockUrgent(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&BlockAddCmd{Worker: "ana", Label: "Report", Hours: 16, Start: mon}).Run(ctx); err != nil {
		t.Fatalf("BlockAddCmd.Run() error = %v", err)
	}
	if err := (&BlockUrgentCmd{Worker: "ana", Label: "Outage", Hours: 4, Date: mon}).Run(ctx); err != nil {
		t.Fatalf("BlockUrgentCmd.Run() error = %v", err)
	}
	// the report is pushed back by the urgent hours
	assertHours(t, hoursByDate(t, ctx, "ana"), map[string]float64{mon: 8, tue: 8, wed: 4})
}

func TestBlockResizeAndDelete(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&BlockAddCmd{Worker: "ana", Label: "Report", Hours: 8, Start: mon}).Run(ctx); err != nil {
		t.Fatalf("BlockAddCmd.Run() error = %v", err)
	}
	if err := (&BlockAddCmd{Worker: "ana", Label: "Review", Hours: 8, Start: mon}).Run(ctx); err != nil {
		t.Fatalf("BlockAddCmd.Run() error = %v", err)
	}
	report := blockID(t, ctx, "ana", "report")

	if err := (&BlockResizeCmd{Worker: "ana", Block: report, Hours: 12}).Run(ctx); err != nil {
		t.Fatalf("BlockResizeCmd.Run() error = %v", err)
	}
	assertHours(t, hoursByDate(t, ctx, "ana"), map[string]float64{mon: 8, tue: 8, wed: 4})

	if err := (&BlockDeleteCmd{Worker: "ana", Block: report}).Run(ctx); err != nil {
		t.Fatalf("BlockDeleteCmd.Run() error = %v", err)
	}
	assertHours(t, hoursByDate(t, ctx, "ana"), map[string]float64{mon: 8})

	if err := (&BlockDeleteCmd{Worker: "ana", Block: report}).Run(ctx); err == nil {
		t.Error("deleting a missing block should fail")
	}
}

func TestBlockFind(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&BlockFindCmd{Worker: "ana"}).Run(ctx); err != nil {
		t.Errorf("BlockFindCmd.Run() with no blocks error = %v", err)
	}
	if err := (&BlockAddCmd{Worker: "ana", Label: "Quarterly report", Hours: 4, Start: mon}).Run(ctx); err != nil {
		t.Fatalf("BlockAddCmd.Run() error = %v", err)
	}
	if err := (&BlockFindCmd{Worker: "ana", Query: "REPORT"}).Run(ctx); err != nil {
		t.Errorf("BlockFindCmd.Run() error = %v", err)
	}
	if err := (&BlockFindCmd{Worker: "nobody"}).Run(ctx); err == nil {
		t.Error("finding blocks of an unknown worker should fail")
	}
}

func TestBlockActual(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&BlockAddCmd{Worker: "ana", Label: "Report", Hours: 16, Start: mon}).Run(ctx); err != nil {
		t.Fatalf("BlockAddCmd.Run() error = %v", err)
	}
	report := blockID(t, ctx, "ana", "Report")

	// only 5 of the planned 8 hours were worked on Monday
	if err := (&BlockActualCmd{Worker: "ana", Block: report, Hours: 5, Date: mon}).Run(ctx); err != nil {
		t.Fatalf("BlockActualCmd.Run() error = %v", err)
	}
	assertHours(t, hoursByDate(t, ctx, "ana"), map[string]float64{mon: 5, tue: 8, wed: 3})
}

func TestSliceDeleteAndMove(t *testing.T) {
	ctx := newTestContext(t)
	bg := context.Background()
	if err := (&BlockAddCmd{Worker: "ana", Label: "Report", Hours: 16, Start: mon}).Run(ctx); err != nil {
		t.Fatalf("BlockAddCmd.Run() error = %v", err)
	}
	snap, err := ctx.Service.Snapshot(bg)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	var monID, tueID string
	for _, sl := range snap.Slices {
		switch sl.Date {
		case mon:
			monID = sl.ID
		case tue:
			tueID = sl.ID
		}
	}

	if err := (&SliceMoveCmd{ID: tueID, Date: thu, Worker: "ben"}).Run(ctx); err != nil {
		t.Fatalf("SliceMoveCmd.Run() error = %v", err)
	}
	assertHours(t, hoursByDate(t, ctx, "ana"), map[string]float64{mon: 8})
	assertHours(t, hoursByDate(t, ctx, "ben"), map[string]float64{thu: 8})

	if err := (&SliceDeleteCmd{ID: monID}).Run(ctx); err != nil {
		t.Fatalf("SliceDeleteCmd.Run() error = %v", err)
	}
	assertHours(t, hoursByDate(t, ctx, "ana"), map[string]float64{})

	if err := (&SliceDeleteCmd{ID: monID}).Run(ctx); err == nil {
		t.Error("deleting a missing slice should fail")
	}
	if err := (&SliceMoveCmd{ID: tueID, Date: "not-a-date"}).Run(ctx); err == nil {
		t.Error("moving to an invalid date should fail")
	}
}
