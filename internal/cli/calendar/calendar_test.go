package calendar

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julianstephens/hourplan/internal/cli"
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/planner"
	"github.com/julianstephens/hourplan/internal/storage/sqlite"
)

const (
	mon = "2025-01-06"
	tue = "2025-01-07"
	wed = "2025-01-08"
	fri = "2025-01-10"
	sat = "2025-01-11"
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
	w := models.Worker{ID: "ana", Name: "Ana", WeekdayHours: models.UniformWeek(8)}
	if _, err := ctx.Service.AddWorker(context.Background(), w); err != nil {
		t.Fatalf("AddWorker failed: %v", err)
	}
	return ctx
}

func loadsByDate(t *testing.T, ctx *cli.Context, from, to string) map[string]models.DayLoad {
	t.Helper()
	loads, err := ctx.Service.DaySummaries(context.Background(), "ana", from, to)
	if err != nil {
		t.Fatalf("DaySummaries failed: %v", err)
	}
	out := make(map[string]models.DayLoad, len(loads))
	for _, l := range loads {
		out[l.Date] = l
	}
	return out
}

func TestOverrideSet(t *testing.T) {
	ctx := newTestContext(t)
	if _, err := ctx.Service.CreateBlock(context.Background(), planner.CreateBlockInput{WorkerID: "ana", Label: "Report", Hours: 16, Start: mon}); err != nil {
		t.Fatalf("CreateBlock failed: %v", err)
	}

	if err := (&OverrideSetCmd{Worker: "ana", Date: mon, Extra: 4}).Run(ctx); err != nil {
		t.Fatalf("OverrideSetCmd.Run() error = %v", err)
	}
	loads := loadsByDate(t, ctx, mon, wed)
	if loads[mon].Capacity != 12 || loads[mon].Used != 12 || loads[tue].Used != 4 {
		t.Errorf("unexpected loads after extra hours: %+v", loads)
	}

	// no flags restores the default
	if err := (&OverrideSetCmd{Worker: "ana", Date: mon}).Run(ctx); err != nil {
		t.Fatalf("OverrideSetCmd.Run() error = %v", err)
	}
	loads = loadsByDate(t, ctx, mon, wed)
	if loads[mon].Capacity != 8 || loads[tue].Used != 8 {
		t.Errorf("unexpected loads after reset: %+v", loads)
	}

	if err := (&OverrideSetCmd{Worker: "ana", Date: sat, Saturday: true}).Run(ctx); err != nil {
		t.Fatalf("OverrideSetCmd.Run() error = %v", err)
	}
	if got := loadsByDate(t, ctx, sat, sat)[sat].Capacity; got != 8 {
		t.Errorf("enabled Saturday capacity = %v, want 8", got)
	}

	if err := (&OverrideSetCmd{Worker: "ana", Date: mon, Extra: -1}).Run(ctx); err == nil {
		t.Error("negative extra hours should fail")
	}
}

func TestRange(t *testing.T) {
	ctx := newTestContext(t)

	if err := (&RangeCmd{Worker: "ana", Action: "vacation", From: fri, To: mon}).Run(ctx); err != nil {
		t.Fatalf("RangeCmd.Run() error = %v", err)
	}
	loads := loadsByDate(t, ctx, mon, fri)
	for d, l := range loads {
		if !l.Vacation || l.Capacity != 0 {
			t.Errorf("%s: expected vacation with no capacity, got %+v", d, l)
		}
	}

	if err := (&RangeCmd{Worker: "ana", Action: "clear-vacation", From: mon, To: tue}).Run(ctx); err != nil {
		t.Fatalf("RangeCmd.Run() error = %v", err)
	}
	loads = loadsByDate(t, ctx, mon, wed)
	if loads[mon].Vacation || loads[tue].Vacation || !loads[wed].Vacation {
		t.Errorf("unexpected vacation flags: %+v", loads)
	}

	if err := (&RangeCmd{Worker: "ana", Action: "extra", Extra: 2, From: mon, To: tue}).Run(ctx); err != nil {
		t.Fatalf("RangeCmd.Run() error = %v", err)
	}
	if got := loadsByDate(t, ctx, mon, mon)[mon].Capacity; got != 10 {
		t.Errorf("Monday capacity = %v, want 10", got)
	}

	if err := (&RangeCmd{Worker: "ana", Action: "sabbatical", From: mon, To: tue}).Run(ctx); err == nil {
		t.Error("unknown action should fail")
	}
}

func TestDay(t *testing.T) {
	ctx := newTestContext(t)
	bg := context.Background()
	if _, err := ctx.Service.EditDayOverride(bg, models.DayOverride{WorkerID: "ana", Date: tue, Vacation: true}); err != nil {
		t.Fatalf("EditDayOverride failed: %v", err)
	}
	if _, err := ctx.Service.InsertUrgent(bg, planner.UrgentInput{WorkerID: "ana", Label: "Outage", Hours: 3, Date: tue}); err != nil {
		t.Fatalf("InsertUrgent failed: %v", err)
	}

	if err := (&DayCmd{Worker: "ana", From: mon, Days: 7}).Run(ctx); err != nil {
		t.Errorf("DayCmd.Run() error = %v", err)
	}
	if err := (&DayCmd{Worker: "ana", From: mon, Days: 0}).Run(ctx); err == nil {
		t.Error("zero days should fail")
	}
	if err := (&DayCmd{Worker: "nobody", From: mon, Days: 7}).Run(ctx); err == nil {
		t.Error("unknown worker should fail")
	}
}
