package backups

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julianstephens/hourplan/internal/cli"
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/storage/sqlite"
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
	return ctx
}

func addWorker(t *testing.T, ctx *cli.Context, id string) {
	t.Helper()
	w := models.Worker{ID: id, Name: id, WeekdayHours: models.UniformWeek(8)}
	if _, err := ctx.Service.AddWorker(context.Background(), w); err != nil {
		t.Fatalf("AddWorker failed: %v", err)
	}
}

func TestBackupCreateAndList(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("BackupListCmd.Run() with no backups error = %v", err)
	}

	addWorker(t, ctx, "ana")
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("BackupCreateCmd.Run() error = %v", err)
	}
	backups, err := ctx.Backups.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Errorf("BackupListCmd.Run() error = %v", err)
	}
}

func TestBackupRestore(t *testing.T) {
	ctx := newTestContext(t)
	addWorker(t, ctx, "ana")
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("BackupCreateCmd.Run() error = %v", err)
	}
	backups, err := ctx.Backups.List()
	if err != nil || len(backups) != 1 {
		t.Fatalf("List = %v, %v", backups, err)
	}
	addWorker(t, ctx, "ben")

	cmd := &BackupRestoreCmd{BackupFile: filepath.Base(backups[0].Path)}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("BackupRestoreCmd.Run() error = %v", err)
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatalf("Load after restore failed: %v", err)
	}
	workers, err := ctx.Store.ListWorkers(context.Background())
	if err != nil {
		t.Fatalf("ListWorkers failed: %v", err)
	}
	if len(workers) != 1 || workers[0].ID != "ana" {
		t.Errorf("expected only ana after restore, got %+v", workers)
	}

	missing := &BackupRestoreCmd{BackupFile: "hourplan-19990101-0000.db"}
	if err := missing.Run(ctx); err == nil {
		t.Error("restoring a missing backup should fail")
	}
}

func TestBackupsRequireSQLite(t *testing.T) {
	ctx := &cli.Context{}
	for name, run := range map[string]func(*cli.Context) error{
		"create":  (&BackupCreateCmd{}).Run,
		"list":    (&BackupListCmd{}).Run,
		"restore": (&BackupRestoreCmd{BackupFile: "x.db"}).Run,
	} {
		if err := run(ctx); err != errNoBackups {
			t.Errorf("%s: error = %v, want errNoBackups", name, err)
		}
	}
}
