package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/hourplan/internal/migration"
	"github.com/julianstephens/hourplan/internal/models"
)

// Tables implements the data methods of Provider over the shared schema.
// The SQLite and PostgreSQL stores embed it once their connection is open.
type Tables struct {
	DB      *sql.DB
	Dialect migration.Dialect
}

var errNotLoaded = errors.New("storage not loaded")

func (t Tables) q(query string) string {
	return t.Dialect.Rebind(query)
}

const workerColumns = "id, name, mon_hours, tue_hours, wed_hours, thu_hours, fri_hours"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (models.Worker, error) {
	var w models.Worker
	h := &w.WeekdayHours
	err := row.Scan(&w.ID, &w.Name, &h[0], &h[1], &h[2], &h[3], &h[4])
	return w, err
}

func (t Tables) GetWorker(ctx context.Context, id string) (models.Worker, error) {
	if t.DB == nil {
		return models.Worker{}, errNotLoaded
	}
	row := t.DB.QueryRowContext(ctx, t.q("SELECT "+workerColumns+" FROM workers WHERE id = ?"), id)
	w, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Worker{}, fmt.Errorf("worker %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Worker{}, fmt.Errorf("failed to get worker: %w", err)
	}
	return w, nil
}

func (t Tables) ListWorkers(ctx context.Context) ([]models.Worker, error) {
	if t.DB == nil {
		return nil, errNotLoaded
	}
	return listWorkers(ctx, t.DB)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listWorkers(ctx context.Context, db querier) ([]models.Worker, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+workerColumns+" FROM workers ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	var workers []models.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// DeleteWorker removes the worker with its overrides and slices.
func (t Tables) DeleteWorker(ctx context.Context, id string) error {
	if t.DB == nil {
		return errNotLoaded
	}
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, t.q("DELETE FROM task_slices WHERE worker_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete slices: %w", err)
	}
	if _, err := tx.ExecContext(ctx, t.q("DELETE FROM day_overrides WHERE worker_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete overrides: %w", err)
	}
	res, err := tx.ExecContext(ctx, t.q("DELETE FROM workers WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("worker %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

func (t Tables) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	if t.DB == nil {
		return models.Snapshot{}, errNotLoaded
	}
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var snap models.Snapshot
	if snap.Workers, err = listWorkers(ctx, tx); err != nil {
		return models.Snapshot{}, err
	}
	overrides, err := loadOverrides(ctx, tx)
	if err != nil {
		return models.Snapshot{}, err
	}
	snap.Overrides = models.OverridesFromList(overrides)
	if snap.Slices, err = loadSlices(ctx, tx); err != nil {
		return models.Snapshot{}, err
	}
	if snap.Descriptions, err = loadDescriptions(ctx, tx); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

func loadDescriptions(ctx context.Context, db querier) (models.Descriptions, error) {
	rows, err := db.QueryContext(ctx, "SELECT label, text FROM descriptions ORDER BY label")
	if err != nil {
		return nil, fmt.Errorf("failed to load descriptions: %w", err)
	}
	defer rows.Close()

	out := models.Descriptions{}
	for rows.Next() {
		var label, text string
		if err := rows.Scan(&label, &text); err != nil {
			return nil, fmt.Errorf("failed to scan description: %w", err)
		}
		out[label] = text
	}
	return out, rows.Err()
}

func loadOverrides(ctx context.Context, db querier) ([]models.DayOverride, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT worker_id, date, extra, saturday_enabled, sunday_enabled, vacation
		FROM day_overrides
		ORDER BY worker_id, date`)
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	defer rows.Close()

	var out []models.DayOverride
	for rows.Next() {
		var o models.DayOverride
		if err := rows.Scan(&o.WorkerID, &o.Date, &o.Extra, &o.SaturdayEnabled, &o.SundayEnabled, &o.Vacation); err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func loadSlices(ctx context.Context, db querier) ([]models.TaskSlice, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, block_id, worker_id, label, date, hours, color, kind
		FROM task_slices
		ORDER BY worker_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to load slices: %w", err)
	}
	defer rows.Close()

	var out []models.TaskSlice
	for rows.Next() {
		var sl models.TaskSlice
		var kind string
		if err := rows.Scan(&sl.ID, &sl.BlockID, &sl.WorkerID, &sl.Label, &sl.Date, &sl.Hours, &sl.Color, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan slice: %w", err)
		}
		sl.Kind = models.BlockKind(kind)
		out = append(out, sl)
	}
	return out, rows.Err()
}

// ApplyChangeSet upserts workers, overrides and descriptions, then replaces
// the slice list of every affected worker. All affected workers' slices are
// deleted before any insert so a slice moved between workers keeps its id.
func (t Tables) ApplyChangeSet(ctx context.Context, cs models.ChangeSet) error {
	if t.DB == nil {
		return errNotLoaded
	}
	if cs.IsEmpty() {
		return nil
	}
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, w := range cs.Workers {
		h := w.WeekdayHours
		_, err := tx.ExecContext(ctx, t.q(`
			INSERT INTO workers (`+workerColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				mon_hours = excluded.mon_hours,
				tue_hours = excluded.tue_hours,
				wed_hours = excluded.wed_hours,
				thu_hours = excluded.thu_hours,
				fri_hours = excluded.fri_hours`),
			w.ID, w.Name, h[0], h[1], h[2], h[3], h[4])
		if err != nil {
			return fmt.Errorf("failed to save worker %s: %w", w.ID, err)
		}
	}

	for _, o := range cs.Overrides {
		if o.IsDefault() {
			if _, err := tx.ExecContext(ctx, t.q("DELETE FROM day_overrides WHERE worker_id = ? AND date = ?"), o.WorkerID, o.Date); err != nil {
				return fmt.Errorf("failed to clear override %s/%s: %w", o.WorkerID, o.Date, err)
			}
			continue
		}
		_, err := tx.ExecContext(ctx, t.q(`
			INSERT INTO day_overrides (worker_id, date, extra, saturday_enabled, sunday_enabled, vacation)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (worker_id, date) DO UPDATE SET
				extra = excluded.extra,
				saturday_enabled = excluded.saturday_enabled,
				sunday_enabled = excluded.sunday_enabled,
				vacation = excluded.vacation`),
			o.WorkerID, o.Date, o.Extra, o.SaturdayEnabled, o.SundayEnabled, o.Vacation)
		if err != nil {
			return fmt.Errorf("failed to save override %s/%s: %w", o.WorkerID, o.Date, err)
		}
	}

	for _, d := range cs.Descriptions {
		label := models.DescriptionKey(d.Label)
		if d.Text == "" {
			if _, err := tx.ExecContext(ctx, t.q("DELETE FROM descriptions WHERE label = ?"), label); err != nil {
				return fmt.Errorf("failed to delete description %q: %w", label, err)
			}
			continue
		}
		_, err := tx.ExecContext(ctx, t.q(`
			INSERT INTO descriptions (label, text)
			VALUES (?, ?)
			ON CONFLICT (label) DO UPDATE SET
				text = excluded.text,
				updated_at = CURRENT_TIMESTAMP`),
			label, d.Text)
		if err != nil {
			return fmt.Errorf("failed to save description %q: %w", label, err)
		}
	}

	affected := cs.AffectedWorkers()
	for _, id := range affected {
		if _, err := tx.ExecContext(ctx, t.q("DELETE FROM task_slices WHERE worker_id = ?"), id); err != nil {
			return fmt.Errorf("failed to clear slices for worker %s: %w", id, err)
		}
	}
	insert := t.q(`
		INSERT INTO task_slices (id, block_id, worker_id, label, date, hours, color, kind, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, id := range affected {
		for pos, sl := range cs.WorkerSlices[id] {
			if sl.WorkerID != id {
				return fmt.Errorf("slice %s belongs to worker %s, not %s", sl.ID, sl.WorkerID, id)
			}
			if _, err := tx.ExecContext(ctx, insert,
				sl.ID, sl.BlockID, sl.WorkerID, sl.Label, sl.Date, sl.Hours, sl.Color, string(sl.Kind), pos); err != nil {
				return fmt.Errorf("failed to save slice %s: %w", sl.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}
	return nil
}
