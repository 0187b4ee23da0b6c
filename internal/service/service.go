// Package service runs planner operations against a storage provider.
// Mutations lock the workers they touch, so writers on one worker are
// serialized while different workers proceed in parallel.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/julianstephens/hourplan/internal/logger"
	"github.com/julianstephens/hourplan/internal/metrics"
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/planner"
	"github.com/julianstephens/hourplan/internal/scheduler"
	"github.com/julianstephens/hourplan/internal/storage"
	"github.com/julianstephens/hourplan/internal/validation"
)

// ErrConflict is returned when a slice changed hands while the service was
// waiting for its worker's lock, more times than it is willing to retry.
var ErrConflict = errors.New("concurrent modification")

const maxLockRetries = 3

type Service struct {
	store       storage.Provider
	planner     *planner.Planner
	metrics     *metrics.Recorder
	locks       *xsync.Map[string, *sync.Mutex]
	afterCommit func(op string)
}

type Option func(*Service)

// WithMetrics records every mutation on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *Service) {
		s.metrics = rec
	}
}

// WithAfterCommit calls fn after every mutation that persisted changes.
func WithAfterCommit(fn func(op string)) Option {
	return func(s *Service) {
		s.afterCommit = fn
	}
}

func New(store storage.Provider, p *planner.Planner, opts ...Option) *Service {
	if p == nil {
		p = planner.New(nil)
	}
	s := &Service{
		store:   store,
		planner: p,
		locks:   xsync.NewMap[string, *sync.Mutex](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Planner() *planner.Planner {
	return s.planner
}

// lock acquires the locks of ids in sorted order and returns the release
// function.
func (s *Service) lock(ids ...string) func() {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	sort.Strings(uniq)

	held := make([]*sync.Mutex, 0, len(uniq))
	for _, id := range uniq {
		mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
		mu.Lock()
		held = append(held, mu)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// Outcome classifies an operation error for metrics.
func Outcome(err error) metrics.Outcome {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, scheduler.ErrCapacityExhausted):
		return metrics.OutcomeExhausted
	case errors.Is(err, scheduler.ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, planner.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}

type opFunc func(snap models.Snapshot) (planner.Result, error)

// mutate loads the snapshot under the workers' locks, runs fn and persists
// its change set. Nothing is written when fn fails.
func (s *Service) mutate(ctx context.Context, op string, workerIDs []string, fn opFunc) (res planner.Result, err error) {
	started := time.Now()
	defer func() {
		elapsed := time.Since(started)
		outcome := Outcome(err)
		s.metrics.ObserveMutation(op, outcome, elapsed)
		switch outcome {
		case metrics.OutcomeOK:
			logger.Info("Mutation applied", "op", op, "workers", workerIDs, "elapsed", elapsed, "overassigned", len(res.Overassigned))
		case metrics.OutcomeExhausted:
			logger.Warn("Capacity exhausted", "op", op, "workers", workerIDs, "error", err)
		case metrics.OutcomeError:
			logger.Error("Mutation failed", "op", op, "workers", workerIDs, "error", err)
		default:
			logger.Debug("Mutation rejected", "op", op, "workers", workerIDs, "error", err)
		}
	}()

	unlock := s.lock(workerIDs...)
	defer unlock()

	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return planner.Result{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	res, err = fn(snap)
	if err != nil {
		return planner.Result{}, err
	}
	if err := s.commit(ctx, op, res); err != nil {
		return planner.Result{}, err
	}
	return res, nil
}

func (s *Service) commit(ctx context.Context, op string, res planner.Result) error {
	if res.Changes.IsEmpty() {
		return nil
	}
	if err := s.store.ApplyChangeSet(ctx, res.Changes); err != nil {
		return fmt.Errorf("failed to save changes: %w", err)
	}

	perWorker := make(map[string]int)
	for _, load := range res.Overassigned {
		perWorker[load.WorkerID]++
	}
	for _, id := range res.Changes.AffectedWorkers() {
		s.metrics.AddSlicesWritten(id, len(res.Changes.WorkerSlices[id]))
		s.metrics.SetOverassigned(id, perWorker[id])
	}
	if s.afterCommit != nil {
		s.afterCommit(op)
	}
	return nil
}

// mutateSlice resolves the owner of sliceID before locking. If the slice
// moved to another worker in the meantime the lookup is retried.
func (s *Service) mutateSlice(ctx context.Context, op, sliceID string, extra []string, fn opFunc) (planner.Result, error) {
	for attempt := 0; attempt < maxLockRetries; attempt++ {
		snap, err := s.store.LoadSnapshot(ctx)
		if err != nil {
			return planner.Result{}, fmt.Errorf("failed to load snapshot: %w", err)
		}
		sl, ok := snap.Slice(sliceID)
		if !ok {
			return s.mutate(ctx, op, extra, fn)
		}
		owner := sl.WorkerID

		res, err := s.mutate(ctx, op, append([]string{owner}, extra...), func(locked models.Snapshot) (planner.Result, error) {
			if cur, ok := locked.Slice(sliceID); ok && cur.WorkerID != owner {
				return planner.Result{}, ErrConflict
			}
			return fn(locked)
		})
		if errors.Is(err, ErrConflict) {
			continue
		}
		return res, err
	}
	return planner.Result{}, fmt.Errorf("slice %s: %w", sliceID, ErrConflict)
}

// Snapshot returns the stored planning document.
func (s *Service) Snapshot(ctx context.Context) (models.Snapshot, error) {
	return s.store.LoadSnapshot(ctx)
}

func (s *Service) Workers(ctx context.Context) ([]models.Worker, error) {
	return s.store.ListWorkers(ctx)
}

// AddWorker stores a new worker, generating an id when none is given.
func (s *Service) AddWorker(ctx context.Context, w models.Worker) (planner.Result, error) {
	if w.ID == "" {
		w.ID = s.planner.Scheduler().NewID()
	}
	return s.mutate(ctx, "add_worker", []string{w.ID}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.AddWorker(snap, w)
	})
}

func (s *Service) UpdateWorkerHours(ctx context.Context, workerID string, hours [5]float64, effectiveFrom string) (planner.Result, error) {
	return s.mutate(ctx, "update_worker_hours", []string{workerID}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.UpdateWorkerHours(snap, workerID, hours, effectiveFrom)
	})
}

func (s *Service) RenameWorker(ctx context.Context, workerID, name string) (planner.Result, error) {
	return s.mutate(ctx, "rename_worker", []string{workerID}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.RenameWorker(snap, workerID, name)
	})
}

// DeleteWorker removes a worker with all of their slices and overrides.
func (s *Service) DeleteWorker(ctx context.Context, workerID string) error {
	started := time.Now()
	unlock := s.lock(workerID)
	err := s.store.DeleteWorker(ctx, workerID)
	unlock()

	s.metrics.ObserveMutation("delete_worker", Outcome(err), time.Since(started))
	if err != nil {
		return err
	}
	s.metrics.ForgetWorker(workerID)
	logger.Info("Worker deleted", "worker", workerID)
	if s.afterCommit != nil {
		s.afterCommit("delete_worker")
	}
	return nil
}

func (s *Service) CreateBlock(ctx context.Context, in planner.CreateBlockInput) (planner.Result, error) {
	return s.mutate(ctx, "create_block", []string{in.WorkerID}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.CreateBlock(snap, in)
	})
}

func (s *Service) InsertUrgent(ctx context.Context, in planner.UrgentInput) (planner.Result, error) {
	return s.mutate(ctx, "insert_urgent", []string{in.WorkerID}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.InsertUrgent(snap, in)
	})
}

func (s *Service) DeleteBlock(ctx context.Context, workerID, blockID string) (planner.Result, error) {
	return s.mutate(ctx, "delete_block", []string{workerID}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.DeleteBlock(snap, workerID, blockID)
	})
}

func (s *Service) ResizeBlock(ctx context.Context, workerID, blockID string, hours float64) (planner.Result, error) {
	return s.mutate(ctx, "resize_block", []string{workerID}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.ResizeBlock(snap, workerID, blockID, hours)
	})
}

func (s *Service) FindBlocks(ctx context.Context, workerID, query string) ([]models.BlockSummary, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return s.planner.FindBlocks(snap, workerID, query)
}

func (s *Service) DeleteSlice(ctx context.Context, sliceID string) (planner.Result, error) {
	return s.mutateSlice(ctx, "delete_slice", sliceID, nil, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.DeleteSlice(snap, sliceID)
	})
}

func (s *Service) MoveSlice(ctx context.Context, in planner.MoveSliceInput) (planner.Result, error) {
	return s.mutateSlice(ctx, "move_slice", in.SliceID, []string{in.WorkerID}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.MoveSlice(snap, in)
	})
}

func (s *Service) EditDayOverride(ctx context.Context, o models.DayOverride) (planner.Result, error) {
	return s.mutate(ctx, "edit_override", []string{o.WorkerID}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.EditDayOverride(snap, o)
	})
}

func (s *Service) ApplyRange(ctx context.Context, in planner.RangeInput) (planner.Result, error) {
	return s.mutate(ctx, "apply_range", []string{in.WorkerID}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.ApplyRange(snap, in)
	})
}

func (s *Service) SetActualHours(ctx context.Context, in planner.ActualInput) (planner.Result, error) {
	return s.mutate(ctx, "set_actual_hours", []string{in.WorkerID}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.SetActualHours(snap, in)
	})
}

func (s *Service) DaySummaries(ctx context.Context, workerID, from, to string) ([]models.DayLoad, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return s.planner.DaySummaries(snap, workerID, from, to)
}

// descriptionLock keys the lock table for a label. Worker ids never carry the
// prefix.
func descriptionLock(label string) string {
	return "description:" + models.DescriptionKey(label)
}

// Descriptions lists the registered label descriptions sorted by label.
func (s *Service) Descriptions(ctx context.Context) ([]models.Description, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap.Descriptions.List(), nil
}

func (s *Service) SaveDescription(ctx context.Context, label, text string) (planner.Result, error) {
	return s.mutate(ctx, "save_description", []string{descriptionLock(label)}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.SaveDescription(snap, label, text)
	})
}

func (s *Service) DeleteDescription(ctx context.Context, label string) (planner.Result, error) {
	return s.mutate(ctx, "delete_description", []string{descriptionLock(label)}, func(snap models.Snapshot) (planner.Result, error) {
		return s.planner.DeleteDescription(snap, label)
	})
}

// Validate checks the stored snapshot for broken invariants.
func (s *Service) Validate(ctx context.Context) (validation.ValidationResult, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return validation.ValidationResult{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return validation.New(s.planner.Scheduler()).ValidateSnapshot(snap), nil
}
