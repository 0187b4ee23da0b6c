package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/hourplan/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Workers
	GetWorker(ctx context.Context, id string) (models.Worker, error)
	ListWorkers(ctx context.Context) ([]models.Worker, error)
	DeleteWorker(ctx context.Context, id string) error

	// LoadSnapshot reads every worker, override and slice. Slices come back
	// grouped by worker in their stored order.
	LoadSnapshot(ctx context.Context) (models.Snapshot, error)
	// ApplyChangeSet persists the result of one mutation in a single
	// transaction.
	ApplyChangeSet(ctx context.Context, cs models.ChangeSet) error

	// Utils
	GetConfigPath() string
}
