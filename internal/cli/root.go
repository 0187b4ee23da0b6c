package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/huh"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/hourplan/internal/backup"
	"github.com/julianstephens/hourplan/internal/config"
	"github.com/julianstephens/hourplan/internal/constants"
	"github.com/julianstephens/hourplan/internal/keyring"
	"github.com/julianstephens/hourplan/internal/logger"
	"github.com/julianstephens/hourplan/internal/metrics"
	"github.com/julianstephens/hourplan/internal/planner"
	"github.com/julianstephens/hourplan/internal/scheduler"
	"github.com/julianstephens/hourplan/internal/service"
	"github.com/julianstephens/hourplan/internal/storage"
	"github.com/julianstephens/hourplan/internal/storage/postgres"
	"github.com/julianstephens/hourplan/internal/storage/sqlite"
	"github.com/julianstephens/hourplan/internal/utils"
)

type Context struct {
	Service *service.Service
	Store   storage.Provider
	Config  *config.Config
	// Backups is nil when the store is not a SQLite file.
	Backups  *backup.Manager
	Gatherer prometheus.Gatherer
	// Yes skips confirmation prompts.
	Yes bool

	dirty atomic.Bool
}

// MarkDirty records that a mutation was committed. It is meant to be passed
// to service.WithAfterCommit.
func (c *Context) MarkDirty(string) {
	c.dirty.Store(true)
}

func (c *Context) Dirty() bool {
	return c.dirty.Load()
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if c.Backups == nil {
		return
	}
	if _, err := c.Backups.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// NewContext wires the service stack around store. Metrics register with
// reg, which also backs the /metrics endpoint of the API server.
func NewContext(store storage.Provider, cfg *config.Config, reg *prometheus.Registry, opts ...scheduler.Option) (*Context, error) {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	c := &Context{Store: store, Config: cfg, Gatherer: reg}
	opts = append([]scheduler.Option{scheduler.WithConfig(cfg.Engine.Scheduler())}, opts...)
	c.Service = service.New(store, planner.New(scheduler.New(opts...)),
		service.WithMetrics(rec),
		service.WithAfterCommit(c.MarkDirty),
	)
	if s, ok := store.(*sqlite.Store); ok {
		c.Backups = backup.NewManager(s.GetConfigPath(), cfg.Backup.MaxBackups)
	}
	return c, nil
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func isPostgres(db string) bool {
	return strings.HasPrefix(db, "postgres://") || strings.HasPrefix(db, "postgresql://")
}

// OpenStore picks the backend for the --db value: a PostgreSQL URL, the
// keyring sentinel, or a SQLite file path.
func OpenStore(db string) (storage.Provider, error) {
	switch {
	case db == constants.KeyringSentinel:
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("no connection string found in keyring, use '%s keyring set' to store one", constants.AppName)
			}
			return nil, err
		}
		return postgres.New(connStr), nil
	case isPostgres(db):
		if _, err := postgres.ValidateConnString(db); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; store it with '%s keyring set' and pass --db=%s, or use .pgpass", constants.AppName, constants.KeyringSentinel)
			}
			return nil, err
		}
		return postgres.New(db), nil
	default:
		path, err := ExpandPath(db)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}

// LoadConfig reads the config file at path. A missing file is only an error
// when the path was chosen explicitly.
func LoadConfig(path string, explicit bool) (*config.Config, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		path = ""
	}
	return config.Load(path)
}

// ResolveDate maps "" and "today" to today's date and validates anything else.
func ResolveDate(s string) (string, error) {
	if s == "" || strings.EqualFold(s, "today") {
		return utils.Today(), nil
	}
	if !utils.ValidateDate(s) {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return s, nil
}

// Confirm asks a yes/no question unless --yes was given.
func (c *Context) Confirm(title string) (bool, error) {
	if c.Yes {
		return true, nil
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("interactive form error: %w", err)
	}
	return ok, nil
}

// PrintResult summarizes a mutation's persisted changes and warns about
// overassigned days.
func PrintResult(res planner.Result) {
	if len(res.Created) > 0 {
		fmt.Println(SectionStyle.Render("Created slices:"))
		PrintSlices(res.Created)
	}
	for workerID, slices := range res.Changes.WorkerSlices {
		logger.Debug("Rewrote worker slices", "worker", workerID, "count", len(slices))
	}
	for _, o := range res.Changes.Overrides {
		fmt.Printf("Override %s %s: %s\n", o.WorkerID, o.Date, FormatOverride(o))
	}
	PrintOverassigned(res.Overassigned)
}
