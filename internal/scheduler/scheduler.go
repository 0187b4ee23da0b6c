package scheduler

import (
	"github.com/google/uuid"

	"github.com/julianstephens/hourplan/internal/constants"
)

// Config holds the capacity rules and the scan horizon.
type Config struct {
	// WeekendHours is the capacity of an enabled Saturday or Sunday.
	WeekendHours float64
	// MaxExtraHours caps a weekday override's extra hours.
	MaxExtraHours float64
	// HorizonDays bounds every forward day scan.
	HorizonDays int
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		WeekendHours:  constants.DefaultWeekendHours,
		MaxExtraHours: constants.DefaultMaxExtraHours,
		HorizonDays:   constants.DefaultHorizonDays,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WeekendHours <= 0 {
		c.WeekendHours = d.WeekendHours
	}
	if c.MaxExtraHours <= 0 {
		c.MaxExtraHours = d.MaxExtraHours
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = d.HorizonDays
	}
	return c
}

// Scheduler places block hours on worker days. It holds no snapshot state:
// every call works on the values it is given.
type Scheduler struct {
	cfg   Config
	newID func() string
}

type Option func(*Scheduler)

// WithConfig sets the engine configuration. Zero fields fall back to defaults.
func WithConfig(cfg Config) Option {
	return func(s *Scheduler) {
		s.cfg = cfg.withDefaults()
	}
}

// WithIDGenerator replaces the uuid generator used for new block and slice ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:   DefaultConfig(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// NewID returns a fresh identifier from the configured generator.
func (s *Scheduler) NewID() string {
	return s.newID()
}
