package config

import (
	"fmt"
	"strings"

	"github.com/julianstephens/hourplan/internal/scheduler"
)

// EngineConfig holds the capacity rules of the allocation engine.
type EngineConfig struct {
	// WeekendHours is the capacity of an enabled Saturday or Sunday.
	WeekendHours float64 `json:"weekend_hours"`
	// MaxExtraHours caps the extra hours of a weekday override.
	MaxExtraHours float64 `json:"max_extra_hours"`
	// HorizonDays bounds how far ahead the engine scans for capacity.
	HorizonDays int `json:"horizon_days"`
}

func (c EngineConfig) Validate() error {
	if c.WeekendHours <= 0 || c.WeekendHours > 24 {
		return fmt.Errorf("weekend_hours must be in (0, 24], got %v", c.WeekendHours)
	}
	if c.MaxExtraHours <= 0 || c.MaxExtraHours > 24 {
		return fmt.Errorf("max_extra_hours must be in (0, 24], got %v", c.MaxExtraHours)
	}
	if c.HorizonDays <= 0 {
		return fmt.Errorf("horizon_days must be positive, got %d", c.HorizonDays)
	}
	return nil
}

// Scheduler converts the section into the engine's configuration.
func (c EngineConfig) Scheduler() scheduler.Config {
	return scheduler.Config{
		WeekendHours:  c.WeekendHours,
		MaxExtraHours: c.MaxExtraHours,
		HorizonDays:   c.HorizonDays,
	}
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Debug bool `json:"debug"`
	// Dir overrides <config dir>/logs.
	Dir string `json:"dir"`
}

// ServerConfig configures `hourplan serve`.
type ServerConfig struct {
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on /api routes.
	Token string `json:"token"`
}

func (c ServerConfig) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr is required")
	}
	return nil
}

// BackupConfig controls SQLite backups.
type BackupConfig struct {
	// Auto takes a backup after every successful mutating CLI command.
	Auto       bool `json:"auto"`
	MaxBackups int  `json:"max_backups"`
}

func (c BackupConfig) Validate() error {
	if c.MaxBackups < 1 {
		return fmt.Errorf("max_backups must be at least 1, got %d", c.MaxBackups)
	}
	return nil
}
