package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/julianstephens/hourplan/internal/constants"
)

// Config is the application configuration. The database location is not part
// of it; it comes from the --db flag.
type Config struct {
	Engine  EngineConfig  `json:"engine"`
	Logging LoggingConfig `json:"logging"`
	Server  ServerConfig  `json:"server"`
	Backup  BackupConfig  `json:"backup"`
}

// Default returns the configuration used when no file or environment
// variable sets a value.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			WeekendHours:  constants.DefaultWeekendHours,
			MaxExtraHours: constants.DefaultMaxExtraHours,
			HorizonDays:   constants.DefaultHorizonDays,
		},
		Server: ServerConfig{Addr: constants.DefaultServerAddr},
		Backup: BackupConfig{Auto: true, MaxBackups: constants.MaxBackups},
	}
}

// Load reads the optional file at path (YAML or JSON, chosen by extension)
// and then HOURPLAN_* environment variables, where "__" separates levels:
// HOURPLAN_ENGINE__HORIZON_DAYS=365 sets engine.horizon_days.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	prefix := strings.ToLower(constants.EnvPrefix)
	if err := k.Load(env.Provider(constants.EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), prefix)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Backup.Validate(); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}
