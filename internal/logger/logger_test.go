package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")
	cfg := Config{ConfigDir: configDir}

	if err := Init(cfg); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	if _, err := os.Stat(filepath.Join(configDir, "logs")); os.IsNotExist(err) {
		t.Errorf("log directory was not created")
	}

	Info("block created", "worker", "w1", "hours", 8)
	Warn("capacity exhausted", "unplaced", 4)

	data, err := os.ReadFile(Path(cfg))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "block created") {
		t.Errorf("log file does not contain the info line: %q", data)
	}
}

func TestInit_DirOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom-logs")
	cfg := Config{Debug: true, ConfigDir: "/unused", Dir: dir}

	if err := Init(cfg); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if got := Path(cfg); got != filepath.Join(dir, "hourplan.log") {
		t.Errorf("Path() = %q", got)
	}
	Debug("debug line", "key", "value")
	if With("op", "reflow") == nil {
		t.Error("With returned nil after Init")
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// must not panic
	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
	if With("k", "v") != nil {
		t.Error("With should return nil before Init")
	}
}
