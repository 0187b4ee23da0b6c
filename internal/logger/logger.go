package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/hourplan/internal/constants"
)

// Logger is the process-wide logger. It stays nil until Init is called, and
// every package function below is a no-op until then.
var Logger *log.Logger

// Config controls where and how verbosely the application logs.
type Config struct {
	Debug bool
	// ConfigDir is the application directory; logs go to ConfigDir/logs.
	ConfigDir string
	// Dir overrides the log directory when set.
	Dir string
}

func (c Config) logDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return filepath.Join(c.ConfigDir, "logs")
}

// Path returns the active log file for cfg.
func Path(cfg Config) string {
	return filepath.Join(cfg.logDir(), constants.AppName+".log")
}

// Init builds the global logger. Output goes to a rotating file; in debug
// mode it is mirrored to stderr with caller information.
func Init(cfg Config) error {
	if err := os.MkdirAll(cfg.logDir(), 0o755); err != nil {
		return err
	}

	rotating := &lumberjack.Logger{
		Filename:   Path(cfg),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	var out io.Writer = rotating
	level := log.InfoLevel
	if cfg.Debug {
		out = io.MultiWriter(os.Stderr, rotating)
		level = log.DebugLevel
	}

	Logger = log.NewWithOptions(out, log.Options{
		Level:           level,
		Prefix:          constants.AppName,
		ReportTimestamp: true,
		ReportCaller:    cfg.Debug,
	})
	return nil
}

// With returns a child logger carrying keyvals, or nil before Init.
func With(keyvals ...any) *log.Logger {
	if Logger == nil {
		return nil
	}
	return Logger.With(keyvals...)
}

func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs msg and exits with status 1.
func Fatal(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
