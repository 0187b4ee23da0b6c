package errors

import (
	"fmt"
	"os"

	"github.com/julianstephens/hourplan/internal/logger"
)

const prefix = "Error: "

// Format renders err as a single user-facing line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return prefix + err.Error()
}

// Formatf renders a formatted message as a single user-facing line.
func Formatf(format string, args ...any) string {
	return prefix + fmt.Sprintf(format, args...)
}

// Fatal logs err, prints it to stderr and exits with status 1. A nil err is ignored.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("command failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(1)
}

// Fatalf is Fatal for a formatted message.
func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("command failed", "error", msg)
	fmt.Fprintln(os.Stderr, prefix+msg)
	os.Exit(1)
}
