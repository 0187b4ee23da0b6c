package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned before any allocation attempt when arguments are unusable.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCapacityExhausted matches any *CapacityExhaustedError.
	ErrCapacityExhausted = errors.New("capacity exhausted")
)

// CapacityExhaustedError reports demand that could not be placed within the
// scan horizon.
type CapacityExhaustedError struct {
	WorkerID string
	BlockID  string
	From     string
	Unplaced float64
	Horizon  int
}

func (e *CapacityExhaustedError) Error() string {
	if e.BlockID != "" {
		return fmt.Sprintf("cannot place remaining %.1f hours of block %s for worker %s within %d days from %s",
			e.Unplaced, e.BlockID, e.WorkerID, e.Horizon, e.From)
	}
	return fmt.Sprintf("cannot place remaining %.1f hours for worker %s within %d days from %s",
		e.Unplaced, e.WorkerID, e.Horizon, e.From)
}

func (e *CapacityExhaustedError) Is(target error) bool {
	return target == ErrCapacityExhausted
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
