package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/julianstephens/hourplan/internal/constants"
)

// RoundHalf rounds h to the nearest multiple of 0.5.
func RoundHalf(h float64) float64 {
	return math.Round(h*2) / 2
}

// FloorHalf rounds h down to a multiple of 0.5.
func FloorHalf(h float64) float64 {
	// nudge by epsilon so 7.9999999 floors to 8 instead of 7.5
	return math.Floor((h+constants.HourEpsilon)*2) / 2
}

// IsHalfMultiple reports whether h is a multiple of 0.5 within tolerance.
func IsHalfMultiple(h float64) bool {
	return math.Abs(h*2-math.Round(h*2)) < constants.HourEpsilon
}

// IsZeroHours reports whether h is zero within tolerance.
func IsZeroHours(h float64) bool {
	return math.Abs(h) <= constants.HourEpsilon
}

// ClampHours limits h to [lo, hi].
func ClampHours(h, lo, hi float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return lo
	}
	return math.Max(lo, math.Min(hi, h))
}

// ParseHoursList parses a comma-separated list of hour values (e.g. "8,8,8,8,6").
func ParseHoursList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	hours := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		h, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid hours value %q: %w", part, err)
		}
		hours = append(hours, h)
	}
	return hours, nil
}
