package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/hourplan/internal/constants"
)

// ParseDate parses a calendar date (YYYY-MM-DD). The result is midnight UTC so
// that day arithmetic never crosses a DST boundary.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", dateStr, err)
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ValidateDate reports whether dateStr is a well-formed calendar date.
func ValidateDate(dateStr string) bool {
	_, err := ParseDate(dateStr)
	return err == nil
}

// AddDays shifts a date string by n calendar days.
func AddDays(dateStr string, n int) (string, error) {
	t, err := ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// Weekday returns the weekday of a date string.
func Weekday(dateStr string) (time.Weekday, error) {
	t, err := ParseDate(dateStr)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// DateRange returns every date in the inclusive range between a and b,
// in ascending order regardless of argument order.
func DateRange(a, b string) ([]string, error) {
	from, err := ParseDate(a)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(b)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		from, to = to, from
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, FormatDate(d))
	}
	return dates, nil
}

// MinDate returns the earlier of two YYYY-MM-DD strings.
func MinDate(a, b string) string {
	if b < a {
		return b
	}
	return a
}

// MaxDate returns the later of two YYYY-MM-DD strings.
func MaxDate(a, b string) string {
	if b > a {
		return b
	}
	return a
}

// Today returns the current local calendar date.
func Today() string {
	return time.Now().Format(constants.DateFormat)
}
