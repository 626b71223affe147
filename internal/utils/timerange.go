package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	clockLayout        = "15:04"
	clockLayoutSeconds = "15:04:05"
	dateLayout         = "2006-01-02"
	rangeSeparator     = " - "
)

var (
	ErrMissingTime       = errors.New("start time and end time are required")
	ErrInvalidTime       = errors.New("times must use the HH:MM format")
	ErrEndBeforeStart    = errors.New("end time must be after start time")
	ErrInvalidDate       = errors.New("date must use the YYYY-MM-DD format")
	ErrMalformedTimeSpan = errors.New("time range must look like \"HH:MM - HH:MM\"")
)

// ParseClock normalises a wall-clock time to HH:MM. A trailing :SS is accepted and dropped.
func ParseClock(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{clockLayout, clockLayoutSeconds} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(clockLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTime, value)
}

// ParseDate checks a calendar date in YYYY-MM-DD form and returns it normalised.
func ParseDate(value string) (string, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t.Format(dateLayout), nil
}

// SplitTimeRange splits "HH:MM - HH:MM" into its two ends without validating them.
func SplitTimeRange(timeRange string) (string, string, error) {
	start, end, ok := strings.Cut(timeRange, "-")
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if !ok || start == "" || end == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedTimeSpan, timeRange)
	}
	return start, end, nil
}

// FormatTimeRange is the display form stored alongside the discrete times.
func FormatTimeRange(start, end string) string {
	return start + rangeSeparator + end
}

// ResolveTimeSlot derives start and end from either the discrete pair or the
// combined range. The discrete pair wins when both are complete.
func ResolveTimeSlot(start, end, timeRange string) (string, string, error) {
	start, end, timeRange = strings.TrimSpace(start), strings.TrimSpace(end), strings.TrimSpace(timeRange)

	if (start == "" || end == "") && timeRange != "" {
		parsedStart, parsedEnd, err := SplitTimeRange(timeRange)
		if err != nil {
			return "", "", err
		}
		if start == "" {
			start = parsedStart
		}
		if end == "" {
			end = parsedEnd
		}
	}
	if start == "" || end == "" {
		return "", "", ErrMissingTime
	}

	start, err := ParseClock(start)
	if err != nil {
		return "", "", err
	}
	end, err = ParseClock(end)
	if err != nil {
		return "", "", err
	}
	// HH:MM strings order lexically.
	if end <= start {
		return "", "", ErrEndBeforeStart
	}
	return start, end, nil
}
