package features

import (
	"fmt"
	"strconv"
	"time"
	"unicode"
)

// SampleInterval is the nominal spacing of pivoted sensor samples. Rate-of-change
// and lag features count samples at this spacing (12 samples per hour).
//
// Rolling window statistics use real timestamps and tolerate irregular spacing;
// roc/lag features assume the series is evenly spaced at this interval. Callers
// feeding irregular data should resample first.
const SampleInterval = 5 * time.Minute

// SamplesPerHour is the number of SampleInterval steps in one hour.
const SamplesPerHour = 12

// ParseWindow converts an aggregation window string such as "1H", "30T" or "7D"
// into a duration. Supported units: S (seconds), T (minutes), H (hours), D (days).
func ParseWindow(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid window %q: expected <number><unit>", s)
	}

	unit := rune(s[len(s)-1])
	numPart := s[:len(s)-1]

	for _, r := range numPart {
		if !unicode.IsDigit(r) {
			return 0, fmt.Errorf("invalid window %q: non-numeric count", s)
		}
	}

	n, err := strconv.Atoi(numPart)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid window %q: count must be a positive integer", s)
	}

	switch unit {
	case 'S', 's':
		return time.Duration(n) * time.Second, nil
	case 'T', 't':
		return time.Duration(n) * time.Minute, nil
	case 'H', 'h':
		return time.Duration(n) * time.Hour, nil
	case 'D', 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid window %q: unknown unit %q", s, string(unit))
	}
}
