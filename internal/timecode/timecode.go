package timecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedTime reports a time string that matches no accepted format.
var ErrMalformedTime = errors.New("malformed time")

// Parse reads a user-entered time string into elapsed seconds.
//
// Accepted forms, each component optionally fractional:
//
//	SS
//	MM:SS
//	HH:MM:SS
//
// No upper bound is enforced; callers clamp against a known duration.
func Parse(text string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")

	var fields [3]float64
	switch len(parts) {
	case 1, 2, 3:
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil || v < 0 {
				return 0, fmt.Errorf("%w: %q", ErrMalformedTime, text)
			}
			fields[3-len(parts)+i] = v
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, text)
	}

	return fields[0]*3600 + fields[1]*60 + fields[2], nil
}

// ParseStamp reads a strict SRT timestamp (HH:MM:SS,mmm) into seconds.
func ParseStamp(text string) (float64, error) {
	text = strings.TrimSpace(text)

	secsAndMillis := strings.Split(text, ",")
	if len(secsAndMillis) != 2 {
		return 0, fmt.Errorf("%w: %q (want HH:MM:SS,mmm)", ErrMalformedTime, text)
	}
	clock := strings.Split(secsAndMillis[0], ":")
	if len(clock) != 3 {
		return 0, fmt.Errorf("%w: %q (want HH:MM:SS,mmm)", ErrMalformedTime, text)
	}

	parts := append(clock, secsAndMillis[1])
	var nums [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTime, text)
		}
		nums[i] = v
	}

	return nums[0]*3600 + nums[1]*60 + nums[2] + nums[3]/1000, nil
}

// FormatStamp renders seconds as a zero-padded SRT timestamp.
// The millisecond component is truncated, not rounded, so a
// FormatStamp/ParseStamp round trip is exact at millisecond granularity.
func FormatStamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	// small epsilon so that binary representation error in values that are
	// exact at millisecond granularity does not truncate away a millisecond
	totalMillis := int64(math.Floor(seconds*1000 + 1e-6))

	hours := totalMillis / 3600000
	minutes := totalMillis % 3600000 / 60000
	secs := totalMillis % 60000 / 1000
	millis := totalMillis % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// Clamp bounds a position to [0, max].
func Clamp(t, max float64) float64 {
	if t < 0 {
		return 0
	}
	if t > max {
		return max
	}
	return t
}
