package timecode

import (
	"errors"
	"fmt"
	"strconv"
)

// UnitsPerSecond is the fractional-second granularity of an annotation.
// Annotations were authored against 30 fps footage, and the divisor stays
// fixed at 30 whatever the real frame rate of the video is.
const UnitsPerSecond = 30

// ErrMalformed is returned for time codes that are not in "SS:ss" form.
var ErrMalformed = errors.New("malformed time code")

// TimeCode is a human-authored "SS:ss" timestamp, where SS is whole seconds
// and ss is a two-digit count of thirtieths of a second in [0, 29].
type TimeCode string

// Seconds converts the time code to fractional seconds.
func (t TimeCode) Seconds() (float64, error) {
	return Parse(string(t))
}

// Parse converts "SS:ss" into seconds. "1:15" is 1.5.
func Parse(s string) (float64, error) {
	n := len(s)
	if n < 3 || s[n-3] != ':' {
		return 0, fmt.Errorf("%w: %q: character at -3 is not ':'", ErrMalformed, s)
	}

	second, err := strconv.Atoi(s[:n-3])
	if err != nil || second < 0 {
		return 0, fmt.Errorf("%w: %q: invalid seconds", ErrMalformed, s)
	}

	units, err := strconv.Atoi(s[n-2:])
	if err != nil || units < 0 {
		return 0, fmt.Errorf("%w: %q: invalid fractional units", ErrMalformed, s)
	}

	return float64(second) + float64(units)/UnitsPerSecond, nil
}
