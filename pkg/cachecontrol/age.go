package cachecontrol

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Age is a cache lifetime expressed in whole seconds.
// The zero value is unset: directives that default to max-age treat it as
// "same as max-age". An Age that is set to zero seconds is explicitly off.
type Age struct {
	seconds int64
	set     bool
}

// Off is an explicitly disabled lifetime.
var Off = Age{set: true}

// Seconds returns an Age of n seconds. Negative values are clamped to zero.
func Seconds(n int64) Age {
	if n < 0 {
		n = 0
	}
	return Age{seconds: n, set: true}
}

// Duration returns an Age truncated to whole seconds.
func Duration(d time.Duration) Age {
	return Seconds(int64(d / time.Second))
}

// MustParse is like Parse but panics on malformed input.
// Intended for package-level literals.
func MustParse(s string) Age {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsSet reports whether the age was given at all.
func (a Age) IsSet() bool {
	return a.set
}

// IsOff reports whether the age was given and resolves to zero seconds.
func (a Age) IsOff() bool {
	return a.set && a.seconds == 0
}

// Seconds returns the lifetime in whole seconds. Unset ages report zero.
func (a Age) Seconds() int64 {
	return a.seconds
}

// String renders the age in seconds, or "unset".
func (a Age) String() string {
	if !a.set {
		return "unset"
	}
	return strconv.FormatInt(a.seconds, 10) + "s"
}

var agePattern = regexp.MustCompile(`(?i)^(-?(?:\d+)?\.?\d+) *(milliseconds?|msecs?|ms|seconds?|secs?|s|minutes?|mins?|m|hours?|hrs?|h|days?|d|weeks?|w|years?|yrs?|y)?$`)

var unitScale = map[string]float64{
	"":             1,
	"ms":           1,
	"msec":         1,
	"msecs":        1,
	"millisecond":  1,
	"milliseconds": 1,
	"s":            1000,
	"sec":          1000,
	"secs":         1000,
	"second":       1000,
	"seconds":      1000,
	"m":            60 * 1000,
	"min":          60 * 1000,
	"mins":         60 * 1000,
	"minute":       60 * 1000,
	"minutes":      60 * 1000,
	"h":            60 * 60 * 1000,
	"hr":           60 * 60 * 1000,
	"hrs":          60 * 60 * 1000,
	"hour":         60 * 60 * 1000,
	"hours":        60 * 60 * 1000,
	"d":            24 * 60 * 60 * 1000,
	"day":          24 * 60 * 60 * 1000,
	"days":         24 * 60 * 60 * 1000,
	"w":            7 * 24 * 60 * 60 * 1000,
	"week":         7 * 24 * 60 * 60 * 1000,
	"weeks":        7 * 24 * 60 * 60 * 1000,
	"y":            365.25 * 24 * 60 * 60 * 1000,
	"yr":           365.25 * 24 * 60 * 60 * 1000,
	"yrs":          365.25 * 24 * 60 * 60 * 1000,
	"year":         365.25 * 24 * 60 * 60 * 1000,
	"years":        365.25 * 24 * 60 * 60 * 1000,
}

// Parse reads a human duration such as "30s", "1 hour", "2 days" or "1w".
// A bare number is milliseconds. The result is truncated to whole seconds.
// An empty string yields an unset Age.
func Parse(s string) (Age, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Age{}, nil
	}
	m := agePattern.FindStringSubmatch(s)
	if m == nil {
		return Age{}, fmt.Errorf("%w: %q", ErrInvalidAge, s)
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Age{}, fmt.Errorf("%w: %q", ErrInvalidAge, s)
	}
	ms := n * unitScale[strings.ToLower(m[2])]
	return Seconds(int64(math.Trunc(ms / 1000))), nil
}
