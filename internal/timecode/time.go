// Package timecode provides the time values the planning core works with:
// nanosecond timeline positions with infinite sentinels, rational frame
// rates, the frame grid and half-open time intervals.
//
// All types are immutable values and safe for concurrent use.
package timecode

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Time is a position on the timeline, in nanoseconds relative to the
// timeline origin. The extreme values are reserved as sentinels for the
// unbounded ends of the axis.
type Time int64

const (
	// Zero is the timeline origin.
	Zero Time = 0

	// Min is the lower end of the axis (−∞).
	Min Time = math.MinInt64

	// Max is the upper end of the axis (+∞).
	Max Time = math.MaxInt64

	// Anytime marks a job without deadline.
	Anytime = Min

	// Never marks a point that is never reached.
	Never = Max
)

// At converts a duration relative to the origin into a Time.
func At(d time.Duration) Time {
	return Zero.Add(d)
}

// IsInfinite reports whether t is one of the axis sentinels.
func (t Time) IsInfinite() bool {
	return t == Min || t == Max
}

// Add offsets t by d. Sentinels are sticky; finite results saturate at the
// sentinels instead of overflowing.
func (t Time) Add(d time.Duration) Time {
	if t.IsInfinite() {
		return t
	}
	r := int64(t) + int64(d)
	switch {
	case d > 0 && r < int64(t):
		return Max
	case d < 0 && r > int64(t):
		return Min
	}
	return Time(r)
}

// Sub returns the distance t−u. Distances involving a sentinel saturate.
func (t Time) Sub(u Time) time.Duration {
	switch {
	case t == Max || u == Min:
		return time.Duration(math.MaxInt64)
	case t == Min || u == Max:
		return time.Duration(math.MinInt64)
	}
	r := int64(t) - int64(u)
	switch {
	case u < 0 && r < int64(t):
		return time.Duration(math.MaxInt64)
	case u > 0 && r > int64(t):
		return time.Duration(math.MinInt64)
	}
	return time.Duration(r)
}

// Before reports whether t lies strictly before u.
func (t Time) Before(u Time) bool { return t < u }

// Duration returns the offset from the origin.
func (t Time) Duration() time.Duration {
	return time.Duration(t)
}

var units = []struct {
	name string
	size int64
}{
	{"h", int64(time.Hour)},
	{"m", int64(time.Minute)},
	{"s", int64(time.Second)},
	{"ms", int64(time.Millisecond)},
	{"µs", int64(time.Microsecond)},
	{"ns", 1},
}

// String renders t in compact unit form, e.g. "1s180ms", "-5s", "0s".
// The sentinels render as "-∞" and "+∞".
func (t Time) String() string {
	switch t {
	case Min:
		return "-∞"
	case Max:
		return "+∞"
	case Zero:
		return "0s"
	}
	var b strings.Builder
	v := int64(t)
	if v < 0 {
		b.WriteByte('-')
		v = -v
	}
	for _, u := range units {
		if n := v / u.size; n > 0 {
			fmt.Fprintf(&b, "%d%s", n, u.name)
			v -= n * u.size
		}
	}
	return b.String()
}

// Parse reads a Time written as a Go duration ("1s180ms", "-250ms") or as
// one of the infinity tokens "-inf", "+inf", "-∞", "+∞".
func Parse(s string) (Time, error) {
	switch strings.TrimSpace(s) {
	case "-inf", "-∞", "min":
		return Min, nil
	case "+inf", "inf", "+∞", "∞", "max":
		return Max, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return At(d), nil
}

// MustParse is like Parse but panics on malformed input.
// Intended for tests and constant tables.
func MustParse(s string) Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}
