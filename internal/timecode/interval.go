package timecode

import "fmt"

// Interval is the half-open time span [Start, After).
type Interval struct {
	Start Time
	After Time
}

// Span returns the interval [start, after).
func Span(start, after Time) Interval {
	return Interval{Start: start, After: after}
}

// All is the complete axis [−∞, +∞).
var All = Interval{Start: Min, After: Max}

// IsEmpty reports whether the interval covers no time at all.
func (iv Interval) IsEmpty() bool {
	return iv.Start >= iv.After
}

// Contains reports whether t lies within [Start, After).
func (iv Interval) Contains(t Time) bool {
	return iv.Start <= t && t < iv.After
}

// Overlaps reports whether both intervals share at least one point.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.After && o.Start < iv.After
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s,%s)", iv.Start, iv.After)
}
