// Package splice implements the split-splice operation on a segmentation:
// an ordered, gap-free sequence of half-open segments covering an axis.
//
// Splice inserts a new segment into the sequence, truncating, splitting or
// discarding whatever it overlaps and filling any resulting gap with empty
// segments, so the sequence stays a complete partition of the axis.
//
// The algorithm works in four stages:
//  1. locate the predecessor and successor around the nominal split point
//  2. establish the actual bounds, deriving omitted bounds from the context
//  3. classify how predecessor and successor relate to the new segment
//  4. build the replacement range and splice it into a fresh slice
//
// The package is generic over the coordinate type and the segment type, so
// it can be exercised on plain integers and used on timeline segments alike.
package splice

import (
	"cmp"
	"fmt"
	"slices"
)

// Ops binds the elementary operations on the caller's segment type.
//
// Create builds the new main segment, Empty builds a filler segment and Clone
// copies the payload of src onto a segment with adjusted bounds.
type Ops[O cmp.Ordered, S any] struct {
	Start  func(S) O
	After  func(S) O
	Create func(start, after O) S
	Empty  func(start, after O) S
	Clone  func(src S, start, after O) S
}

// Bound is an optional segment bound.
type Bound[O cmp.Ordered] struct {
	value O
	set   bool
}

// Some returns a bound fixed at v.
func Some[O cmp.Ordered](v O) Bound[O] {
	return Bound[O]{value: v, set: true}
}

// None returns an omitted bound.
func None[O cmp.Ordered]() Bound[O] {
	return Bound[O]{}
}

// Get returns the bound value and whether it is set.
func (b Bound[O]) Get() (O, bool) {
	return b.value, b.set
}

// IsSet reports whether the bound was given explicitly.
func (b Bound[O]) IsSet() bool { return b.set }

func (b Bound[O]) String() string {
	if !b.set {
		return "∅"
	}
	return fmt.Sprint(b.value)
}

// Result describes where the splice changed the sequence. All indices refer
// to the returned slice: First is the first changed element, New the newly
// created main segment and End the first unaltered element after the change
// (possibly len).
type Result struct {
	First int
	New   int
	End   int
}

// LogicError is the panic value raised when Splice is used on an invalid
// segmentation or asked for a zero-width segment.
type LogicError struct {
	Message string
}

func (e *LogicError) Error() string {
	return "split-splice: " + e.Message
}

func fail(format string, args ...any) {
	panic(&LogicError{Message: fmt.Sprintf(format, args...)})
}

type verb int

const (
	nilVerb verb = iota
	drop
	trunc
	insNop
	seamless
)

// Splice inserts a new segment covering [start, after) into segs.
//
// Omitted bounds are derived from the context: an omitted start extends down
// to the end of the preceding segment (or the start of the enclosing one), an
// omitted end extends up to the start of the next segment (or the end of the
// enclosing one). With both bounds omitted, the split point is axisEnd and the
// last segment gets replaced. Bounds given in reverse order are swapped.
//
// segs is not modified; the returned slice is freshly allocated.
// Splice panics with *LogicError if segs is empty or the resulting segment
// would have zero width.
func Splice[O cmp.Ordered, S any](segs []S, ops Ops[O, S], axisEnd O, start, after Bound[O]) ([]S, Result) {
	if start.set && after.set && after.value < start.value {
		start, after = after, start
	}
	a := algo[O, S]{ops: ops, segs: segs}
	a.establishSplitPoint(axisEnd, start, after)
	a.determineRelations()
	return a.perform()
}

type algo[O cmp.Ordered, S any] struct {
	ops  Ops[O, S]
	segs []S

	pred, succ   int
	start, after O

	opPred, opSucc verb
}

// establishSplitPoint covers stage 1 and 2.
func (a *algo[O, S]) establishSplitPoint(axisEnd O, start, after Bound[O]) {
	sep := axisEnd
	switch {
	case start.set:
		sep = start.value
	case after.set:
		sep = after.value
	}

	n := len(a.segs)
	// largest predecessor starting before the separator
	a.pred = n
	for a.succ = 0; a.succ < n && a.ops.Start(a.segs[a.succ]) < sep; a.succ++ {
		a.pred = a.succ
	}
	if a.pred == a.succ {
		fail("non-empty segmentation required")
	}
	if a.succ == n {
		a.succ = a.pred
	}
	if a.pred == n {
		// separator touches the lower bound
		a.pred = a.succ
	}

	pred, succ := a.segs[a.pred], a.segs[a.succ]
	startSeg, afterSeg := start.value, after.value
	if !start.set {
		if a.ops.After(pred) < sep {
			startSeg = a.ops.After(pred)
		} else {
			startSeg = a.ops.Start(pred)
		}
	}
	if !after.set {
		if a.ops.Start(succ) > sep {
			afterSeg = a.ops.Start(succ)
		} else {
			afterSeg = a.ops.After(succ)
		}
	}
	if startSeg == afterSeg {
		fail("zero-width segment at %v", startSeg)
	}
	a.start, a.after = min(startSeg, afterSeg), max(startSeg, afterSeg)
}

// determineRelations is stage 3: classify predecessor and successor.
func (a *algo[O, S]) determineRelations() {
	startPred := a.ops.Start(a.segs[a.pred])
	afterPred := a.ops.After(a.segs[a.pred])

	if startPred < a.start {
		switch {
		case afterPred < a.start:
			a.opPred = insNop
		case afterPred == a.start:
			a.opPred = seamless
		default:
			a.opPred = trunc
			if afterPred > a.after {
				// predecessor spans the new segment: split it
				a.succ = a.pred
				a.opSucc = trunc
				return
			}
		}
	} else {
		if startPred != a.start {
			fail("predecessor %v does not precede start point %v", startPred, a.start)
		}
		a.opPred = drop
		if a.after < afterPred {
			// predecessor coincides with the new start: keep its tail
			a.succ = a.pred
			a.opSucc = trunc
			return
		}
	}

	startSucc := a.ops.Start(a.segs[a.succ])
	if startSucc < a.after {
		// skip successors completely covered by the new segment
		for a.succ < len(a.segs)-1 && a.ops.After(a.segs[a.succ]) < a.after {
			a.succ++
		}
		if a.ops.Start(a.segs[a.succ]) >= a.after {
			fail("segmentation has a gap before %v", a.after)
		}
		switch afterSucc := a.ops.After(a.segs[a.succ]); {
		case a.after == afterSucc:
			a.opSucc = drop
		case a.after < afterSucc:
			a.opSucc = trunc
		default:
			fail("segmentation ends before %v", a.after)
		}
	} else if a.after == startSucc {
		a.opSucc = seamless
	} else {
		a.opSucc = insNop
	}
}

// perform is stage 4: build the replacement range and splice it in.
func (a *algo[O, S]) perform() ([]S, Result) {
	refPred, refSucc := a.segs[a.pred], a.segs[a.succ]

	// the range [p, s) gets replaced; shrink it to retain neighbours
	p, s := a.pred, a.succ
	if a.opPred == insNop || a.opPred == seamless {
		p++
	}
	if a.opSucc == drop || a.opSucc == trunc {
		s++
	}

	mid := make([]S, 0, 3)
	switch a.opPred {
	case insNop:
		mid = append(mid, a.ops.Empty(a.ops.After(refPred), a.start))
	case trunc:
		mid = append(mid, a.ops.Clone(refPred, a.ops.Start(refPred), a.start))
	}
	res := Result{First: p, New: p + len(mid)}
	mid = append(mid, a.ops.Create(a.start, a.after))
	switch a.opSucc {
	case insNop:
		mid = append(mid, a.ops.Empty(a.after, a.ops.Start(refSucc)))
	case trunc:
		mid = append(mid, a.ops.Clone(refSucc, a.after, a.ops.After(refSucc)))
	}
	res.End = p + len(mid)

	return slices.Concat(a.segs[:p], mid, a.segs[s:]), res
}
