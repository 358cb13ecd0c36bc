package fixture

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/roach88/renderplan/internal/explore"
	"github.com/roach88/renderplan/internal/splice"
	"github.com/roach88/renderplan/internal/timecode"
)

// IntervalSpec selects the interval of a new segment. Omitted bounds extend
// to the neighbouring segments.
type IntervalSpec struct {
	Start splice.Bound[timecode.Time]
	After splice.Bound[timecode.Time]
}

// Between covers [start, after); reversed bounds are swapped.
func Between(start, after timecode.Time) IntervalSpec {
	return IntervalSpec{Start: splice.Some(start), After: splice.Some(after)}
}

// StartingAt covers from start up to the next segment start.
func StartingAt(start timecode.Time) IntervalSpec {
	return IntervalSpec{Start: splice.Some(start), After: splice.None[timecode.Time]()}
}

// EndingAt covers from the end of the preceding segment up to after.
func EndingAt(after timecode.Time) IntervalSpec {
	return IntervalSpec{Start: splice.None[timecode.Time](), After: splice.Some(after)}
}

// Everything covers the whole axis.
func Everything() IntervalSpec {
	return Between(timecode.Min, timecode.Max)
}

// LastSegment omits both bounds, replacing the last segment.
func LastSegment() IntervalSpec {
	return IntervalSpec{}
}

func (s IntervalSpec) String() string {
	return fmt.Sprintf("(%s,%s)", s.Start, s.After)
}

// Segmentation is the gap-free partition of the timeline into segments.
type Segmentation struct {
	mu   sync.Mutex
	segs atomic.Pointer[[]*Segment]
}

// NewSegmentation creates a segmentation with a single empty segment
// covering [-∞,+∞).
func NewSegmentation() *Segmentation {
	s := &Segmentation{}
	initial := []*Segment{EmptySegment(timecode.All)}
	s.segs.Store(&initial)
	return s
}

func (s *Segmentation) load() []*Segment {
	return *s.segs.Load()
}

// Len returns the number of segments.
func (s *Segmentation) Len() int { return len(s.load()) }

// Segment returns the i-th segment.
func (s *Segmentation) Segment(i int) *Segment { return s.load()[i] }

// Lookup returns the segment containing t. Lookup is total: the sentinel
// +∞ maps to the last segment.
func (s *Segmentation) Lookup(t timecode.Time) *Segment {
	segs := s.load()
	i := sort.Search(len(segs), func(i int) bool { return t < segs[i].After() })
	if i == len(segs) {
		i--
	}
	return segs[i]
}

// SplitSplice attaches the given exit nodes to the interval selected by
// spec and returns the new segment. Overlapped segments are truncated or
// dropped, gaps are filled with empty segments.
//
// SplitSplice panics with *splice.LogicError when the selected interval
// would be empty.
func (s *Segmentation) SplitSplice(spec IntervalSpec, attachment NodeGraphAttachment) *Segment {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops := splice.Ops[timecode.Time, *Segment]{
		Start: (*Segment).Start,
		After: (*Segment).After,
		Create: func(start, after timecode.Time) *Segment {
			return NewSegment(timecode.Span(start, after), attachment)
		},
		Empty: func(start, after timecode.Time) *Segment {
			return EmptySegment(timecode.Span(start, after))
		},
		Clone: func(src *Segment, start, after timecode.Time) *Segment {
			return src.withSpan(timecode.Span(start, after))
		},
	}
	next, res := splice.Splice(s.load(), ops, timecode.Max, spec.Start, spec.After)
	if issues := assess(next); len(issues) > 0 {
		panic(&splice.LogicError{Message: strings.Join(issues, "; ")})
	}
	s.segs.Store(&next)
	return next[res.New]
}

// Segments iterates the segments in time order.
func (s *Segmentation) Segments() explore.Source[*Segment] {
	return explore.Slice(s.load())
}

// All returns an iterator over the segments in time order.
func (s *Segmentation) All() iter.Seq[*Segment] {
	return slices.Values(s.load())
}

// Boundaries lists all segment start points plus the final end point.
func (s *Segmentation) Boundaries() []timecode.Time {
	segs := s.load()
	out := make([]timecode.Time, 0, len(segs)+1)
	for _, seg := range segs {
		out = append(out, seg.Start())
	}
	return append(out, segs[len(segs)-1].After())
}

// Render draws the segmentation, e.g. "├[-∞~10s[[10s_20s[[20s~+∞[┤".
func (s *Segmentation) Render() string {
	var b strings.Builder
	b.WriteString("├")
	for _, seg := range s.load() {
		b.WriteString(seg.String())
	}
	b.WriteString("┤")
	return b.String()
}

func (s *Segmentation) String() string { return s.Render() }

// Assess checks the partition invariants and describes each violation.
func (s *Segmentation) Assess() []string {
	return assess(s.load())
}

// IsValid reports whether Assess finds nothing.
func (s *Segmentation) IsValid() bool {
	return len(s.Assess()) == 0
}

// Snapshot returns a segmentation pinned to the current state. Later
// changes to either side do not affect the other.
func (s *Segmentation) Snapshot() *Segmentation {
	snap := &Segmentation{}
	snap.segs.Store(s.segs.Load())
	return snap
}

func assess(segs []*Segment) []string {
	if len(segs) == 0 {
		return []string{"no segments"}
	}
	var issues []string
	if first := segs[0].Start(); first != timecode.Min {
		issues = append(issues, fmt.Sprintf("first segment starts at %s", first))
	}
	if last := segs[len(segs)-1].After(); last != timecode.Max {
		issues = append(issues, fmt.Sprintf("last segment ends at %s", last))
	}
	for i, seg := range segs {
		if seg.Start() >= seg.After() {
			issues = append(issues, fmt.Sprintf("segment %d %s is empty", i, seg))
		}
		if i > 0 && segs[i-1].After() != seg.Start() {
			issues = append(issues, fmt.Sprintf("discontinuity between %s and %s", segs[i-1], seg))
		}
	}
	return issues
}
