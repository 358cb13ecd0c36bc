package fixture

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/renderplan/internal/engine"
	"github.com/roach88/renderplan/internal/splice"
	"github.com/roach88/renderplan/internal/timecode"
)

func TestSegmentation_Initial(t *testing.T) {
	s := NewSegmentation()
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "├[-∞~+∞[┤", s.Render())
	assert.True(t, s.IsValid())
	for _, tm := range []timecode.Time{timecode.Min, at("-3s"), timecode.Zero, at("1s"), timecode.Max} {
		seg := s.Lookup(tm)
		assert.Same(t, engine.NOP, seg.JobTicket(0), "lookup %s", tm)
		assert.Same(t, s.Segment(0), seg, "lookup %s", tm)
	}
	assert.Equal(t, []timecode.Time{timecode.Min, timecode.Max}, s.Boundaries())
}

func TestSegmentation_SplitSplice(t *testing.T) {
	s := NewSegmentation()
	seg := s.SplitSplice(Between(at("10s"), at("20s")), attach(7))
	assert.Equal(t, at("10s"), seg.Start())
	assert.Equal(t, at("20s"), seg.After())
	assert.Equal(t, "├[-∞~10s[[10s_20s[[20s~+∞[┤", s.Render())
	assert.Equal(t, []timecode.Time{timecode.Min, at("10s"), at("20s"), timecode.Max}, s.Boundaries())

	assert.Equal(t, uint64(7), markAt(s, 0, at("10s")))
	assert.Equal(t, uint64(7), markAt(s, 0, at("19s999ms")))
	assert.Zero(t, markAt(s, 0, at("20s")))
	assert.Zero(t, markAt(s, 0, at("9s")))
}

func TestSegmentation_TruncatedSegmentKeepsTickets(t *testing.T) {
	s := NewSegmentation()
	s.SplitSplice(Between(at("10s"), at("20s")), attach(7))
	before := s.Lookup(at("12s")).JobTicket(0)

	s.SplitSplice(StartingAt(at("15s")), attach(8))
	assert.Equal(t, "├[-∞~10s[[10s_15s[[15s_20s[[20s~+∞[┤", s.Render())
	assert.Same(t, before, s.Lookup(at("12s")).JobTicket(0))
	assert.Equal(t, uint64(8), markAt(s, 0, at("15s")))
}

func TestSegmentation_OmittedBounds(t *testing.T) {
	s := NewSegmentation()
	s.SplitSplice(EndingAt(at("5s")), attach(1))
	assert.Equal(t, "├[-∞_5s[[5s~+∞[┤", s.Render())

	s.SplitSplice(LastSegment(), attach(2))
	assert.Equal(t, "├[-∞_5s[[5s_+∞[┤", s.Render())
	assert.Equal(t, uint64(2), markAt(s, 0, timecode.Max))

	s.SplitSplice(Everything(), attach(3))
	assert.Equal(t, "├[-∞_+∞[┤", s.Render())
}

func TestSegmentation_ReversedBounds(t *testing.T) {
	a, b := NewSegmentation(), NewSegmentation()
	a.SplitSplice(Between(at("10s"), at("20s")), attach(1))
	b.SplitSplice(Between(at("20s"), at("10s")), attach(1))
	assert.Equal(t, a.Render(), b.Render())
}

func TestSegmentation_ZeroWidthPanics(t *testing.T) {
	s := NewSegmentation()
	assert.PanicsWithError(t, "split-splice: zero-width segment at 5s", func() {
		s.SplitSplice(Between(at("5s"), at("5s")), attach(1))
	})
	assert.Equal(t, "├[-∞~+∞[┤", s.Render(), "unchanged after failure")
}

func TestSegmentation_SnapshotIsolation(t *testing.T) {
	s := NewSegmentation()
	s.SplitSplice(Between(at("0s"), at("1s")), attach(1))
	snap := s.Snapshot()

	s.SplitSplice(Between(at("500ms"), at("2s")), attach(2))
	assert.Equal(t, "├[-∞~0s[[0s_1s[[1s~+∞[┤", snap.Render())
	assert.Equal(t, "├[-∞~0s[[0s_500ms[[500ms_2s[[2s~+∞[┤", s.Render())
}

func TestSegmentation_ConcurrentReaders(t *testing.T) {
	s := NewSegmentation()
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				snap := s.Snapshot()
				assert.Empty(t, snap.Assess())
				_ = snap.Lookup(at("1s"))
			}
		}()
	}
	for i := 1; i <= 50; i++ {
		s.SplitSplice(Between(timecode.At(time.Duration(i)*ms), timecode.At(time.Duration(i+10)*ms)), attach(uint64(i)))
	}
	wg.Wait()
	assert.True(t, s.IsValid())
}

func TestSegmentation_IterateSegments(t *testing.T) {
	s := NewSegmentation()
	s.SplitSplice(Between(at("1s"), at("2s")), attach(1))

	var n int
	for seg := range s.All() {
		assert.Same(t, s.Segment(n), seg)
		n++
	}
	assert.Equal(t, 3, n)

	src := s.Segments()
	require.True(t, src.Valid())
	assert.True(t, src.Current().IsEmpty())
}

func TestIntervalSpec_String(t *testing.T) {
	assert.Equal(t, "(1s,∅)", StartingAt(at("1s")).String())
	assert.Equal(t, "(∅,∅)", LastSegment().String())
	assert.Equal(t, splice.Some(timecode.Min), Everything().Start)
}

func TestSegment_JobTicket(t *testing.T) {
	seg := NewSegment(timecode.Span(at("0s"), at("1s")), attach(3, 0))
	assert.False(t, seg.IsEmpty())
	assert.Equal(t, uint64(3), seg.JobTicket(0).Node().Identity())
	assert.Same(t, engine.NOP, seg.JobTicket(1), "empty slot")
	assert.Same(t, engine.NOP, seg.JobTicket(5), "out of range")
	assert.Same(t, engine.NOP, seg.JobTicket(-1))
	assert.Equal(t, "[0s_1s[", seg.String())
	assert.Equal(t, "[0s~1s[", EmptySegment(seg.Span()).String())
}

func TestAttachment(t *testing.T) {
	a := attach(1, 0)
	assert.Equal(t, 2, a.Len())
	assert.Same(t, engine.NilExitNode, a.At(1))
	assert.Same(t, engine.NilExitNode, a.At(9))
	assert.False(t, a.IsEmpty())
	assert.True(t, attach(0, 0).IsEmpty())
	assert.True(t, NewAttachment().IsEmpty())
	assert.Equal(t, "{ExitNode(n1#1),ExitNode(∅)}", a.String())
}
