package engine

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/roach88/renderplan/internal/explore"
	"github.com/roach88/renderplan/internal/timecode"
)

var (
	ms       = time.Millisecond
	testRate = timecode.PAL
)

func at(s string) timecode.Time { return timecode.MustParse(s) }

// mockSegment holds the tickets valid from start on.
type mockSegment struct {
	start   timecode.Time
	tickets []*JobTicket
}

// mockDispatcher is a minimal in-memory Dispatcher: segments are looked up
// by start time, ports by name.
type mockDispatcher struct {
	ports []ModelPort
	segs  []mockSegment
}

func newMockDispatcher(ports ...ModelPort) *mockDispatcher {
	if len(ports) == 0 {
		ports = []ModelPort{"main"}
	}
	return &mockDispatcher{ports: ports}
}

// segment adds a segment starting at start with one ticket per port.
func (d *mockDispatcher) segment(start timecode.Time, tickets ...*JobTicket) *mockDispatcher {
	d.segs = append(d.segs, mockSegment{start: start, tickets: tickets})
	sort.Slice(d.segs, func(i, j int) bool { return d.segs[i].start < d.segs[j].start })
	return d
}

func (d *mockDispatcher) ResolveModelPort(port ModelPort) (int, error) {
	for i, p := range d.ports {
		if p == port {
			return i, nil
		}
	}
	return 0, NewUnknownPortError(port)
}

func (d *mockDispatcher) JobTicketFor(portIdx int, nominal timecode.Time) *JobTicket {
	var hit *mockSegment
	for i := range d.segs {
		if d.segs[i].start <= nominal {
			hit = &d.segs[i]
		}
	}
	if hit == nil || portIdx >= len(hit.tickets) {
		return NOP
	}
	return hit.tickets[portIdx]
}

// snapshotDispatcher hands out a frozen copy of its current state.
type snapshotDispatcher struct {
	*mockDispatcher
	snapshots int
}

func (d *snapshotDispatcher) Snapshot() Dispatcher {
	d.snapshots++
	frozen := *d.mockDispatcher
	frozen.segs = append([]mockSegment(nil), d.segs...)
	return &frozen
}

var testFunctor = NewRecordingFunctor()

// node builds an exit node identified by mark.
func node(mark uint64, runtime time.Duration, prereqs ...*ExitNode) *ExitNode {
	return NewExitNode(mark, testFunctor,
		WithRuntime(runtime),
		WithPrerequisites(prereqs...),
		WithLabel(fmt.Sprintf("n%d", mark)))
}

func ticket(mark uint64, runtime time.Duration, prereqs ...*ExitNode) *JobTicket {
	return NewJobTicket(node(mark, runtime, prereqs...))
}

// mark of a planning is the seed of its job, i.e. the node identity.
func markOf(p *JobPlanning) uint64 {
	return p.BuildJob().Key().Seed
}

// traceJobs renders plannings as J(mark|nominal).
func traceJobs(src explore.Source[*JobPlanning]) string {
	return explore.Materialise(src, "-", func(p *JobPlanning) string {
		return fmt.Sprintf("J(%d|%s)", markOf(p), p.NominalTime())
	})
}

// traceDeadlines renders plannings as J(mark|nominal⧐deadline).
func traceDeadlines(src explore.Source[*JobPlanning], tm Timings) string {
	return explore.Materialise(src, "-", func(p *JobPlanning) string {
		return fmt.Sprintf("J(%d|%s⧐%s)", markOf(p), p.NominalTime(), p.DetermineDeadline(tm))
	})
}

func fixedStream(t *testing.T) StreamOption {
	t.Helper()
	return WithStreamIDs(NewFixedGenerator("stream-1", "stream-2", "stream-3"))
}
