package fixture

import (
	"fmt"
	"time"

	"github.com/roach88/renderplan/internal/engine"
	"github.com/roach88/renderplan/internal/explore"
	"github.com/roach88/renderplan/internal/timecode"
)

var ms = time.Millisecond

func at(s string) timecode.Time { return timecode.MustParse(s) }

var testFunctor = engine.NewRecordingFunctor()

func node(mark uint64, runtime time.Duration, prereqs ...*engine.ExitNode) *engine.ExitNode {
	return engine.NewExitNode(mark, testFunctor,
		engine.WithRuntime(runtime),
		engine.WithPrerequisites(prereqs...),
		engine.WithLabel(fmt.Sprintf("n%d", mark)))
}

// attach builds an attachment of single-node graphs for the given marks.
func attach(marks ...uint64) NodeGraphAttachment {
	exits := make([]*engine.ExitNode, len(marks))
	for i, m := range marks {
		if m != 0 {
			exits[i] = node(m, 0)
		}
	}
	return NewAttachment(exits...)
}

// markAt returns the node identity serving port idx at t, 0 for NOP.
func markAt(s *Segmentation, idx int, t timecode.Time) uint64 {
	return s.Lookup(t).JobTicket(idx).Node().Identity()
}

func traceDeadlines(src explore.Source[*engine.JobPlanning], tm engine.Timings) string {
	return explore.Materialise(src, "-", func(p *engine.JobPlanning) string {
		return fmt.Sprintf("J(%d|%s⧐%s)", p.BuildJob().Key().Seed, p.NominalTime(), p.DetermineDeadline(tm))
	})
}
