package engine

import (
	"fmt"
	"time"

	"github.com/roach88/renderplan/internal/explore"
	"github.com/roach88/renderplan/internal/timecode"
)

// JobPlanning is one step of the planning walk: a ticket applied to a
// frame, linked to the planning of the job depending on it. Top-level
// plannings have no dependent.
type JobPlanning struct {
	ticket    *JobTicket
	nominal   timecode.Time
	frameNr   int64
	dependent *JobPlanning
}

// NewJobPlanning creates a top-level planning for frame frameNr.
func NewJobPlanning(ticket *JobTicket, nominal timecode.Time, frameNr int64) *JobPlanning {
	return &JobPlanning{ticket: ticket, nominal: nominal, frameNr: frameNr}
}

// Ticket returns the planned ticket.
func (p *JobPlanning) Ticket() *JobTicket { return p.ticket }

// NominalTime returns the frame time being planned.
func (p *JobPlanning) NominalTime() timecode.Time { return p.nominal }

// FrameNr returns the frame number being planned.
func (p *JobPlanning) FrameNr() int64 { return p.frameNr }

// Dependent returns the planning depending on this one, nil at top level.
func (p *JobPlanning) Dependent() *JobPlanning { return p.dependent }

// IsTopLevel reports whether no other job depends on this one.
func (p *JobPlanning) IsTopLevel() bool { return p.dependent == nil }

// Depth counts the dependents up to the top level.
func (p *JobPlanning) Depth() int {
	d := 0
	for q := p.dependent; q != nil; q = q.dependent {
		d++
	}
	return d
}

// BuildJob creates the job for this planning step.
func (p *JobPlanning) BuildJob() Job {
	return p.ticket.CreateJobFor(p.nominal)
}

// DetermineDeadline returns the latest start time allowing delivery in
// time. A top-level job must be done when the frame is due minus the output
// latency; every prerequisite must be done by the time its dependent has to
// start. Each job in the chain accounts for its runtime plus the engine
// latency. Streams without delivery schedule yield timecode.Anytime.
func (p *JobPlanning) DetermineDeadline(tm Timings) timecode.Time {
	switch tm.Urgency {
	case ASAP, NICE:
		return timecode.Anytime
	case TIMEBOUND:
		budget := tm.OutputLatency
		for q := p; q != nil; q = q.dependent {
			budget += q.ticket.ExpectedRuntime() + tm.EngineLatency
		}
		return tm.TimeDue(p.frameNr).Add(-budget)
	}
	logicError("unsupported urgency %s", tm.Urgency)
	return timecode.Anytime
}

// BuildDependencyPlanning iterates the plannings of this step's
// prerequisites, each linked back to this planning.
func (p *JobPlanning) BuildDependencyPlanning() explore.Source[*JobPlanning] {
	return explore.Transform(p.ticket.Prerequisites(), func(pre *JobTicket) *JobPlanning {
		return &JobPlanning{ticket: pre, nominal: p.nominal, frameNr: p.frameNr, dependent: p}
	})
}

// ExpectedRuntime is the runtime the deadline calculation plans with.
func (p *JobPlanning) ExpectedRuntime() time.Duration {
	return p.ticket.ExpectedRuntime()
}

func (p *JobPlanning) String() string {
	return fmt.Sprintf("JobPlanning(%s@%s#%d)", p.ticket, p.nominal, p.frameNr)
}
