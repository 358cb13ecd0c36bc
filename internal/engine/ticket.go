package engine

import (
	"fmt"
	"time"

	"github.com/roach88/renderplan/internal/explore"
	"github.com/roach88/renderplan/internal/timecode"
)

// DefaultExpectedRuntime is assumed for nodes that declare no runtime.
const DefaultExpectedRuntime = 20 * time.Millisecond

// JobTicket is the execution plan for one output slot of a segment: it
// binds the slot's ExitNode to its functor and invocation seed, and holds
// one ticket per prerequisite. Tickets are built once per segment, are
// immutable and may be read concurrently by any number of pipelines.
//
// A ticket for a slot without processing is the NOP ticket, a process-wide
// sentinel generating jobs that do nothing.
type JobTicket struct {
	node     *ExitNode
	seed     InvocationKey
	prereqs  *prerequisite
	topLevel bool
}

// prerequisite links the tickets of a dependent; new entries are prepended.
type prerequisite struct {
	ticket *JobTicket
	next   *prerequisite
}

// NOP is the ticket of slots without processing.
var NOP = &JobTicket{node: NilExitNode, topLevel: true}

// NewJobTicket creates the top-level ticket for node, together with the
// tickets of its whole prerequisite tree. An empty node yields NOP.
func NewJobTicket(node *ExitNode) *JobTicket {
	if node.IsEmpty() {
		return NOP
	}
	return newTicket(node, true)
}

func newTicket(node *ExitNode, topLevel bool) *JobTicket {
	t := &JobTicket{
		node:     node,
		seed:     node.Functor().BuildInstanceKey(node.Identity()),
		topLevel: topLevel,
	}
	for pre := range explore.All(node.Prerequisites()) {
		if pre.IsEmpty() {
			continue
		}
		t.prereqs = &prerequisite{ticket: newTicket(pre, false), next: t.prereqs}
	}
	return t
}

// IsNOP reports whether this is the NOP sentinel.
func (t *JobTicket) IsNOP() bool { return t == NOP }

// IsTopLevel reports whether the ticket belongs to an output slot rather
// than being a prerequisite of another ticket.
func (t *JobTicket) IsTopLevel() bool { return t.topLevel }

// Node returns the exit node the ticket was built from.
func (t *JobTicket) Node() *ExitNode { return t.node }

// Seed returns the invocation seed of the ticket's functor.
func (t *JobTicket) Seed() InvocationKey { return t.seed }

// CreateJobFor builds the job computing this ticket's node for the frame at
// nominal. NOP yields a NOP job.
func (t *JobTicket) CreateJobFor(nominal timecode.Time) Job {
	if t.IsNOP() {
		return Job{Functor: NopFunctor, Parameter: JobParameter{NominalTime: nominal}}
	}
	return Job{
		Functor: t.node.Functor(),
		Parameter: JobParameter{
			NominalTime: nominal,
			Key:         t.keyFor(nominal),
		},
	}
}

// keyFor folds the nominal time into the seed.
func (t *JobTicket) keyFor(nominal timecode.Time) InvocationKey {
	key := t.seed
	key.Time = nominal
	return key
}

// Prerequisites iterates the prerequisite tickets, most recently attached
// first.
func (t *JobTicket) Prerequisites() explore.Source[*JobTicket] {
	return &prerequisiteCursor{curr: t.prereqs}
}

// ExpectedRuntime returns the runtime to plan with: the node's declared
// value, DefaultExpectedRuntime when none is declared, 0 for NOP.
func (t *JobTicket) ExpectedRuntime() time.Duration {
	if t.IsNOP() {
		return 0
	}
	if rt := t.node.ExpectedRuntime(); rt > 0 {
		return rt
	}
	return DefaultExpectedRuntime
}

// IsValid checks the internal consistency of the ticket tree.
func (t *JobTicket) IsValid() bool {
	if t.IsNOP() {
		return t.prereqs == nil
	}
	if t.node.IsEmpty() {
		return false
	}
	for p := t.prereqs; p != nil; p = p.next {
		if p.ticket.IsNOP() || p.ticket.topLevel || !p.ticket.IsValid() {
			return false
		}
	}
	return true
}

// VerifyInstance reports whether job could have been created by this ticket.
func (t *JobTicket) VerifyInstance(job Job) bool {
	if t.IsNOP() {
		return job.IsNOP()
	}
	return job.UsesFunctor(t.node.Functor()) && job.Key() == t.keyFor(job.NominalTime())
}

func (t *JobTicket) String() string {
	if t.IsNOP() {
		return "JobTicket(NOP)"
	}
	return fmt.Sprintf("JobTicket(%s)", t.node)
}

type prerequisiteCursor struct {
	curr *prerequisite
}

func (c *prerequisiteCursor) Valid() bool { return c.curr != nil }

func (c *prerequisiteCursor) Current() *JobTicket {
	if c.curr == nil {
		panic(explore.ErrExhausted)
	}
	return c.curr.ticket
}

func (c *prerequisiteCursor) Advance() {
	if c.curr != nil {
		c.curr = c.curr.next
	}
}
