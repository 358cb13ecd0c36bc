package engine

import (
	"fmt"
	"time"

	"github.com/roach88/renderplan/internal/explore"
)

// ExitNode is the planning-time view of a render node graph: the node
// producing data for one output slot, together with the nodes it depends on.
//
// An ExitNode owns its prerequisites and only references its functor, which
// belongs to the low-level model. Nodes are immutable after construction;
// since prerequisites must exist before their dependent is built, the graph
// below a node is always a finite tree.
type ExitNode struct {
	identity uint64
	runtime  time.Duration
	functor  JobFunctor
	prereqs  []*ExitNode
	label    string
}

// NilExitNode marks an output slot without attached processing.
var NilExitNode = &ExitNode{}

// NodeOption configures an ExitNode under construction.
type NodeOption func(*ExitNode)

// WithRuntime sets the expected runtime of the node's job.
func WithRuntime(d time.Duration) NodeOption {
	return func(n *ExitNode) { n.runtime = d }
}

// WithPrerequisites attaches nodes that must be computed first.
func WithPrerequisites(nodes ...*ExitNode) NodeOption {
	return func(n *ExitNode) { n.prereqs = append(n.prereqs, nodes...) }
}

// WithLabel sets a diagnostic name.
func WithLabel(label string) NodeOption {
	return func(n *ExitNode) { n.label = label }
}

// NewExitNode creates a node computing with functor; identity is the
// pipeline identity hash and must be non-zero for a usable node.
func NewExitNode(identity uint64, functor JobFunctor, opts ...NodeOption) *ExitNode {
	n := &ExitNode{identity: identity, functor: functor}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// IsEmpty reports whether the node carries no processing.
func (n *ExitNode) IsEmpty() bool {
	return n == nil || n.identity == 0 || n.functor == nil
}

// Identity returns the pipeline identity hash.
func (n *ExitNode) Identity() uint64 { return n.identity }

// ExpectedRuntime returns the configured runtime, 0 if unknown.
func (n *ExitNode) ExpectedRuntime() time.Duration { return n.runtime }

// Functor returns the job functor, nil for empty nodes.
func (n *ExitNode) Functor() JobFunctor { return n.functor }

// Label returns the diagnostic name.
func (n *ExitNode) Label() string { return n.label }

// Prerequisites iterates the direct prerequisites in declaration order.
func (n *ExitNode) Prerequisites() explore.Source[*ExitNode] {
	if n == nil {
		return explore.Empty[*ExitNode]()
	}
	return explore.Slice(n.prereqs)
}

// PrerequisiteCount returns the number of direct prerequisites.
func (n *ExitNode) PrerequisiteCount() int {
	if n == nil {
		return 0
	}
	return len(n.prereqs)
}

func (n *ExitNode) String() string {
	if n.IsEmpty() {
		return "ExitNode(∅)"
	}
	if n.label != "" {
		return fmt.Sprintf("ExitNode(%s#%d)", n.label, n.identity)
	}
	return fmt.Sprintf("ExitNode(#%d)", n.identity)
}
