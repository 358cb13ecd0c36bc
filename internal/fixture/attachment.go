package fixture

import (
	"strings"

	"github.com/roach88/renderplan/internal/engine"
)

// NodeGraphAttachment binds one exit node to each model port, by port index.
type NodeGraphAttachment struct {
	exits []*engine.ExitNode
}

// NewAttachment creates an attachment; exits[i] serves model port i.
func NewAttachment(exits ...*engine.ExitNode) NodeGraphAttachment {
	return NodeGraphAttachment{exits: append([]*engine.ExitNode(nil), exits...)}
}

// Len returns the number of attached ports.
func (a NodeGraphAttachment) Len() int { return len(a.exits) }

// At returns the exit node for port idx, or NilExitNode if none is attached.
func (a NodeGraphAttachment) At(idx int) *engine.ExitNode {
	if idx < 0 || idx >= len(a.exits) || a.exits[idx] == nil {
		return engine.NilExitNode
	}
	return a.exits[idx]
}

// IsEmpty reports whether no port has a usable exit node.
func (a NodeGraphAttachment) IsEmpty() bool {
	for _, n := range a.exits {
		if !n.IsEmpty() {
			return false
		}
	}
	return true
}

func (a NodeGraphAttachment) String() string {
	parts := make([]string, len(a.exits))
	for i := range a.exits {
		parts[i] = a.At(i).String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
