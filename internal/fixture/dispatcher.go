package fixture

import (
	"github.com/roach88/renderplan/internal/engine"
	"github.com/roach88/renderplan/internal/timecode"
)

var (
	_ engine.Dispatcher  = (*Dispatcher)(nil)
	_ engine.Snapshotter = (*Dispatcher)(nil)
)

// Dispatcher answers ticket queries from a Segmentation.
type Dispatcher struct {
	segments *Segmentation
	ports    *PortRegistry
}

// NewDispatcher creates a dispatcher over segments, resolving ports with
// the given registry.
func NewDispatcher(segments *Segmentation, ports *PortRegistry) *Dispatcher {
	return &Dispatcher{segments: segments, ports: ports}
}

// ResolveModelPort implements engine.Dispatcher.
func (d *Dispatcher) ResolveModelPort(port engine.ModelPort) (int, error) {
	return d.ports.Resolve(port)
}

// JobTicketFor implements engine.Dispatcher.
func (d *Dispatcher) JobTicketFor(portIdx int, nominal timecode.Time) *engine.JobTicket {
	return d.segments.Lookup(nominal).JobTicket(portIdx)
}

// Snapshot implements engine.Snapshotter.
func (d *Dispatcher) Snapshot() engine.Dispatcher {
	return &Dispatcher{segments: d.segments.Snapshot(), ports: d.ports}
}

// Segmentation returns the segmentation queried by d.
func (d *Dispatcher) Segmentation() *Segmentation { return d.segments }

// Ports returns the port registry of d.
func (d *Dispatcher) Ports() *PortRegistry { return d.ports }
