package fixture

import (
	"fmt"

	"github.com/roach88/renderplan/internal/engine"
)

// PortRegistry maps model port names to attachment indices.
type PortRegistry struct {
	names []engine.ModelPort
	index map[engine.ModelPort]int
}

// NewPortRegistry registers ports in order; port i gets index i.
func NewPortRegistry(ports ...engine.ModelPort) (*PortRegistry, error) {
	r := &PortRegistry{index: make(map[engine.ModelPort]int, len(ports))}
	for _, p := range ports {
		if p == "" {
			return nil, fmt.Errorf("model port name must not be empty")
		}
		if _, dup := r.index[p]; dup {
			return nil, fmt.Errorf("duplicate model port %q", p)
		}
		r.index[p] = len(r.names)
		r.names = append(r.names, p)
	}
	return r, nil
}

// MustPortRegistry is like NewPortRegistry but panics on error.
func MustPortRegistry(ports ...engine.ModelPort) *PortRegistry {
	r, err := NewPortRegistry(ports...)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the index of port.
func (r *PortRegistry) Resolve(port engine.ModelPort) (int, error) {
	idx, ok := r.index[port]
	if !ok {
		return 0, engine.NewUnknownPortError(port)
	}
	return idx, nil
}

// Ports lists the registered ports in index order.
func (r *PortRegistry) Ports() []engine.ModelPort {
	return append([]engine.ModelPort(nil), r.names...)
}

// Len returns the number of registered ports.
func (r *PortRegistry) Len() int { return len(r.names) }
