package ir

// FixtureSpec represents a compiled render fixture.
type FixtureSpec struct {
	Name     string        `json:"name"`
	Timings  TimingsSpec   `json:"timings"`
	Ports    []string      `json:"ports"`
	Nodes    []NodeSpec    `json:"nodes"`
	Segments []SegmentSpec `json:"segments"`
}

// TimingsSpec describes the frame grid and delivery schedule of a stream.
type TimingsSpec struct {
	FrameRate     string `json:"frame_rate"`               // "25" or "30000/1001"
	Origin        string `json:"origin,omitempty"`         // grid origin, defaults to 0
	Urgency       string `json:"urgency,omitempty"`        // asap, nice or timebound
	Delivery      string `json:"delivery,omitempty"`       // scheduled delivery of frame 0
	EngineLatency string `json:"engine_latency,omitempty"` // Go duration
	OutputLatency string `json:"output_latency,omitempty"` // Go duration
}

// NodeSpec represents an exit node of the render model.
type NodeSpec struct {
	Name          string   `json:"name"`
	Mark          int64    `json:"mark,omitempty"` // explicit identity; derived from Name when 0
	Kind          string   `json:"kind,omitempty"` // calc, load or meta
	Runtime       string   `json:"runtime,omitempty"`
	Prerequisites []string `json:"prerequisites,omitempty"` // node names
}

// SegmentSpec attaches exit nodes to an interval of the timeline.
// Segments are applied in order; later segments splice over earlier ones.
type SegmentSpec struct {
	Start string            `json:"start,omitempty"` // empty = extend to predecessor
	After string            `json:"after,omitempty"` // empty = extend to successor
	Exits map[string]string `json:"exits"`           // port -> node name
}

// ValidKinds defines allowed node kinds.
var ValidKinds = map[string]bool{
	"":     true,
	"calc": true,
	"load": true,
	"meta": true,
}

// ValidUrgencies defines allowed stream urgencies.
var ValidUrgencies = map[string]bool{
	"":          true,
	"asap":      true,
	"nice":      true,
	"timebound": true,
}

// Node returns the node spec with the given name.
func (f *FixtureSpec) Node(name string) (NodeSpec, bool) {
	for _, n := range f.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeSpec{}, false
}
