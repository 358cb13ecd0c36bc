package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/renderplan/internal/ir"
)

func validFixture() *ir.FixtureSpec {
	return &ir.FixtureSpec{
		Name:    "valid",
		Timings: ir.TimingsSpec{FrameRate: "25", Urgency: "timebound", Delivery: "1s", EngineLatency: "10ms"},
		Ports:   []string{"main", "aux"},
		Nodes: []ir.NodeSpec{
			{Name: "grade", Mark: 1, Runtime: "10ms", Prerequisites: []string{"decode"}},
			{Name: "decode", Kind: "load"},
		},
		Segments: []ir.SegmentSpec{
			{Start: "0s", After: "10s", Exits: map[string]string{"main": "grade", "aux": "decode"}},
			{Start: "-inf", Exits: map[string]string{}},
		},
	}
}

func codes(errs []ValidationError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestValidateFixtureValid(t *testing.T) {
	assert.Empty(t, ValidateFixture(validFixture()))
}

func TestValidateFixtureErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ir.FixtureSpec)
		code   string
		field  string
	}{
		{"empty name", func(f *ir.FixtureSpec) { f.Name = " " }, ErrFixtureNameEmpty, "name"},
		{"zero rate", func(f *ir.FixtureSpec) { f.Timings.FrameRate = "0" }, ErrInvalidFrameRate, "timings.frame_rate"},
		{"float rate", func(f *ir.FixtureSpec) { f.Timings.FrameRate = "29.97" }, ErrFloatTypeForbidden, "timings.frame_rate"},
		{"urgency", func(f *ir.FixtureSpec) { f.Timings.Urgency = "soonish" }, ErrInvalidUrgency, "timings.urgency"},
		{"no delivery", func(f *ir.FixtureSpec) { f.Timings.Delivery = "" }, ErrMissingDelivery, "timings.delivery"},
		{"bad latency", func(f *ir.FixtureSpec) { f.Timings.EngineLatency = "-1ms" }, ErrInvalidTime, "timings.engine_latency"},
		{"bad origin", func(f *ir.FixtureSpec) { f.Timings.Origin = "noon" }, ErrInvalidTime, "timings.origin"},
		{"open origin", func(f *ir.FixtureSpec) { f.Timings.Origin = "-inf" }, ErrInvalidTime, "timings.origin"},
		{"no ports", func(f *ir.FixtureSpec) {
			f.Ports = nil
			f.Segments = nil
		}, ErrNoPorts, "ports"},
		{"duplicate port", func(f *ir.FixtureSpec) { f.Ports = append(f.Ports, "main") }, ErrDuplicateName, "ports[2]"},
		{"duplicate node", func(f *ir.FixtureSpec) { f.Nodes = append(f.Nodes, ir.NodeSpec{Name: "decode"}) }, ErrDuplicateName, "nodes[2].name"},
		{"kind", func(f *ir.FixtureSpec) { f.Nodes[1].Kind = "paint" }, ErrInvalidKind, "nodes[1].kind"},
		{"runtime", func(f *ir.FixtureSpec) { f.Nodes[0].Runtime = "-5ms" }, ErrNegativeRuntime, "nodes[0].runtime"},
		{"runtime syntax", func(f *ir.FixtureSpec) { f.Nodes[0].Runtime = "quick" }, ErrInvalidTime, "nodes[0].runtime"},
		{"negative mark", func(f *ir.FixtureSpec) { f.Nodes[0].Mark = -1 }, ErrInvalidMark, "nodes[0].mark"},
		{"duplicate mark", func(f *ir.FixtureSpec) { f.Nodes[1].Mark = 1 }, ErrInvalidMark, "nodes[1].mark"},
		{"unknown prerequisite", func(f *ir.FixtureSpec) { f.Nodes[1].Prerequisites = []string{"ghost"} }, ErrUnknownPrerequisite, "nodes[1].prerequisites[0]"},
		{"cycle", func(f *ir.FixtureSpec) { f.Nodes[1].Prerequisites = []string{"grade"} }, ErrPrerequisiteCycle, "nodes.grade"},
		{"unknown port", func(f *ir.FixtureSpec) { f.Segments[0].Exits["side"] = "grade" }, ErrUnknownPort, "segments[0].exits.side"},
		{"unknown exit", func(f *ir.FixtureSpec) { f.Segments[0].Exits["main"] = "ghost" }, ErrUnknownExitNode, "segments[0].exits.main"},
		{"bad bound", func(f *ir.FixtureSpec) { f.Segments[0].After = "later" }, ErrInvalidTime, "segments[0].after"},
		{"empty segment", func(f *ir.FixtureSpec) { f.Segments[0].After = "0ms" }, ErrEmptySegment, "segments[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFixture()
			tt.mutate(f)
			errs := ValidateFixture(f)
			assert.Contains(t, codes(errs), tt.code)
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateFixtureCollectsAll(t *testing.T) {
	f := validFixture()
	f.Name = ""
	f.Nodes[1].Kind = "paint"
	f.Segments[0].Exits["main"] = "ghost"
	assert.Len(t, ValidateFixture(f), 3)
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "ports", Message: "at least one model port is required", Code: ErrNoPorts}
	assert.Equal(t, "[E105] ports: at least one model port is required", e.Error())
}
