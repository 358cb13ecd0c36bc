package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/renderplan/internal/ir"
)

// TraceSnapshot captures what a scenario planned, for golden comparison.
type TraceSnapshot struct {
	ScenarioName string
	StreamID     string
	Segments     string
	Trace        []TraceEvent
}

// toCanonicalMap converts the snapshot for ir.MarshalCanonical, which
// only handles maps, slices and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	jobs := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		jobs[i] = map[string]any{
			"seq":      ev.Seq,
			"frame":    ev.Frame,
			"depth":    ev.Depth,
			"node":     ev.Node,
			"mark":     int64(ev.Mark),
			"kind":     ev.Kind,
			"nominal":  ev.Nominal,
			"deadline": ev.Deadline,
		}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"stream_id":     s.StreamID,
		"segments":      s.Segments,
		"jobs":          jobs,
	}
}

// MarshalSnapshot renders a result as canonical JSON.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snap := TraceSnapshot{
		ScenarioName: name,
		StreamID:     result.StreamID,
		Segments:     result.Segments,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snap.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
