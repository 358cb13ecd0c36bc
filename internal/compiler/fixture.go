package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/renderplan/internal/ir"
)

// CompileFixture parses a CUE value into a FixtureSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the fixture struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`fixture: playout: { ... }`)
//	spec, err := CompileFixture(v.LookupPath(cue.ParsePath("fixture.playout")))
func CompileFixture(v cue.Value) (*ir.FixtureSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.FixtureSpec{}
	if labels := v.Path().Selectors(); len(labels) > 0 {
		spec.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	var err error
	if spec.Timings, err = parseTimings(v); err != nil {
		return nil, err
	}
	if spec.Ports, err = parsePorts(v); err != nil {
		return nil, err
	}
	if spec.Nodes, err = parseNodes(v); err != nil {
		return nil, err
	}
	if spec.Segments, err = parseSegments(v); err != nil {
		return nil, err
	}
	return spec, nil
}

func parseTimings(v cue.Value) (ir.TimingsSpec, error) {
	var ts ir.TimingsSpec
	tv := v.LookupPath(cue.ParsePath("timings"))
	if !tv.Exists() {
		return ts, &CompileError{Field: "timings", Message: "timings are required", Pos: v.Pos()}
	}

	rate, err := lookupText(tv, "frame_rate")
	if err != nil {
		return ts, err
	}
	if rate == "" {
		return ts, &CompileError{Field: "timings.frame_rate", Message: "frame_rate is required", Pos: tv.Pos()}
	}
	ts.FrameRate = rate

	for _, f := range []struct {
		path string
		dst  *string
	}{
		{"origin", &ts.Origin},
		{"urgency", &ts.Urgency},
		{"delivery", &ts.Delivery},
		{"engine_latency", &ts.EngineLatency},
		{"output_latency", &ts.OutputLatency},
	} {
		if *f.dst, err = lookupText(tv, f.path); err != nil {
			return ts, err
		}
	}
	return ts, nil
}

func parsePorts(v cue.Value) ([]string, error) {
	pv := v.LookupPath(cue.ParsePath("ports"))
	if !pv.Exists() {
		// single-port fixtures may omit the list
		return []string{"main"}, nil
	}
	iter, err := pv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var ports []string
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		ports = append(ports, name)
	}
	return ports, nil
}

// parseNodes reads the node struct in declaration order.
func parseNodes(v cue.Value) ([]ir.NodeSpec, error) {
	nv := v.LookupPath(cue.ParsePath("node"))
	if !nv.Exists() {
		return nil, nil
	}
	iter, err := nv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var nodes []ir.NodeSpec
	for iter.Next() {
		name := iter.Label()
		nodeVal := iter.Value()
		n := ir.NodeSpec{Name: name}

		if mv := nodeVal.LookupPath(cue.ParsePath("mark")); mv.Exists() {
			if n.Mark, err = mv.Int64(); err != nil {
				return nil, &CompileError{
					Field:   fmt.Sprintf("node.%s.mark", name),
					Message: "mark must be an integer",
					Pos:     mv.Pos(),
				}
			}
		}
		if n.Kind, err = lookupText(nodeVal, "kind"); err != nil {
			return nil, err
		}
		if n.Runtime, err = lookupText(nodeVal, "runtime"); err != nil {
			return nil, err
		}
		if pv := nodeVal.LookupPath(cue.ParsePath("prerequisites")); pv.Exists() {
			pre, err := pv.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for pre.Next() {
				s, err := pre.Value().String()
				if err != nil {
					return nil, formatCUEError(err)
				}
				n.Prerequisites = append(n.Prerequisites, s)
			}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func parseSegments(v cue.Value) ([]ir.SegmentSpec, error) {
	sv := v.LookupPath(cue.ParsePath("segment"))
	if !sv.Exists() {
		return nil, nil
	}
	iter, err := sv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var segs []ir.SegmentSpec
	for i := 0; iter.Next(); i++ {
		segVal := iter.Value()
		s := ir.SegmentSpec{Exits: make(map[string]string)}
		if s.Start, err = lookupText(segVal, "start"); err != nil {
			return nil, err
		}
		if s.After, err = lookupText(segVal, "after"); err != nil {
			return nil, err
		}
		ev := segVal.LookupPath(cue.ParsePath("exits"))
		if !ev.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("segment[%d].exits", i),
				Message: "segment exits are required",
				Pos:     segVal.Pos(),
			}
		}
		exits, err := ev.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for exits.Next() {
			node, err := exits.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			s.Exits[exits.Label()] = node
		}
		segs = append(segs, s)
	}
	return segs, nil
}

// lookupText reads an optional textual field. Durations may be written as
// strings ("10ms") or, for whole seconds, as integers.
func lookupText(v cue.Value, path string) (string, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return "", nil
	}
	switch f.IncompleteKind() {
	case cue.StringKind:
		s, err := f.String()
		if err != nil {
			return "", formatCUEError(err)
		}
		return s, nil
	case cue.IntKind:
		n, err := f.Int64()
		if err != nil {
			return "", formatCUEError(err)
		}
		if path == "frame_rate" {
			return fmt.Sprint(n), nil
		}
		return fmt.Sprintf("%ds", n), nil
	case cue.FloatKind, cue.NumberKind:
		return "", &CompileError{
			Field:   path,
			Message: "float values are forbidden - use a string such as \"30000/1001\" or \"1.5s\"",
			Pos:     f.Pos(),
		}
	}
	return "", &CompileError{Field: path, Message: "must be a string", Pos: f.Pos()}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
