package fixture

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/renderplan/internal/engine"
	"github.com/roach88/renderplan/internal/ir"
	"github.com/roach88/renderplan/internal/splice"
	"github.com/roach88/renderplan/internal/timecode"
)

// BuildError reports a fixture that cannot be turned into a model.
type BuildError struct {
	Field   string // e.g. "nodes.grade.runtime"
	Message string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("fixture: %s: %s", e.Field, e.Message)
}

func buildErr(field, format string, args ...any) *BuildError {
	return &BuildError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Model is a render model ready for planning.
type Model struct {
	Name         string
	Hash         string
	Ports        *PortRegistry
	Segmentation *Segmentation
	Timings      engine.Timings
	Nodes        map[string]*engine.ExitNode
}

// Dispatcher returns a dispatcher answering from the model's segmentation.
func (m *Model) Dispatcher() *Dispatcher {
	return NewDispatcher(m.Segmentation, m.Ports)
}

// FunctorFactory supplies the functor for nodes of a given kind.
type FunctorFactory func(kind engine.JobKind) engine.JobFunctor

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	functors FunctorFactory
}

// WithFunctors overrides how node functors are created.
// Default: one RecordingFunctor per job kind.
func WithFunctors(f FunctorFactory) BuildOption {
	return func(c *buildConfig) { c.functors = f }
}

// Build turns a compiled fixture into a Model: it parses timings, resolves
// node graphs and applies the segments in declaration order.
func Build(spec *ir.FixtureSpec, opts ...BuildOption) (*Model, error) {
	cfg := buildConfig{functors: recordingFunctors()}
	for _, opt := range opts {
		opt(&cfg)
	}

	hash, err := ir.FixtureHash(spec)
	if err != nil {
		return nil, buildErr("fixture", "%v", err)
	}

	names := make([]engine.ModelPort, len(spec.Ports))
	for i, p := range spec.Ports {
		names[i] = engine.ModelPort(p)
	}
	ports, err := NewPortRegistry(names...)
	if err != nil {
		return nil, buildErr("ports", "%v", err)
	}

	tm, err := ParseTimings(spec.Timings)
	if err != nil {
		return nil, err
	}

	nb := nodeBuilder{spec: spec, cfg: cfg, built: make(map[string]*engine.ExitNode)}
	for _, n := range spec.Nodes {
		if _, err := nb.build(n.Name, nil); err != nil {
			return nil, err
		}
	}

	segs := NewSegmentation()
	for i, s := range spec.Segments {
		if err := applySegment(segs, ports, nb.built, i, s); err != nil {
			return nil, err
		}
	}

	return &Model{
		Name:         spec.Name,
		Hash:         hash,
		Ports:        ports,
		Segmentation: segs,
		Timings:      tm,
		Nodes:        nb.built,
	}, nil
}

// ParseTimings converts textual timings into engine.Timings.
func ParseTimings(ts ir.TimingsSpec) (engine.Timings, error) {
	rate, err := timecode.ParseFrameRate(ts.FrameRate)
	if err != nil {
		return engine.Timings{}, buildErr("timings.frame_rate", "%v", err)
	}
	var opts []engine.TimingsOption
	if ts.Origin != "" {
		origin, err := timecode.Parse(ts.Origin)
		if err != nil {
			return engine.Timings{}, buildErr("timings.origin", "%v", err)
		}
		if origin.IsInfinite() {
			return engine.Timings{}, buildErr("timings.origin", "origin must be finite, got %s", origin)
		}
		opts = append(opts, engine.WithGridOrigin(origin))
	}
	if ts.Delivery != "" {
		delivery, err := timecode.Parse(ts.Delivery)
		if err != nil {
			return engine.Timings{}, buildErr("timings.delivery", "%v", err)
		}
		opts = append(opts, engine.WithDelivery(delivery))
	}
	if ts.Urgency != "" {
		u, err := engine.ParseUrgency(ts.Urgency)
		if err != nil {
			return engine.Timings{}, buildErr("timings.urgency", "%v", err)
		}
		opts = append(opts, engine.WithUrgency(u))
	}
	if ts.EngineLatency != "" {
		d, err := time.ParseDuration(ts.EngineLatency)
		if err != nil {
			return engine.Timings{}, buildErr("timings.engine_latency", "%v", err)
		}
		opts = append(opts, engine.WithEngineLatency(d))
	}
	if ts.OutputLatency != "" {
		d, err := time.ParseDuration(ts.OutputLatency)
		if err != nil {
			return engine.Timings{}, buildErr("timings.output_latency", "%v", err)
		}
		opts = append(opts, engine.WithOutputLatency(d))
	}
	tm, err := engine.NewTimings(rate, opts...)
	if err != nil {
		return engine.Timings{}, buildErr("timings", "%v", err)
	}
	return tm, nil
}

// ParseKind maps a node kind name to its JobKind. Empty means calc.
func ParseKind(s string) (engine.JobKind, error) {
	switch strings.ToLower(s) {
	case "", "calc":
		return engine.CalcJob, nil
	case "load":
		return engine.LoadJob, nil
	case "meta":
		return engine.MetaJob, nil
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

func recordingFunctors() FunctorFactory {
	byKind := make(map[engine.JobKind]engine.JobFunctor)
	return func(kind engine.JobKind) engine.JobFunctor {
		f, ok := byKind[kind]
		if !ok {
			f = engine.NewRecordingFunctor(engine.WithKind(kind))
			byKind[kind] = f
		}
		return f
	}
}

type nodeBuilder struct {
	spec  *ir.FixtureSpec
	cfg   buildConfig
	built map[string]*engine.ExitNode
}

// build resolves a node and its prerequisites depth first. path holds the
// names currently under construction, for cycle reporting.
func (b *nodeBuilder) build(name string, path []string) (*engine.ExitNode, error) {
	if n, ok := b.built[name]; ok {
		return n, nil
	}
	for i, p := range path {
		if p == name {
			cycle := append(append([]string(nil), path[i:]...), name)
			return nil, buildErr("nodes."+name, "prerequisite cycle %s", strings.Join(cycle, " -> "))
		}
	}
	spec, ok := b.spec.Node(name)
	if !ok {
		field := "nodes"
		if len(path) > 0 {
			field = "nodes." + path[len(path)-1] + ".prerequisites"
		}
		return nil, buildErr(field, "unknown node %q", name)
	}

	kind, err := ParseKind(spec.Kind)
	if err != nil {
		return nil, buildErr("nodes."+name+".kind", "%v", err)
	}
	var runtime time.Duration
	if spec.Runtime != "" {
		if runtime, err = time.ParseDuration(spec.Runtime); err != nil {
			return nil, buildErr("nodes."+name+".runtime", "%v", err)
		}
		if runtime < 0 {
			return nil, buildErr("nodes."+name+".runtime", "must not be negative")
		}
	}
	if spec.Mark < 0 {
		return nil, buildErr("nodes."+name+".mark", "must not be negative")
	}
	identity := uint64(spec.Mark)
	if identity == 0 {
		identity = ir.PipelineIdentity(name)
	}

	prereqs := make([]*engine.ExitNode, 0, len(spec.Prerequisites))
	for _, pre := range spec.Prerequisites {
		n, err := b.build(pre, append(path, name))
		if err != nil {
			return nil, err
		}
		prereqs = append(prereqs, n)
	}

	n := engine.NewExitNode(identity, b.cfg.functors(kind),
		engine.WithRuntime(runtime),
		engine.WithPrerequisites(prereqs...),
		engine.WithLabel(name))
	b.built[name] = n
	return n, nil
}

func applySegment(segs *Segmentation, ports *PortRegistry, nodes map[string]*engine.ExitNode, i int, s ir.SegmentSpec) error {
	field := fmt.Sprintf("segments[%d]", i)
	bound := func(text, name string) (splice.Bound[timecode.Time], error) {
		if text == "" {
			return splice.None[timecode.Time](), nil
		}
		t, err := timecode.Parse(text)
		if err != nil {
			return splice.Bound[timecode.Time]{}, buildErr(field+"."+name, "%v", err)
		}
		return splice.Some(t), nil
	}
	start, err := bound(s.Start, "start")
	if err != nil {
		return err
	}
	after, err := bound(s.After, "after")
	if err != nil {
		return err
	}
	if st, ok := start.Get(); ok {
		if af, ok := after.Get(); ok && st == af {
			return buildErr(field, "segment [%s,%s) is empty", st, af)
		}
	}

	exits := make([]*engine.ExitNode, ports.Len())
	for port, name := range s.Exits {
		idx, err := ports.Resolve(engine.ModelPort(port))
		if err != nil {
			return buildErr(field+".exits", "%v", err)
		}
		n, ok := nodes[name]
		if !ok {
			return buildErr(field+".exits."+port, "unknown node %q", name)
		}
		exits[idx] = n
	}

	if err := spliceSafely(segs, IntervalSpec{Start: start, After: after}, NewAttachment(exits...)); err != nil {
		return buildErr(field, "%v", err)
	}
	return nil
}

// spliceSafely converts the splice panic for a degenerate interval into an
// error. Bounds derived from neighbours can still collapse to zero width.
func spliceSafely(segs *Segmentation, spec IntervalSpec, att NodeGraphAttachment) (err error) {
	defer func() {
		if r := recover(); r != nil {
			le, ok := r.(*splice.LogicError)
			if !ok {
				panic(r)
			}
			err = le
		}
	}()
	segs.SplitSplice(spec, att)
	return nil
}
