package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/renderplan/internal/compiler"
	"github.com/roach88/renderplan/internal/engine"
	"github.com/roach88/renderplan/internal/fixture"
	"github.com/roach88/renderplan/internal/ir"
	"github.com/roach88/renderplan/internal/logging"
	"github.com/roach88/renderplan/internal/planner"
	"github.com/roach88/renderplan/internal/store"
	"github.com/roach88/renderplan/internal/testutil"
	"github.com/roach88/renderplan/internal/timecode"
)

// invocationStep is how far the manual clock moves per triggered job.
const invocationStep = time.Millisecond

// Harness holds the state of one scenario run.
type Harness struct {
	journal *store.Store
	clock   *testutil.ManualClock
	model   *fixture.Model
	names   map[uint64]string
	logger  *slog.Logger
}

// Option configures a run.
type Option func(*Harness)

// WithLogger routes planner logs to l. Default: discarded.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory journal. Execution flow:
//  1. Compile and validate the fixture, append the scenario's splices
//  2. Build the model with recording functors on a manual clock
//  3. Plan the request, journaling every job
//  4. Replay the stream from the journal and compare
//  5. Trigger the jobs if the scenario asks for it
//  6. Evaluate assertions
//
// A returned error means the scenario could not run at all; assertion
// failures are reported in the Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		clock:  testutil.NewManualClock(time.Time{}),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}

	spec, err := loadFixture(scenario)
	if err != nil {
		return nil, err
	}
	h.model, err = fixture.Build(spec, fixture.WithFunctors(h.functors()))
	if err != nil {
		return nil, fmt.Errorf("failed to build fixture: %w", err)
	}
	h.names = make(map[uint64]string, len(h.model.Nodes))
	for name, n := range h.model.Nodes {
		h.names[n.Identity()] = name
	}

	h.journal, err = store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer h.journal.Close()

	req, err := planRequest(scenario.Plan)
	if err != nil {
		return nil, err
	}
	p := planner.New(h.model,
		planner.WithJournal(h.journal),
		planner.WithLogger(h.logger),
		planner.WithStreamIDs(testutil.NewSequentialIDs("stream")))
	planned, err := p.Plan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to plan: %w", err)
	}

	result := NewResult()
	result.StreamID = planned.StreamID
	result.Segments = h.model.Segmentation.Render()
	for _, j := range planned.Jobs {
		result.Trace = append(result.Trace, h.event(j))
	}

	v, err := p.Verify(ctx, h.journal, planned.StreamID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify: %w", err)
	}
	for _, m := range v.Mismatches {
		result.AddError("replay: " + m.String())
	}

	if scenario.Execute {
		if err := h.execute(planned.Jobs, result); err != nil {
			return nil, err
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// RunFile loads and runs one scenario file.
func RunFile(ctx context.Context, path string, opts ...Option) (*Scenario, *Result, error) {
	scenario, err := LoadScenario(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := Run(ctx, scenario, opts...)
	return scenario, res, err
}

func loadFixture(s *Scenario) (*ir.FixtureSpec, error) {
	specs, err := compiler.CompileFile(s.Fixture)
	if err != nil {
		return nil, fmt.Errorf("failed to compile fixture: %w", err)
	}
	spec, err := selectFixture(specs, s.Select)
	if err != nil {
		return nil, err
	}
	for _, sp := range s.Splices {
		spec.Segments = append(spec.Segments, ir.SegmentSpec{Start: sp.Start, After: sp.After, Exits: sp.Exits})
	}
	if errs := compiler.ValidateFixture(spec); len(errs) > 0 {
		return nil, fmt.Errorf("invalid fixture %s: %w", spec.Name, errs[0])
	}
	return spec, nil
}

func selectFixture(specs []ir.FixtureSpec, name string) (*ir.FixtureSpec, error) {
	if name == "" {
		if len(specs) != 1 {
			return nil, fmt.Errorf("fixture file declares %d fixtures; set select", len(specs))
		}
		return &specs[0], nil
	}
	for i := range specs {
		if specs[i].Name == name {
			return &specs[i], nil
		}
	}
	return nil, fmt.Errorf("fixture %q not declared", name)
}

func planRequest(ps PlanStep) (planner.Request, error) {
	req := planner.Request{
		Port:       ps.Port,
		Expand:     ps.Expand,
		Urgency:    ps.Urgency,
		ChunkLimit: ps.ChunkLimit,
	}
	var err error
	if req.From, err = timecode.Parse(ps.From); err != nil {
		return req, fmt.Errorf("plan.from: %w", err)
	}
	if req.To, err = timecode.Parse(ps.To); err != nil {
		return req, fmt.Errorf("plan.to: %w", err)
	}
	if ps.BreakPoint != "" {
		if req.BreakPoint, err = timecode.Parse(ps.BreakPoint); err != nil {
			return req, fmt.Errorf("plan.break_point: %w", err)
		}
	}
	return req, nil
}

// functors returns one recording functor per job kind, stamping
// invocations with the harness clock.
func (h *Harness) functors() fixture.FunctorFactory {
	byKind := make(map[engine.JobKind]engine.JobFunctor)
	return func(kind engine.JobKind) engine.JobFunctor {
		f, ok := byKind[kind]
		if !ok {
			f = engine.NewRecordingFunctor(engine.WithKind(kind), engine.WithNow(h.clock.Now))
			byKind[kind] = f
		}
		return f
	}
}

func (h *Harness) event(j engine.ScheduledJob) TraceEvent {
	key := j.Job.Key()
	node := "nop"
	if !j.Job.IsNOP() {
		node = h.names[key.Seed]
	}
	return TraceEvent{
		Seq:      j.Seq,
		Frame:    j.FrameNr,
		Depth:    j.Depth,
		Node:     node,
		Mark:     key.Seed,
		Kind:     j.Job.Kind().String(),
		Nominal:  j.Job.NominalTime().String(),
		Deadline: j.Deadline.String(),
	}
}

// execute triggers the jobs in dispatch order and checks that each one
// reached its functor with the planned parameters.
func (h *Harness) execute(jobs []engine.ScheduledJob, result *Result) error {
	for _, j := range jobs {
		if j.Job.IsNOP() {
			continue
		}
		if err := j.Job.Trigger(); err != nil {
			return fmt.Errorf("job #%d: %w", j.Seq, err)
		}
		h.clock.Advance(invocationStep)
		if rec, ok := j.Job.Functor.(*engine.RecordingFunctor); ok && !rec.WasInvoked(j.Job.Parameter) {
			result.AddError(fmt.Sprintf("job #%d: functor has no record of %s", j.Seq, j.Job.Key()))
			continue
		}
		result.Invocations[h.names[j.Job.Key().Seed]]++
	}
	return nil
}
