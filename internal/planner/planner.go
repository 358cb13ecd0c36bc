package planner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/renderplan/internal/engine"
	"github.com/roach88/renderplan/internal/fixture"
	"github.com/roach88/renderplan/internal/ir"
	"github.com/roach88/renderplan/internal/logging"
	"github.com/roach88/renderplan/internal/store"
	"github.com/roach88/renderplan/internal/timecode"
)

// Request selects what to plan.
type Request struct {
	Port   string
	From   timecode.Time
	To     timecode.Time
	Expand bool

	// Urgency overrides the fixture's urgency when set.
	Urgency string

	// BreakPoint splits dispatch into chunks: every Dispatch call stops
	// at the next multiple of BreakPoint past From. Zero dispatches all
	// jobs in one chunk.
	BreakPoint timecode.Time

	// ChunkLimit caps the jobs of one chunk. Zero means unlimited.
	ChunkLimit int
}

// Result is the outcome of one planning run.
type Result struct {
	StreamID string
	Fixture  string
	Port     string
	Range    timecode.Interval
	Timings  engine.Timings
	Jobs     []engine.ScheduledJob
	Chunks   int
}

// Option configures a Planner.
type Option func(*Planner)

// WithJournal records every stream and job in st.
func WithJournal(st *store.Store) Option {
	return func(p *Planner) { p.journal = st }
}

// WithLogger sets the logger handed to planning streams.
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// WithObserver attaches an observer to every stream.
func WithObserver(o engine.Observer) Option {
	return func(p *Planner) { p.observer = o }
}

// WithStreamIDs sets the stream id generator.
// Default: engine.UUIDv7Generator
func WithStreamIDs(g engine.StreamIDGenerator) Option {
	return func(p *Planner) { p.ids = g }
}

// Planner plans requests against one fixture model.
type Planner struct {
	model    *fixture.Model
	journal  *store.Store
	logger   *slog.Logger
	observer engine.Observer
	ids      engine.StreamIDGenerator
}

// New creates a planner for model.
func New(model *fixture.Model, opts ...Option) *Planner {
	p := &Planner{
		model:  model,
		logger: logging.Discard(),
		ids:    engine.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "planner", "fixture", model.Name)
	return p
}

// Model returns the fixture model the planner works on.
func (p *Planner) Model() *fixture.Model { return p.model }

// TimingsFor returns the fixture timings with urgency overridden.
func (p *Planner) TimingsFor(urgency string) (engine.Timings, error) {
	tm := p.model.Timings
	if urgency == "" {
		return tm, nil
	}
	u, err := engine.ParseUrgency(urgency)
	if err != nil {
		return engine.Timings{}, err
	}
	if u == engine.TIMEBOUND && tm.ScheduledDelivery == timecode.Never {
		return engine.Timings{}, &engine.PlanningError{
			Code:    engine.ErrCodeInvalidTimings,
			Message: fmt.Sprintf("fixture %s has no delivery time for a time-bound stream", p.model.Name),
		}
	}
	tm.Urgency = u
	return tm, nil
}

// Plan dispatches all jobs of req and returns them in dispatch order.
func (p *Planner) Plan(ctx context.Context, req Request) (*Result, error) {
	return p.plan(ctx, req, p.ids)
}

func (p *Planner) plan(ctx context.Context, req Request, ids engine.StreamIDGenerator) (*Result, error) {
	if req.From.IsInfinite() || req.To.IsInfinite() {
		return nil, &engine.PlanningError{
			Code:    engine.ErrCodeInvalidTimings,
			Message: fmt.Sprintf("time range [%s, %s) must be finite", req.From, req.To),
		}
	}
	if req.Port == "" {
		req.Port = string(p.firstPort())
	}
	if _, err := p.model.Ports.Resolve(engine.ModelPort(req.Port)); err != nil {
		return nil, err
	}
	tm, err := p.TimingsFor(req.Urgency)
	if err != nil {
		return nil, err
	}

	queue := engine.NewJobQueue()
	opts := []engine.StreamOption{
		engine.WithStreamIDs(ids),
		engine.WithLogger(p.logger),
		engine.WithChunkLimit(req.ChunkLimit),
	}
	if p.observer != nil {
		opts = append(opts, engine.WithObserver(p.observer))
	}
	stream := engine.ForCalcStream(p.model.Dispatcher(), tm, opts...)

	var sink engine.DataSink = queue
	var journal *store.JournalSink
	if p.journal != nil {
		if err := p.journal.WriteStream(ctx, p.streamRecord(stream.ID(), req, tm)); err != nil {
			return nil, err
		}
		journal = store.NewJournalSink(ctx, p.journal, queue)
		sink = journal
	}

	puller := stream.TimeRange(req.From, req.To).PullFrom(engine.ModelPort(req.Port))
	var pipe *engine.PlanningPipeline
	if req.Expand {
		pipe = puller.ExpandPrerequisites().FeedTo(sink)
	} else {
		pipe = puller.FeedTo(sink)
	}

	res := &Result{
		StreamID: stream.ID(),
		Fixture:  p.model.Name,
		Port:     req.Port,
		Range:    timecode.Span(req.From, req.To),
		Timings:  tm,
	}
	breakPoint := nextBreakPoint(req.From, req.BreakPoint)
	for pipe.Valid() {
		if !pipe.IsBefore(breakPoint) {
			breakPoint = nextBreakPoint(breakPoint, req.BreakPoint)
			continue
		}
		if _, err := pipe.Dispatch(ctx, breakPoint); err != nil {
			if journal != nil && journal.Err() != nil {
				err = fmt.Errorf("%w: %w", err, journal.Err())
			}
			return nil, err
		}
		res.Chunks++
	}
	res.Jobs = queue.Drain()

	p.logger.Info("planned stream",
		"stream", res.StreamID,
		"port", req.Port,
		"range", res.Range.String(),
		"jobs", len(res.Jobs),
		"chunks", res.Chunks)
	return res, nil
}

func nextBreakPoint(curr, step timecode.Time) timecode.Time {
	if step <= 0 || curr.IsInfinite() {
		return timecode.Never
	}
	return curr.Add(step.Duration())
}

func (p *Planner) firstPort() engine.ModelPort {
	ports := p.model.Ports.Ports()
	if len(ports) == 0 {
		return ""
	}
	return ports[0]
}

func (p *Planner) streamRecord(id string, req Request, tm engine.Timings) store.StreamRecord {
	return store.StreamRecord{
		ID:            id,
		Fixture:       p.model.Name,
		FixtureHash:   p.model.Hash,
		Port:          req.Port,
		Start:         req.From,
		After:         req.To,
		Urgency:       tm.Urgency.String(),
		Expand:        req.Expand,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}
