package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/renderplan/internal/explore"
	"github.com/roach88/renderplan/internal/timecode"
)

// ModelPort names an output of the low-level render model.
type ModelPort string

// Dispatcher translates model ports and timeline positions into job
// tickets. It is the only access path from the planning pipeline into the
// render model.
type Dispatcher interface {
	// ResolveModelPort returns the attachment slot index of port.
	ResolveModelPort(port ModelPort) (int, error)
	// JobTicketFor returns the ticket of slot portIdx in the segment
	// containing nominal. Never nil; NOP for slots without processing.
	JobTicketFor(portIdx int, nominal timecode.Time) *JobTicket
}

// Snapshotter is implemented by dispatchers whose model can change while
// pipelines are running. ForCalcStream pins the snapshot current at
// construction, so later edits never affect a live pipeline.
type Snapshotter interface {
	Snapshot() Dispatcher
}

// CreateJobFor builds the job for slot portIdx at nominal.
func CreateJobFor(d Dispatcher, portIdx int, nominal timecode.Time) Job {
	return d.JobTicketFor(portIdx, nominal).CreateJobFor(nominal)
}

// StreamIDGenerator generates calculation stream identifiers.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type StreamIDGenerator interface {
	Generate() string
}

// Observer receives notifications about dispatched jobs, e.g. for metrics.
type Observer interface {
	JobDispatched(job ScheduledJob)
	ChunkDispatched(streamID string, jobs int)
}

type streamConfig struct {
	logger     *slog.Logger
	ids        StreamIDGenerator
	observer   Observer
	clock      *Clock
	chunkLimit int
}

// StreamOption configures a calculation stream.
type StreamOption func(*streamConfig)

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) StreamOption {
	return func(c *streamConfig) { c.logger = l }
}

// WithStreamIDs sets the stream id generator. Default: UUIDv7Generator.
func WithStreamIDs(g StreamIDGenerator) StreamOption {
	return func(c *streamConfig) { c.ids = g }
}

// WithObserver registers an observer for dispatched jobs.
func WithObserver(o Observer) StreamOption {
	return func(c *streamConfig) { c.observer = o }
}

// WithClock sets the logical clock stamping dispatched jobs. Sharing one
// clock among streams yields a global dispatch order.
func WithClock(clk *Clock) StreamOption {
	return func(c *streamConfig) { c.clock = clk }
}

// WithChunkLimit caps the number of jobs a single Dispatch call delivers.
// Default: 0 (unlimited)
func WithChunkLimit(n int) StreamOption {
	return func(c *streamConfig) { c.chunkLimit = n }
}

// CalcStream is the entry stage of a planning pipeline: a dispatcher bound
// to the timings of one calculation stream.
type CalcStream struct {
	id         string
	dispatcher Dispatcher
	timings    Timings
	cfg        streamConfig
}

// ForCalcStream starts building a planning pipeline. When d implements
// Snapshotter, the pipeline works on the snapshot taken here.
//
// Example:
//
//	pipe := engine.ForCalcStream(d, timings).
//		TimeRange(start, after).
//		PullFrom("main").
//		ExpandPrerequisites().
//		FeedTo(sink)
func ForCalcStream(d Dispatcher, tm Timings, opts ...StreamOption) *CalcStream {
	if d == nil {
		logicError("calculation stream needs a dispatcher")
	}
	if err := tm.Validate(); err != nil {
		panic(err)
	}
	cfg := streamConfig{
		logger: slog.New(slog.DiscardHandler),
		ids:    UUIDv7Generator{},
		clock:  NewClock(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if s, ok := d.(Snapshotter); ok {
		d = s.Snapshot()
	}
	id := cfg.ids.Generate()
	cfg.logger = cfg.logger.With("component", "dispatcher", "stream", id)
	return &CalcStream{id: id, dispatcher: d, timings: tm, cfg: cfg}
}

// ID returns the stream identifier.
func (c *CalcStream) ID() string { return c.id }

// Timings returns the stream timings.
func (c *CalcStream) Timings() Timings { return c.timings }

// Dispatcher returns the dispatcher the stream plans from.
func (c *CalcStream) Dispatcher() Dispatcher { return c.dispatcher }

// TimeRange adds the base tick: one step per frame whose start lies in
// [start, after). An empty or inverted range yields no frames.
func (c *CalcStream) TimeRange(start, after timecode.Time) *FrameTicker {
	if start.IsInfinite() {
		logicError("time range needs a finite start, got %s", start)
	}
	frameNr := c.timings.BreakPointAfter(start)
	return &FrameTicker{
		stream:  c,
		frameNr: frameNr,
		curr:    c.timings.FrameStartAt(frameNr),
		stop:    after,
	}
}

// FrameTicker is the base tick stage, yielding the nominal start time of
// each frame in the range.
type FrameTicker struct {
	stream  *CalcStream
	frameNr int64
	curr    timecode.Time
	stop    timecode.Time
}

func (f *FrameTicker) Valid() bool { return f.curr < f.stop }

func (f *FrameTicker) Current() timecode.Time {
	if !f.Valid() {
		panic(explore.ErrExhausted)
	}
	return f.curr
}

func (f *FrameTicker) Advance() {
	if !f.Valid() {
		return
	}
	f.frameNr++
	f.curr = f.stream.timings.FrameStartAt(f.frameNr)
}

// FrameNr returns the number of the current frame.
func (f *FrameTicker) FrameNr() int64 { return f.frameNr }

// PullFrom binds the tick to model port: each frame becomes the top-level
// planning of the port's job ticket in the segment covering the frame.
// Panics with an ErrCodeUnknownPort *PlanningError if the port does not
// resolve.
func (f *FrameTicker) PullFrom(port ModelPort) *PortPuller {
	idx, err := f.stream.dispatcher.ResolveModelPort(port)
	if err != nil {
		panic(err)
	}
	d := f.stream.dispatcher
	return &PortPuller{
		ticker:  f,
		portIdx: idx,
		Transformer: explore.Transform(explore.Source[timecode.Time](f), func(t timecode.Time) *JobPlanning {
			return NewJobPlanning(d.JobTicketFor(idx, t), t, f.frameNr)
		}),
	}
}

// PortPuller yields one top-level planning per frame.
type PortPuller struct {
	*explore.Transformer[timecode.Time, *JobPlanning]
	ticker  *FrameTicker
	portIdx int
}

// PortIndex returns the resolved attachment slot.
func (p *PortPuller) PortIndex() int { return p.portIdx }

// ExpandPrerequisites walks the prerequisite tree of every top-level
// planning depth-first, each planning followed by its prerequisites.
func (p *PortPuller) ExpandPrerequisites() *PrerequisiteExpander {
	return &PrerequisiteExpander{
		Expander: explore.ExpandAll(explore.Source[*JobPlanning](p), (*JobPlanning).BuildDependencyPlanning),
		ticker:   p.ticker,
	}
}

// FeedTo completes a pipeline planning top-level jobs only.
func (p *PortPuller) FeedTo(sink DataSink) *PlanningPipeline {
	return newPipeline(p.ticker, p, sink)
}

// PrerequisiteExpander yields every planning of the expanded trees.
type PrerequisiteExpander struct {
	*explore.Expander[*JobPlanning]
	ticker *FrameTicker
}

// FeedTo completes the pipeline.
func (e *PrerequisiteExpander) FeedTo(sink DataSink) *PlanningPipeline {
	return newPipeline(e.ticker, e, sink)
}

// PlanningPipeline is the front-end of a planning pipeline. It iterates
// the plannings in order and dispatches them chunk-wise to its sink.
//
// A pipeline is driven by one goroutine at a time; separate pipelines may
// run concurrently over the same dispatcher.
type PlanningPipeline struct {
	src    explore.Source[*JobPlanning]
	ticker *FrameTicker
	stream *CalcStream
	sink   DataSink
}

func newPipeline(ticker *FrameTicker, src explore.Source[*JobPlanning], sink DataSink) *PlanningPipeline {
	return &PlanningPipeline{src: src, ticker: ticker, stream: ticker.stream, sink: sink}
}

func (p *PlanningPipeline) Valid() bool { return p.src.Valid() }
func (p *PlanningPipeline) Current() *JobPlanning { return p.src.Current() }
func (p *PlanningPipeline) Advance() { p.src.Advance() }
func (p *PlanningPipeline) StreamID() string { return p.stream.id }
func (p *PlanningPipeline) Sink() DataSink { return p.sink }
func (p *PlanningPipeline) Timings() Timings { return p.stream.timings }
func (p *PlanningPipeline) CurrFrameNr() int64 { return p.ticker.frameNr }
func (p *PlanningPipeline) BuildJob() Job { return p.Current().BuildJob() }

func (p *PlanningPipeline) DetermineDeadline() timecode.Time {
	return p.Current().DetermineDeadline(p.stream.timings)
}

// IsBefore reports whether the current frame starts before breakPoint.
func (p *PlanningPipeline) IsBefore(breakPoint timecode.Time) bool {
	return p.ticker.frameNr < p.stream.timings.BreakPointAfter(breakPoint)
}

// Dispatch delivers the jobs of all frames starting before breakPoint to
// the sink, each stamped with the next clock value and its deadline. It
// stops early when the chunk limit is reached or ctx is done, and fails
// with an ErrCodeSinkClosed error when the sink refuses a job. Calling it
// again resumes where the previous call stopped.
func (p *PlanningPipeline) Dispatch(ctx context.Context, breakPoint timecode.Time) (int, error) {
	if p.sink == nil {
		logicError("pipeline has no data sink")
	}
	cfg := &p.stream.cfg
	quota := NewChunkQuota(cfg.chunkLimit)
	n := 0
	var err error
	for p.Valid() && p.IsBefore(breakPoint) && quota.Allow() {
		if err = ctx.Err(); err != nil {
			break
		}
		planning := p.Current()
		job := ScheduledJob{
			Seq:      cfg.clock.Next(),
			StreamID: p.stream.id,
			FrameNr:  planning.FrameNr(),
			Depth:    planning.Depth(),
			Job:      planning.BuildJob(),
			Deadline: planning.DetermineDeadline(p.stream.timings),
		}
		if !p.sink.Deliver(job) {
			err = &PlanningError{
				Code:     ErrCodeSinkClosed,
				Message:  "data sink refused job",
				StreamID: p.stream.id,
			}
			break
		}
		if cfg.observer != nil {
			cfg.observer.JobDispatched(job)
		}
		n++
		p.Advance()
	}
	// a chunk cut short still counts the jobs it delivered
	if cfg.observer != nil {
		cfg.observer.ChunkDispatched(p.stream.id, n)
	}
	if err != nil {
		cfg.logger.Debug("chunk interrupted", "jobs", n, "error", err)
		return n, err
	}
	cfg.logger.Debug("dispatched chunk",
		"jobs", n,
		"break_point", breakPoint.String(),
		"next_frame", p.CurrFrameNr(),
		"exhausted", !p.Valid())
	return n, nil
}

// DispatchAll dispatches every remaining job.
func (p *PlanningPipeline) DispatchAll(ctx context.Context) (int, error) {
	total := 0
	for p.Valid() {
		n, err := p.Dispatch(ctx, timecode.Never)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
