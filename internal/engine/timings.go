package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/renderplan/internal/timecode"
)

// Urgency tells how a calculation stream relates to wall-clock time.
type Urgency int

const (
	// ASAP computes as fast as possible, without deadlines.
	ASAP Urgency = iota
	// NICE computes in the background, without deadlines.
	NICE
	// TIMEBOUND delivers frames by a scheduled point in time.
	TIMEBOUND
)

func (u Urgency) String() string {
	switch u {
	case ASAP:
		return "asap"
	case NICE:
		return "nice"
	case TIMEBOUND:
		return "timebound"
	}
	return fmt.Sprintf("Urgency(%d)", int(u))
}

// ParseUrgency reads "asap", "nice" or "timebound".
func ParseUrgency(s string) (Urgency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asap", "":
		return ASAP, nil
	case "nice":
		return NICE, nil
	case "timebound":
		return TIMEBOUND, nil
	}
	return ASAP, &PlanningError{Code: ErrCodeInvalidTimings, Message: fmt.Sprintf("unknown urgency %q", s)}
}

// DefaultEngineLatency is the scheduling overhead assumed per job.
const DefaultEngineLatency = 10 * time.Millisecond

// Timings holds the timing parameters of one calculation stream: the frame
// grid, the playback urgency and the latencies to plan deadlines with.
// Timings is a value; copies are independent.
type Timings struct {
	Grid              *timecode.Grid
	Urgency           Urgency
	ScheduledDelivery timecode.Time
	OutputLatency     time.Duration
	EngineLatency     time.Duration

	gridErr error // set by an option that could not build the grid
}

// TimingsOption configures Timings under construction.
type TimingsOption func(*Timings)

// WithDelivery makes the stream time-bound: frame 0 is due at t.
func WithDelivery(t timecode.Time) TimingsOption {
	return func(tm *Timings) {
		tm.Urgency = TIMEBOUND
		tm.ScheduledDelivery = t
	}
}

// WithUrgency overrides the playback urgency.
func WithUrgency(u Urgency) TimingsOption {
	return func(tm *Timings) { tm.Urgency = u }
}

// WithEngineLatency sets the per-job scheduling overhead.
// Default: 10ms (DefaultEngineLatency)
func WithEngineLatency(d time.Duration) TimingsOption {
	return func(tm *Timings) { tm.EngineLatency = d }
}

// WithOutputLatency sets the delay between frame completion and delivery.
func WithOutputLatency(d time.Duration) TimingsOption {
	return func(tm *Timings) { tm.OutputLatency = d }
}

// WithGridOrigin anchors frame 0 at origin instead of the timeline origin.
func WithGridOrigin(origin timecode.Time) TimingsOption {
	return func(tm *Timings) {
		g, err := timecode.NewGrid(tm.Grid.Rate(), origin)
		if err != nil {
			tm.gridErr = err
			return
		}
		tm.Grid = g
	}
}

// NewTimings creates ASAP timings for the given frame rate.
func NewTimings(rate timecode.FrameRate, opts ...TimingsOption) (Timings, error) {
	grid, err := timecode.NewGrid(rate, timecode.Zero)
	if err != nil {
		return Timings{}, &PlanningError{Code: ErrCodeInvalidTimings, Message: err.Error()}
	}
	tm := Timings{
		Grid:              grid,
		Urgency:           ASAP,
		ScheduledDelivery: timecode.Never,
		EngineLatency:     DefaultEngineLatency,
	}
	for _, opt := range opts {
		opt(&tm)
	}
	if err := tm.Validate(); err != nil {
		return Timings{}, err
	}
	return tm, nil
}

// MustTimings is like NewTimings but panics on error. For tests.
func MustTimings(rate timecode.FrameRate, opts ...TimingsOption) Timings {
	tm, err := NewTimings(rate, opts...)
	if err != nil {
		panic(err)
	}
	return tm
}

// Validate checks the timings are usable for planning.
func (tm Timings) Validate() error {
	invalid := func(format string, args ...any) error {
		return &PlanningError{Code: ErrCodeInvalidTimings, Message: fmt.Sprintf(format, args...)}
	}
	switch {
	case tm.Grid == nil:
		return invalid("no frame grid")
	case tm.gridErr != nil:
		return invalid("%v", tm.gridErr)
	case tm.EngineLatency < 0 || tm.OutputLatency < 0:
		return invalid("latencies must not be negative")
	case tm.Urgency == TIMEBOUND && tm.ScheduledDelivery.IsInfinite():
		return invalid("time-bound stream needs a finite delivery time")
	}
	return nil
}

// FrameStartAt returns the nominal start time of frame n.
func (tm Timings) FrameStartAt(n int64) timecode.Time {
	return tm.Grid.TimeOf(n)
}

// BreakPointAfter returns the first frame starting at or after t.
func (tm Timings) BreakPointAfter(t timecode.Time) int64 {
	return tm.Grid.BreakPointAfter(t)
}

// TimeDue returns the wall-clock time frame n must be delivered at:
// the scheduled delivery shifted by the frame's distance from frame 0.
// Streams without delivery schedule are never due.
func (tm Timings) TimeDue(n int64) timecode.Time {
	if tm.Urgency != TIMEBOUND {
		return timecode.Never
	}
	return tm.ScheduledDelivery.Add(tm.FrameStartAt(n).Sub(tm.FrameStartAt(0)))
}
