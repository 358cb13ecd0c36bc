package engine

import (
	"sync"
	"time"
)

// Invocation records one call of a RecordingFunctor.
type Invocation struct {
	Parameter JobParameter
	At        time.Time
}

// RecordingFunctor is a calc functor that performs no work but logs every
// invocation, so callers can verify which jobs were triggered with which
// parameters. Used by dry runs and tests.
//
// Its instance keys are predictable: the seed is stored verbatim in the
// key, the nominal time is added on job creation.
//
// Thread-safety: safe for concurrent use.
type RecordingFunctor struct {
	mu    sync.Mutex
	now   func() time.Time
	kind  JobKind
	calls []Invocation
}

// FunctorOption configures a RecordingFunctor.
type FunctorOption func(*RecordingFunctor)

// WithNow sets the time source for invocation timestamps.
func WithNow(now func() time.Time) FunctorOption {
	return func(f *RecordingFunctor) { f.now = now }
}

// WithKind sets the job kind reported by the functor. Default: CalcJob.
func WithKind(k JobKind) FunctorOption {
	return func(f *RecordingFunctor) { f.kind = k }
}

// NewRecordingFunctor creates an empty recording functor.
func NewRecordingFunctor(opts ...FunctorOption) *RecordingFunctor {
	f := &RecordingFunctor{now: time.Now, kind: CalcJob}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *RecordingFunctor) Invoke(p JobParameter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Invocation{Parameter: p, At: f.now()})
	return nil
}

func (f *RecordingFunctor) Kind() JobKind { return f.kind }

func (f *RecordingFunctor) BuildInstanceKey(seed uint64) InvocationKey {
	return InvocationKey{Seed: seed}
}

func (f *RecordingFunctor) HashOfInstance(k InvocationKey) uint64 {
	return k.Hash()
}

// Invocations returns a copy of the log in invocation order.
func (f *RecordingFunctor) Invocations() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.calls...)
}

// WasInvoked reports whether a job with the given parameters was triggered.
func (f *RecordingFunctor) WasInvoked(p JobParameter) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Parameter == p {
			return true
		}
	}
	return false
}

// Reset clears the invocation log.
func (f *RecordingFunctor) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
