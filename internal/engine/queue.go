package engine

import (
	"fmt"
	"sync"

	"github.com/roach88/renderplan/internal/timecode"
)

// ScheduledJob is a job ready for the scheduler: the job itself, its
// deadline and the planning context it was generated in.
type ScheduledJob struct {
	Seq      int64
	StreamID string
	FrameNr  int64
	Depth    int
	Job      Job
	Deadline timecode.Time
}

// IsTopLevel reports whether the job computes a frame rather than a
// prerequisite of one.
func (s ScheduledJob) IsTopLevel() bool { return s.Depth == 0 }

func (s ScheduledJob) String() string {
	return fmt.Sprintf("#%d J(%d|%s⧐%s)", s.Seq, s.Job.Key().Seed, s.Job.NominalTime(), s.Deadline)
}

// DataSink receives dispatched jobs. Deliver returns false once the sink
// no longer accepts jobs.
type DataSink interface {
	Deliver(ScheduledJob) bool
}

// SinkFunc adapts a function to DataSink.
type SinkFunc func(ScheduledJob) bool

// Deliver calls f.
func (f SinkFunc) Deliver(j ScheduledJob) bool { return f(j) }

// JobQueue is a thread-safe FIFO handing dispatched jobs over to the
// worker side.
//
// The queue is unbounded, so dispatching a chunk never blocks on slow
// workers; the chunk size bounds the backlog instead.
//
// Waiting is channel based to allow context-aware consumers:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-q.Wait():
//	    // try TryDequeue
//	}
type JobQueue struct {
	mu     sync.Mutex
	jobs   []ScheduledJob
	closed bool
	signal chan struct{} // buffered, size 1
}

// NewJobQueue creates an empty queue.
func NewJobQueue() *JobQueue {
	return &JobQueue{
		jobs:   make([]ScheduledJob, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Deliver appends a job. Returns false if the queue is closed.
// Safe from any goroutine.
func (q *JobQueue) Deliver(j ScheduledJob) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.jobs = append(q.jobs, j)

	// coalesce signals
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front job without blocking.
func (q *JobQueue) TryDequeue() (ScheduledJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return ScheduledJob{}, false
	}
	j := q.jobs[0]
	// release the functor reference held by the backing array
	q.jobs[0] = ScheduledJob{}
	if len(q.jobs) == 1 {
		q.jobs = q.jobs[:0]
	} else {
		q.jobs = q.jobs[1:]
	}
	return j, true
}

// Drain removes and returns all queued jobs.
func (q *JobQueue) Drain() []ScheduledJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]ScheduledJob, len(q.jobs))
	copy(out, q.jobs)
	clear(q.jobs)
	q.jobs = q.jobs[:0]
	return out
}

// Wait returns a channel signalling that jobs may be available.
// The channel is closed when the queue is closed.
func (q *JobQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued jobs.
func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Close stops accepting jobs and wakes all waiters. Queued jobs remain
// available for dequeuing.
func (q *JobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// Closed reports whether Close was called.
func (q *JobQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
