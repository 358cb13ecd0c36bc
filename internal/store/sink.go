package store

import (
	"context"

	"github.com/roach88/renderplan/internal/engine"
)

var _ engine.DataSink = (*JournalSink)(nil)

// JournalSink is a DataSink that journals every job before handing it on.
//
// engine.DataSink carries no context, so the sink holds the context of
// the planning run it belongs to. After a write error the sink refuses
// all further jobs and Err reports the cause.
type JournalSink struct {
	ctx     context.Context
	store   *Store
	next    engine.DataSink
	written int
	err     error
}

// NewJournalSink journals into store and forwards to next (which may be nil).
func NewJournalSink(ctx context.Context, store *Store, next engine.DataSink) *JournalSink {
	return &JournalSink{ctx: ctx, store: store, next: next}
}

// Deliver implements engine.DataSink.
func (s *JournalSink) Deliver(job engine.ScheduledJob) bool {
	if s.err != nil {
		return false
	}
	if err := s.store.WriteJob(s.ctx, RecordOf(job)); err != nil {
		s.err = err
		return false
	}
	s.written++
	if s.next == nil {
		return true
	}
	return s.next.Deliver(job)
}

// Written returns the number of journaled jobs.
func (s *JournalSink) Written() int { return s.written }

// Err returns the write error that closed the sink, if any.
func (s *JournalSink) Err() error { return s.err }
