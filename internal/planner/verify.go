package planner

import (
	"context"
	"fmt"

	"github.com/roach88/renderplan/internal/engine"
	"github.com/roach88/renderplan/internal/store"
)

// FixtureChangedError reports a journaled stream planned from another
// version of the fixture.
type FixtureChangedError struct {
	StreamID string
	Recorded string
	Current  string
}

func (e *FixtureChangedError) Error() string {
	return fmt.Sprintf("stream %s was planned from fixture %s, current fixture is %s",
		e.StreamID, short(e.Recorded), short(e.Current))
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// Replay plans a journaled stream again, under its original stream id,
// without touching the journal.
func (p *Planner) Replay(ctx context.Context, st store.StreamRecord) (*Result, error) {
	if st.FixtureHash != p.model.Hash {
		return nil, &FixtureChangedError{StreamID: st.ID, Recorded: st.FixtureHash, Current: p.model.Hash}
	}
	replayer := *p
	replayer.journal = nil
	replayer.observer = nil
	return replayer.plan(ctx, Request{
		Port:    st.Port,
		From:    st.Start,
		To:      st.After,
		Expand:  st.Expand,
		Urgency: st.Urgency,
	}, engine.NewFixedGenerator(st.ID))
}

// Verify replays the journaled stream streamID and compares the result
// against the journal job by job.
func (p *Planner) Verify(ctx context.Context, journal *store.Store, streamID string) (store.Verification, error) {
	st, err := journal.ReadStream(ctx, streamID)
	if err != nil {
		return store.Verification{}, err
	}
	res, err := p.Replay(ctx, st)
	if err != nil {
		return store.Verification{}, err
	}
	return journal.Verify(ctx, streamID, Records(res.Jobs))
}

// Records converts scheduled jobs to their journal form.
func Records(jobs []engine.ScheduledJob) []store.JobRecord {
	out := make([]store.JobRecord, len(jobs))
	for i, j := range jobs {
		out[i] = store.RecordOf(j)
	}
	return out
}
