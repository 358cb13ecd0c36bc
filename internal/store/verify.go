package store

import (
	"context"
	"fmt"
)

// Mismatch is a position where journal and replay disagree. Journal or
// Replay is nil when one side ran out of jobs.
type Mismatch struct {
	Index   int
	Journal *JobRecord
	Replay  *JobRecord
}

func (m Mismatch) String() string {
	show := func(r *JobRecord) string {
		if r == nil {
			return "<none>"
		}
		return r.String()
	}
	return fmt.Sprintf("job %d: journal %s, replay %s", m.Index, show(m.Journal), show(m.Replay))
}

// Verification is the result of comparing a journaled stream with a
// fresh plan of the same fixture and range.
type Verification struct {
	StreamID   string
	Journaled  int
	Replayed   int
	Mismatches []Mismatch
}

// OK reports whether the replay reproduced the journal exactly.
func (v Verification) OK() bool {
	return len(v.Mismatches) == 0
}

// Verify compares the journal of streamID with replayed jobs, position by
// position. Stream ids are ignored; everything else must match.
func (s *Store) Verify(ctx context.Context, streamID string, replayed []JobRecord) (Verification, error) {
	journal, err := s.ReadJobs(ctx, streamID)
	if err != nil {
		return Verification{}, fmt.Errorf("verify %s: %w", streamID, err)
	}
	return Compare(streamID, journal, replayed), nil
}

// Compare lists the positions where journal and replay differ.
func Compare(streamID string, journal, replayed []JobRecord) Verification {
	v := Verification{StreamID: streamID, Journaled: len(journal), Replayed: len(replayed)}
	for i := 0; i < max(len(journal), len(replayed)); i++ {
		var a, b *JobRecord
		if i < len(journal) {
			a = &journal[i]
		}
		if i < len(replayed) {
			b = &replayed[i]
		}
		if a != nil && b != nil && a.SameJob(*b) {
			continue
		}
		v.Mismatches = append(v.Mismatches, Mismatch{Index: i, Journal: a, Replay: b})
	}
	return v
}
