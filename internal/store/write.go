package store

import (
	"context"
	"fmt"
)

// WriteStream records a stream. Uses ON CONFLICT(id) DO NOTHING for
// idempotency - rewriting the same stream is silently ignored.
func (s *Store) WriteStream(ctx context.Context, st StreamRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO streams
		(id, fixture, fixture_hash, port, range_start, range_after, urgency, expand, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		st.ID,
		st.Fixture,
		st.FixtureHash,
		st.Port,
		int64(st.Start),
		int64(st.After),
		st.Urgency,
		st.Expand,
		st.EngineVersion,
		st.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write stream: %w", err)
	}
	return nil
}

// WriteJob appends a job to its stream's journal.
// The stream must have been written first (foreign key constraint).
func (s *Store) WriteJob(ctx context.Context, j JobRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO planned_jobs
		(stream_id, seq, frame_nr, depth, kind, seed, extra, nominal, deadline, job_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(stream_id, seq) DO NOTHING
	`,
		j.StreamID,
		j.Seq,
		j.FrameNr,
		j.Depth,
		j.Kind,
		toSQL(j.Seed),
		toSQL(j.Extra),
		int64(j.Nominal),
		int64(j.Deadline),
		toSQL(j.Hash),
	)
	if err != nil {
		return fmt.Errorf("write job: %w", err)
	}
	return nil
}
