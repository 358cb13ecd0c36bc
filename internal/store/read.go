package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/renderplan/internal/timecode"
)

// ErrStreamNotFound is returned by ReadStream for an unknown stream id.
var ErrStreamNotFound = errors.New("stream not found")

// ReadStream returns the record of one stream.
func (s *Store) ReadStream(ctx context.Context, id string) (StreamRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, fixture, fixture_hash, port, range_start, range_after, urgency, expand, engine_version, ir_version
		FROM streams
		WHERE id = ?
	`, id)
	st, err := scanStream(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StreamRecord{}, fmt.Errorf("read stream %s: %w", id, ErrStreamNotFound)
	}
	return st, err
}

// Streams lists all recorded streams ordered by id.
// Returns an empty slice (not nil) for an empty journal.
func (s *Store) Streams(ctx context.Context) ([]StreamRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fixture, fixture_hash, port, range_start, range_after, urgency, expand, engine_version, ir_version
		FROM streams
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query streams: %w", err)
	}
	defer rows.Close()

	streams := []StreamRecord{}
	for rows.Next() {
		st, err := scanStream(rows)
		if err != nil {
			return nil, err
		}
		streams = append(streams, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streams: %w", err)
	}
	return streams, nil
}

// ReadJobs returns the journal of a stream in dispatch order (seq ASC).
// Returns an empty slice (not nil) if the stream has no jobs.
func (s *Store) ReadJobs(ctx context.Context, streamID string) ([]JobRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stream_id, seq, frame_nr, depth, kind, seed, extra, nominal, deadline, job_hash
		FROM planned_jobs
		WHERE stream_id = ?
		ORDER BY seq ASC
	`, streamID)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []JobRecord{}
	for rows.Next() {
		var (
			j                 JobRecord
			seed, extra, hash int64
			nominal, deadline int64
		)
		if err := rows.Scan(&j.StreamID, &j.Seq, &j.FrameNr, &j.Depth, &j.Kind,
			&seed, &extra, &nominal, &deadline, &hash); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		j.Seed, j.Extra, j.Hash = fromSQL(seed), fromSQL(extra), fromSQL(hash)
		j.Nominal, j.Deadline = timecode.Time(nominal), timecode.Time(deadline)
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// CountJobs returns the number of journaled jobs of a stream.
func (s *Store) CountJobs(ctx context.Context, streamID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM planned_jobs WHERE stream_id = ?`, streamID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStream(row scanner) (StreamRecord, error) {
	var (
		st           StreamRecord
		start, after int64
	)
	err := row.Scan(&st.ID, &st.Fixture, &st.FixtureHash, &st.Port, &start, &after,
		&st.Urgency, &st.Expand, &st.EngineVersion, &st.IRVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return st, err
		}
		return st, fmt.Errorf("scan stream: %w", err)
	}
	st.Start, st.After = timecode.Time(start), timecode.Time(after)
	return st, nil
}
