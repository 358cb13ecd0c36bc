package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/renderplan/internal/timecode"
)

func TestOpen_CreatesSchema(t *testing.T) {
	s := createTestStore(t)
	for _, table := range []string{"streams", "planned_jobs"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %q", table)
	}

	var version int
	require.NoError(t, s.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	assert.NoError(t, s.verifyPragma(ctx, "journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma(ctx, "foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma(ctx, "busy_timeout", "5000"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.WriteStream(context.Background(), testStream("s")))
	got, err := s.Streams(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStream_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	st := testStream("s-1")
	st.Start, st.After = timecode.Min, timecode.Max
	require.NoError(t, s.WriteStream(ctx, st))
	require.NoError(t, s.WriteStream(ctx, st), "idempotent")

	got, err := s.ReadStream(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, st, got)

	_, err = s.ReadStream(ctx, "nope")
	assert.ErrorIs(t, err, ErrStreamNotFound)
}

func TestStreams_Ordered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.Streams(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, s.WriteStream(ctx, testStream(id)))
	}
	got, err := s.Streams(ctx)
	require.NoError(t, err)
	var ids []string
	for _, st := range got {
		ids = append(ids, st.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestJobs_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteStream(ctx, testStream("s")))

	j := testJob("s", 2)
	j.Seed = 1<<63 + 7 // high bit set
	j.Hash = ^uint64(0)
	j.Deadline = timecode.Anytime
	require.NoError(t, s.WriteJob(ctx, testJob("s", 3)))
	require.NoError(t, s.WriteJob(ctx, j))
	require.NoError(t, s.WriteJob(ctx, j), "idempotent")

	jobs, err := s.ReadJobs(ctx, "s")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, j, jobs[0], "ordered by seq")
	assert.Equal(t, int64(3), jobs[1].Seq)

	n, err := s.CountJobs(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestJobs_RequireStream(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteJob(context.Background(), testJob("ghost", 1))
	assert.ErrorContains(t, err, "write job")
}

func TestJobs_EmptyStream(t *testing.T) {
	s := createTestStore(t)
	jobs, err := s.ReadJobs(context.Background(), "none")
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestJobRecord_SameJob(t *testing.T) {
	a, b := testJob("x", 1), testJob("y", 1)
	assert.True(t, a.SameJob(b))
	b.Deadline++
	assert.False(t, a.SameJob(b))
	assert.Equal(t, "#1 F5 d0 calc 11:0@200ms⧐1s180ms", a.String())
}
