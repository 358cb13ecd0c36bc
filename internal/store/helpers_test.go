package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/renderplan/internal/engine"
	"github.com/roach88/renderplan/internal/fixture"
	"github.com/roach88/renderplan/internal/timecode"
)

// createTestStore creates a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testStream(id string) StreamRecord {
	return StreamRecord{
		ID:            id,
		Fixture:       "playout",
		FixtureHash:   "abc",
		Port:          "main",
		Start:         timecode.MustParse("200ms"),
		After:         timecode.MustParse("300ms"),
		Urgency:       "timebound",
		Expand:        true,
		EngineVersion: "0.1.0",
		IRVersion:     "1",
	}
}

func testJob(stream string, seq int64) JobRecord {
	return JobRecord{
		StreamID: stream,
		Seq:      seq,
		FrameNr:  5,
		Kind:     "calc",
		Seed:     11,
		Nominal:  timecode.MustParse("200ms"),
		Deadline: timecode.MustParse("1s180ms"),
		Hash:     42,
	}
}

var ms = time.Millisecond

// planningDispatcher is a two-segment render model.
func planningDispatcher() *fixture.Dispatcher {
	f := engine.NewRecordingFunctor()
	n := func(mark uint64, rt time.Duration, pre ...*engine.ExitNode) *engine.ExitNode {
		return engine.NewExitNode(mark, f, engine.WithRuntime(rt), engine.WithPrerequisites(pre...))
	}
	segs := fixture.NewSegmentation()
	segs.SplitSplice(fixture.EndingAt(timecode.MustParse("250ms")),
		fixture.NewAttachment(n(11, 10*ms, n(22, 20*ms, n(33, 30*ms)))))
	segs.SplitSplice(fixture.StartingAt(timecode.MustParse("250ms")),
		fixture.NewAttachment(n(44, 70*ms, n(55, 60*ms), n(66, 50*ms))))
	return fixture.NewDispatcher(segs, fixture.MustPortRegistry("main"))
}

// plan runs the standard range through sink and returns the stream id.
func plan(t *testing.T, sink engine.DataSink, id string) string {
	t.Helper()
	tm := engine.MustTimings(timecode.PAL, engine.WithDelivery(timecode.MustParse("1s")))
	pipe := engine.ForCalcStream(planningDispatcher(), tm, engine.WithStreamIDs(engine.NewFixedGenerator(id))).
		TimeRange(timecode.MustParse("200ms"), timecode.MustParse("300ms")).
		PullFrom("main").
		ExpandPrerequisites().
		FeedTo(sink)
	_, err := pipe.DispatchAll(context.Background())
	require.NoError(t, err)
	return pipe.StreamID()
}
