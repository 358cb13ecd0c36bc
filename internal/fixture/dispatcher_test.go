package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/renderplan/internal/engine"
	"github.com/roach88/renderplan/internal/timecode"
)

func integrationModel() *Dispatcher {
	segs := NewSegmentation()
	segs.SplitSplice(EndingAt(at("250ms")),
		NewAttachment(node(11, 10*ms, node(22, 20*ms, node(33, 30*ms)))))
	segs.SplitSplice(StartingAt(at("250ms")),
		NewAttachment(node(44, 70*ms, node(55, 60*ms), node(66, 50*ms))))
	return NewDispatcher(segs, MustPortRegistry("main"))
}

func TestDispatcher_ResolveModelPort(t *testing.T) {
	d := NewDispatcher(NewSegmentation(), MustPortRegistry("main", "aux"))
	idx, err := d.ResolveModelPort("aux")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = d.ResolveModelPort("nope")
	assert.True(t, engine.IsUnknownPortError(err))
}

func TestDispatcher_PlansAcrossSegments(t *testing.T) {
	d := integrationModel()
	assert.Equal(t, "├[-∞_250ms[[250ms_+∞[┤", d.Segmentation().Render())

	tm := engine.MustTimings(timecode.PAL, engine.WithDelivery(at("1s")), engine.WithEngineLatency(10*ms))
	pipe := engine.ForCalcStream(d, tm, engine.WithStreamIDs(engine.NewFixedGenerator("s"))).
		TimeRange(at("200ms"), at("300ms")).
		PullFrom("main").
		ExpandPrerequisites().
		FeedTo(engine.NewJobQueue())

	assert.Equal(t,
		"J(11|200ms⧐1s180ms)-J(22|200ms⧐1s150ms)-J(33|200ms⧐1s110ms)-"+
			"J(11|240ms⧐1s220ms)-J(22|240ms⧐1s190ms)-J(33|240ms⧐1s150ms)-"+
			"J(44|280ms⧐1s200ms)-J(66|280ms⧐1s140ms)-J(55|280ms⧐1s130ms)",
		traceDeadlines(pipe, tm))
}

func TestDispatcher_SnapshotPinsPlan(t *testing.T) {
	d := integrationModel()
	stream := engine.ForCalcStream(d, engine.MustTimings(timecode.PAL))

	// reshaping the model after the stream was created must not leak in
	d.Segmentation().SplitSplice(Everything(), NewAttachment(node(99, 0)))

	p := stream.TimeRange(at("0s"), at("40ms")).PullFrom("main")
	require.True(t, p.Valid())
	assert.Equal(t, uint64(11), p.Current().Ticket().Node().Identity())

	assert.Equal(t, uint64(99), d.JobTicketFor(0, at("0s")).Node().Identity())
}

func TestDispatcher_EmptySlotYieldsNOP(t *testing.T) {
	segs := NewSegmentation()
	segs.SplitSplice(Everything(), NewAttachment(node(1, 0)))
	d := NewDispatcher(segs, MustPortRegistry("main", "aux"))

	assert.Same(t, engine.NOP, d.JobTicketFor(1, at("1s")))
	job := engine.CreateJobFor(d, 1, at("1s"))
	assert.True(t, job.IsNOP())
}

func TestPortRegistry(t *testing.T) {
	r, err := NewPortRegistry("main", "aux")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []engine.ModelPort{"main", "aux"}, r.Ports())

	_, err = NewPortRegistry("main", "main")
	assert.ErrorContains(t, err, "duplicate")
	_, err = NewPortRegistry("")
	assert.Error(t, err)
	assert.Panics(t, func() { MustPortRegistry("a", "a") })
}
