package store

import (
	"fmt"

	"github.com/roach88/renderplan/internal/engine"
	"github.com/roach88/renderplan/internal/timecode"
)

// StreamRecord describes a planned calculation stream.
type StreamRecord struct {
	ID            string
	Fixture       string
	FixtureHash   string
	Port          string
	Start         timecode.Time
	After         timecode.Time
	Urgency       string
	Expand        bool
	EngineVersion string
	IRVersion     string
}

// JobRecord is one dispatched job as stored in the journal.
type JobRecord struct {
	StreamID string
	Seq      int64
	FrameNr  int64
	Depth    int
	Kind     string
	Seed     uint64
	Extra    uint64
	Nominal  timecode.Time
	Deadline timecode.Time
	Hash     uint64
}

// RecordOf converts a scheduled job into its journal form.
func RecordOf(j engine.ScheduledJob) JobRecord {
	key := j.Job.Key()
	return JobRecord{
		StreamID: j.StreamID,
		Seq:      j.Seq,
		FrameNr:  j.FrameNr,
		Depth:    j.Depth,
		Kind:     j.Job.Kind().String(),
		Seed:     key.Seed,
		Extra:    key.Extra,
		Nominal:  j.Job.NominalTime(),
		Deadline: j.Deadline,
		Hash:     j.Job.Hash(),
	}
}

// SameJob reports whether r and o describe the same planning decision,
// ignoring the stream they belong to.
func (r JobRecord) SameJob(o JobRecord) bool {
	r.StreamID, o.StreamID = "", ""
	return r == o
}

func (r JobRecord) String() string {
	return fmt.Sprintf("#%d F%d d%d %s %d:%d@%s⧐%s",
		r.Seq, r.FrameNr, r.Depth, r.Kind, r.Seed, r.Extra, r.Nominal, r.Deadline)
}

// The sqlite driver rejects uint64 values with the high bit set, so
// identities travel as their int64 bit pattern.
func toSQL(u uint64) int64 { return int64(u) }
func fromSQL(i int64) uint64 { return uint64(i) }
