package engine

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/roach88/renderplan/internal/timecode"
)

// JobKind classifies what a job does when triggered.
type JobKind int

const (
	// CalcJob renders data for a frame.
	CalcJob JobKind = iota
	// LoadJob pulls source media.
	LoadJob
	// MetaJob does bookkeeping without producing data.
	MetaJob
)

func (k JobKind) String() string {
	switch k {
	case CalcJob:
		return "calc"
	case LoadJob:
		return "load"
	case MetaJob:
		return "meta"
	}
	return fmt.Sprintf("JobKind(%d)", int(k))
}

// InvocationKey distinguishes individual invocations of the same functor.
// The zero value is the key of NOP jobs.
type InvocationKey struct {
	Seed  uint64
	Extra uint64
	Time  timecode.Time
}

// IsZero reports whether k is the NOP key.
func (k InvocationKey) IsZero() bool {
	return k == InvocationKey{}
}

// Hash returns a stable 64-bit hash of the key.
func (k InvocationKey) Hash() uint64 {
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[0:], k.Seed)
	binary.BigEndian.PutUint64(buf[8:], k.Extra)
	binary.BigEndian.PutUint64(buf[16:], uint64(k.Time))
	return xxhash.Sum64(buf[:])
}

func (k InvocationKey) String() string {
	return fmt.Sprintf("%d:%d@%s", k.Seed, k.Extra, k.Time)
}

// JobParameter is the invocation data handed to a functor.
type JobParameter struct {
	NominalTime timecode.Time
	Key         InvocationKey
}

// JobFunctor is the execution closure behind a job. Functors are owned by
// the node graph and referenced, never copied, by tickets and jobs.
type JobFunctor interface {
	// Invoke performs the work of one job.
	Invoke(JobParameter) error
	// Kind tells what kind of work the functor does.
	Kind() JobKind
	// BuildInstanceKey derives the invocation seed for a pipeline.
	BuildInstanceKey(seed uint64) InvocationKey
	// HashOfInstance hashes a concrete invocation.
	HashOfInstance(InvocationKey) uint64
}

type nopFunctor struct{}

func (nopFunctor) Invoke(JobParameter) error { return nil }
func (nopFunctor) Kind() JobKind { return MetaJob }
func (nopFunctor) BuildInstanceKey(uint64) InvocationKey { return InvocationKey{} }
func (nopFunctor) HashOfInstance(k InvocationKey) uint64 { return k.Hash() }
func (nopFunctor) String() string { return "NOP" }

// NopFunctor is the shared functor of all NOP jobs.
var NopFunctor JobFunctor = &nopFunctor{}

// Job is a unit of work for the scheduler: a functor bound to invocation
// parameters. Jobs are plain values.
type Job struct {
	Functor   JobFunctor
	Parameter JobParameter
}

// NominalTime returns the frame time the job computes.
func (j Job) NominalTime() timecode.Time { return j.Parameter.NominalTime }

// Key returns the invocation key.
func (j Job) Key() InvocationKey { return j.Parameter.Key }

// Kind returns the functor's job kind.
func (j Job) Kind() JobKind { return j.Functor.Kind() }

// Trigger invokes the functor.
func (j Job) Trigger() error {
	return j.Functor.Invoke(j.Parameter)
}

// Hash identifies this invocation; equal jobs yield equal hashes.
func (j Job) Hash() uint64 {
	return j.Functor.HashOfInstance(j.Parameter.Key)
}

// UsesFunctor reports whether the job is bound to exactly f.
func (j Job) UsesFunctor(f JobFunctor) bool {
	return j.Functor == f
}

// Equivalent reports whether both jobs invoke the same functor with the
// same parameters.
func (j Job) Equivalent(o Job) bool {
	return j.Functor == o.Functor && j.Parameter == o.Parameter
}

// IsNOP reports whether the job does nothing: the NOP functor with the zero key.
func (j Job) IsNOP() bool {
	return j.Functor == NopFunctor && j.Parameter.Key.IsZero()
}
