// Package harness runs conformance scenarios against the planner.
//
// A scenario is a YAML file naming a CUE fixture, optional extra
// split-splice edits, one planning request and a list of assertions:
//
//	name: playout_timebound
//	description: "Frames across a segment boundary, prerequisites expanded"
//	fixture: ../fixtures/playout.cue
//	plan:
//	  from: 200ms
//	  to: 300ms
//	  expand: true
//	assertions:
//	  - type: job_count
//	    count: 9
//
// Every run is isolated: the fixture is compiled and built afresh, jobs are
// journaled into an in-memory store and the stream is replayed from the
// journal to confirm planning is deterministic. Stream ids and invocation
// timestamps come from testutil, so traces are byte-stable and can be
// compared against golden files (see RunWithGolden).
package harness
