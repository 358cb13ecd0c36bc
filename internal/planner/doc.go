// Package planner runs planning requests against a built fixture model.
//
// It is the glue between the tooling surfaces (CLI, conformance harness)
// and the planning core: it resolves the request's timings, wires the
// calculation stream with logger, observer and stream ids, optionally
// journals every dispatched job and can replay a journaled stream to check
// that planning is deterministic.
package planner
