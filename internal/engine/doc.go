// Package engine plans render jobs and dispatches them to the scheduler.
//
// The planning core turns a time range on a calculation stream into a
// sequence of jobs with deadlines. It never evaluates render nodes itself;
// all it knows about the render model comes through a Dispatcher, which maps
// a model port and a frame time to a JobTicket.
//
// ARCHITECTURE:
//
// Pull Pipeline:
// Planning is a chain of lazy iterator stages built with a fluent API:
//
//	ForCalcStream(dispatcher, timings)   bind dispatcher and timings
//	  .TimeRange(start, after)           one tick per frame of the grid
//	  .PullFrom(port)                    top-level planning per frame
//	  .ExpandPrerequisites()             depth-first prerequisite walk
//	  .FeedTo(sink)                      front-end with chunked Dispatch
//
// Nothing is computed until the front-end pulls. Each stage is a valid
// iterator on its own, so partial pipelines can be inspected in tests.
//
// Deadlines:
// For time-bound streams, a frame is due at the scheduled delivery time
// shifted by its distance from frame 0. A top-level job must finish the
// output latency before that; every prerequisite must finish before its
// dependent has to start. Each job accounts for its expected runtime plus
// the engine latency. ASAP and NICE streams plan without deadlines.
//
// Concurrency:
// Tickets and exit nodes are immutable and shared freely. A pipeline is
// driven by one goroutine; any number of pipelines may run concurrently
// over the same dispatcher. Dispatchers implementing Snapshotter are pinned
// to a snapshot when the pipeline is built.
//
// Errors:
// Structural absence is never an error: empty slots yield the NOP ticket.
// Precondition violations panic with a *PlanningError of code
// ErrCodeInvariant (or ErrCodeUnknownPort for an unresolvable port).
// Dispatch returns errors for a closed sink and context cancellation.
package engine
