// Package fixture holds the render model the planner consults: a
// Segmentation of the timeline, where each segment attaches one exit node
// per model port.
//
// The Segmentation always covers the whole time axis [-∞,+∞) without gaps.
// New segments are inserted with SplitSplice, which truncates or replaces
// whatever they overlap and fills remaining gaps with empty segments.
//
// Concurrency:
// Readers never lock. Each mutation builds a new segment slice and
// publishes it atomically; writers are serialised by a mutex. A Snapshot
// pins the current slice, so a running plan sees a consistent model while
// the Segmentation changes underneath.
//
// Fixtures are usually built from an ir.FixtureSpec via Build, which
// resolves node names and prerequisites into engine.ExitNode graphs.
package fixture
