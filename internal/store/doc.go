// Package store provides a SQLite-backed journal of planned render jobs.
//
// Every calculation stream that is planned with a journal attached gets
// one row in streams and one row per dispatched job in planned_jobs. The
// journal serves two purposes: inspecting what the planner decided, and
// verifying that re-planning the same fixture yields the same jobs.
//
// # Critical Patterns
//
// Logical Time:
//   - Jobs are ordered by seq, the stream's logical clock
//   - Nominal times and deadlines are stored as nanoseconds; the sentinels
//     -∞ and +∞ round-trip unchanged
//
// Idempotency:
//   - PRIMARY KEY(stream_id, seq) with ON CONFLICT DO NOTHING
//   - Re-delivering the same job is a no-op
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Jobs must belong to a recorded stream
package store
