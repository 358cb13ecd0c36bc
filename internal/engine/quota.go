package engine

// ChunkQuota counts the jobs delivered by one Dispatch call against the
// configured chunk limit.
//
// Chunking keeps the planning ahead of playback by a bounded amount: the
// caller dispatches up to a break point, and the limit additionally caps
// how many jobs a single call may hand to the scheduler, even when a
// frame's prerequisite tree is large.
type ChunkQuota struct {
	limit int // 0 means unlimited
	used  int
}

// NewChunkQuota creates a quota allowing limit jobs; limit <= 0 disables it.
func NewChunkQuota(limit int) *ChunkQuota {
	return &ChunkQuota{limit: limit}
}

// Allow reports whether another job may be delivered and, if so, counts it.
func (q *ChunkQuota) Allow() bool {
	if q.limit > 0 && q.used >= q.limit {
		return false
	}
	q.used++
	return true
}

// Used returns the number of allowed jobs.
func (q *ChunkQuota) Used() int { return q.used }

// Remaining returns how many jobs are still allowed, -1 if unlimited.
func (q *ChunkQuota) Remaining() int {
	if q.limit <= 0 {
		return -1
	}
	return q.limit - q.used
}
