package kws

// maxResults is the fixed capacity of the score history queue. Pruning by
// the averaging window keeps the live entry count far below this; hitting
// the cap means the window duration is misconfigured relative to the
// inference rate.
const maxResults = 50

// scoreEntry is one inference result: the stream time it was recorded at and
// one score per category. The scores slice aliases the queue's arena.
type scoreEntry struct {
	time   int64
	scores []int8
}

// scoreQueue is a bounded FIFO of score entries with O(1) push, pop and
// indexed access from the front. All entry storage lives in one arena
// allocated at begin, so steady-state operation allocates nothing.
type scoreQueue struct {
	entries  [maxResults]scoreEntry
	arena    []int8
	frontIdx int
	count    int
}

// begin sizes the arena for the given category count and points each entry
// slot at its fixed region. Safe to call again to re-begin with a different
// count.
func (q *scoreQueue) begin(categoryCount int) {
	q.arena = make([]int8, maxResults*categoryCount)
	for i := range q.entries {
		q.entries[i] = scoreEntry{
			scores: q.arena[i*categoryCount : (i+1)*categoryCount],
		}
	}
	q.frontIdx = 0
	q.count = 0
}

func (q *scoreQueue) len() int { return q.count }

func (q *scoreQueue) empty() bool { return q.count == 0 }

// front returns the oldest entry. The queue must not be empty.
func (q *scoreQueue) front() *scoreEntry {
	return &q.entries[q.frontIdx]
}

// fromFront returns the entry at the given offset from the oldest.
// The offset must be in [0, len).
func (q *scoreQueue) fromFront(offset int) *scoreEntry {
	idx := q.frontIdx + offset
	if idx >= maxResults {
		idx -= maxResults
	}
	return &q.entries[idx]
}

// pushBack copies (time, scores) into the next free slot. When the queue is
// at capacity the entry is dropped and ErrScoreQueueFull returned; existing
// entries are never overwritten.
func (q *scoreQueue) pushBack(time int64, scores []int8) error {
	if q.count >= maxResults {
		return ErrScoreQueueFull
	}
	idx := q.frontIdx + q.count
	if idx >= maxResults {
		idx -= maxResults
	}
	e := &q.entries[idx]
	e.time = time
	copy(e.scores, scores)
	q.count++
	return nil
}

// popFront removes the oldest entry. A no-op on an empty queue.
func (q *scoreQueue) popFront() {
	if q.count == 0 {
		return
	}
	q.frontIdx++
	if q.frontIdx >= maxResults {
		q.frontIdx = 0
	}
	q.count--
}

// reset empties the queue, keeping the arena.
func (q *scoreQueue) reset() {
	q.frontIdx = 0
	q.count = 0
}
