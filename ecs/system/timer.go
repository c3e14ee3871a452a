package system

import "container/heap"

// TimerQueue runs one-shot callbacks at a game time. CancelAll drops every
// pending entry; callbacks scheduled afterwards are unaffected.
type TimerQueue struct {
	items timerHeap
	seq   uint64
	gen   uint64
}

type timer struct {
	due float64
	seq uint64
	gen uint64
	fn  func(ctx *GameContext)
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due == h[j].due {
		return h[i].seq < h[j].seq
	}
	return h[i].due < h[j].due
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*timer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

func NewTimerQueue() *TimerQueue {
	return &TimerQueue{}
}

// At schedules fn to run once game time reaches due.
func (q *TimerQueue) At(due float64, fn func(ctx *GameContext)) {
	if q == nil || fn == nil {
		return
	}
	q.seq++
	heap.Push(&q.items, &timer{due: due, seq: q.seq, gen: q.gen, fn: fn})
}

// CancelAll drops every pending timer and returns how many were dropped.
func (q *TimerQueue) CancelAll() int {
	if q == nil {
		return 0
	}
	n := len(q.items)
	q.gen++
	q.items = nil
	return n
}

func (q *TimerQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Update fires every timer due at ctx.Now in due order. A callback that
// cancels the queue stops the remaining entries of its generation.
func (q *TimerQueue) Update(ctx *GameContext) {
	if q == nil || ctx == nil {
		return
	}
	for len(q.items) > 0 {
		next := q.items[0]
		if next.due > ctx.Now {
			return
		}
		heap.Pop(&q.items)
		if next.gen != q.gen {
			continue
		}
		next.fn(ctx)
	}
}
