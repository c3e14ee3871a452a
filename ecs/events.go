package ecs

// EventQueue is a simple FIFO of typed events. Producers push during a frame
// and the host drains once per frame.
type EventQueue[T any] struct {
	items []T
}

// Push adds an event.
func (q *EventQueue[T]) Push(evt T) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Len returns the number of queued events.
func (q *EventQueue[T]) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all events and clears the queue.
func (q *EventQueue[T]) Drain() []T {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
