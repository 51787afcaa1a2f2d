package tnc

import "github.com/eapache/queue"

// eventQueue is the ordered Event buffer shared by Connection Channel
// and Monitor. Both need the same "poll the oldest Event, optionally
// filtered by kind, leaving the order of everything else intact"
// semantics (spec.md §3, §5), so it is factored out once.
//
// github.com/eapache/queue is a ring-buffer FIFO with O(1) push/pop
// from the front but no arbitrary-index removal, so a filtered Poll
// drains the whole queue into a slice, splices out the first match,
// and re-pushes the remainder in original order. Queues here are
// bounded (MaxIMsgs / MaxMonitorMsgs) and ticked at 10ms, so this is
// cheap in practice.
type eventQueue struct {
	q *queue.Queue
}

func newEventQueue() *eventQueue {
	return &eventQueue{q: queue.New()}
}

// Len returns the total number of Events, of any kind.
func (eq *eventQueue) Len() int {
	return eq.q.Length()
}

// Count returns the number of Events matching pred.
func (eq *eventQueue) Count(pred func(Event) bool) int {
	n := 0
	for i := 0; i < eq.q.Length(); i++ {
		if pred(eq.q.Get(i).(Event)) {
			n++
		}
	}
	return n
}

// Push appends an Event to the back of the queue.
func (eq *eventQueue) Push(e Event) {
	eq.q.Add(e)
}

// Poll removes and returns the oldest Event matching pred. A nil pred
// matches any Event. Reports ok=false on no match (including an empty
// queue).
func (eq *eventQueue) Poll(pred func(Event) bool) (ev Event, ok bool) {
	n := eq.q.Length()
	if n == 0 {
		return Event{}, false
	}

	if pred == nil {
		ev = eq.q.Peek().(Event)
		eq.q.Remove()
		return ev, true
	}

	items := make([]Event, n)
	for i := 0; i < n; i++ {
		items[i] = eq.q.Get(i).(Event)
	}

	idx := -1
	for i, e := range items {
		if pred(e) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Event{}, false
	}

	for i := 0; i < n; i++ {
		eq.q.Remove()
	}
	for i, e := range items {
		if i == idx {
			continue
		}
		eq.q.Add(e)
	}

	return items[idx], true
}
