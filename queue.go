package eventbus

import "time"

// EventQueue is a bounded FIFO of *Event, adapting RingBuffer[*Event] to the
// bus's default Rotate overflow policy. Drops are logged at WARN and also
// handed to an optional user callback.
type EventQueue struct {
	ring     *RingBuffer[*Event]
	logger   Logger
	userDrop DropCallback
}

// NewEventQueue creates a queue with the given capacity and overflow policy,
// wiring drop notifications to logger at WARN level.
func NewEventQueue(capacity int, policy WritePolicy, logger Logger) (*EventQueue, error) {
	ring, err := NewRingBuffer[*Event](capacity, policy)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = noopLogger{}
	}
	q := &EventQueue{ring: ring, logger: logger}
	ring.SetDropCallback(q.onDrop)
	return q, nil
}

func (q *EventQueue) onDrop(count int) {
	q.logger.Warn("event queue dropped events", "count", count)
	if q.userDrop != nil {
		q.userDrop(count)
	}
}

// SetDropCallback installs an additional user hook invoked alongside the
// logger on every drop.
func (q *EventQueue) SetDropCallback(fn DropCallback) {
	q.userDrop = fn
}

// Write enqueues a single event. Returns false under Reject policy when the
// queue is full.
func (q *EventQueue) Write(e *Event) bool {
	return q.ring.Write([]*Event{e})
}

// Read dequeues up to one event into *out, returning 1 on success or 0 if
// none was available (honoring blocking/timeout as RingBuffer.Read does).
func (q *EventQueue) Read(out **Event, blocking bool, timeout time.Duration) int {
	dest := make([]*Event, 1)
	n := q.ring.Read(dest, blocking, timeout)
	if n == 1 {
		*out = dest[0]
	}
	return n
}

// Available returns the number of queued-but-undelivered events.
func (q *EventQueue) Available() int { return q.ring.Available() }

// Capacity returns the queue's fixed bound.
func (q *EventQueue) Capacity() int { return q.ring.Capacity() }

// Clear discards every queued event without delivering it.
func (q *EventQueue) Clear() { q.ring.Clear() }
