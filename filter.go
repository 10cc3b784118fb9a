package eventbus

import "sync/atomic"

// Filter is a delivery predicate evaluated before a candidate consumer
// receives an event. Returning false suppresses delivery to that consumer
// for that event only; it has no effect on other consumers or events.
type Filter interface {
	ShouldDeliver(consumerID ComponentId, e *Event) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(consumerID ComponentId, e *Event) bool

// ShouldDeliver implements Filter.
func (f FilterFunc) ShouldDeliver(consumerID ComponentId, e *Event) bool {
	return f(consumerID, e)
}

// SelfMessageFilter suppresses delivery of an event back to the consumer
// that published it, when active. The active flag is atomic so it can be
// toggled concurrently with in-flight dispatch.
type SelfMessageFilter struct {
	active atomic.Bool
}

// NewSelfMessageFilter creates a SelfMessageFilter with the given initial state.
func NewSelfMessageFilter(active bool) *SelfMessageFilter {
	f := &SelfMessageFilter{}
	f.active.Store(active)
	return f
}

// ShouldDeliver implements Filter: it blocks delivery only when active and
// the event's source matches the candidate consumer.
func (f *SelfMessageFilter) ShouldDeliver(consumerID ComponentId, e *Event) bool {
	if !f.active.Load() {
		return true
	}
	return e.SourceID() != consumerID
}

// SetActive toggles self-message suppression.
func (f *SelfMessageFilter) SetActive(active bool) {
	f.active.Store(active)
}

// Active reports whether self-message suppression is currently enabled.
func (f *SelfMessageFilter) Active() bool {
	return f.active.Load()
}
