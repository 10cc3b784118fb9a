package eventbus

import "sync"

// FilteredBus extends Bus with an ordered chain of generic Filters plus one
// embedded SelfMessageFilter. A candidate consumer is invoked only if every
// filter, then the self-message filter, returns true.
type FilteredBus struct {
	*Bus

	filterMu   sync.Mutex
	filters    []Filter
	selfFilter *SelfMessageFilter
}

// NewFilteredBus builds a Bus and wraps its deliverHook with the filter chain.
func NewFilteredBus(cfg Config) (*FilteredBus, error) {
	bus, err := NewBus(cfg)
	if err != nil {
		return nil, err
	}
	fb := &FilteredBus{
		Bus:        bus,
		selfFilter: NewSelfMessageFilter(false),
	}
	fb.Bus.mu.Lock()
	fb.Bus.deliverHook = fb.shouldDeliver
	fb.Bus.mu.Unlock()
	return fb, nil
}

// shouldDeliver evaluates the filter chain without holding filterMu during
// evaluation, so filter code cannot deadlock with filter-list mutation.
func (fb *FilteredBus) shouldDeliver(consumerID ComponentId, e *Event) bool {
	fb.filterMu.Lock()
	filters := make([]Filter, len(fb.filters))
	copy(filters, fb.filters)
	fb.filterMu.Unlock()

	for _, f := range filters {
		if !f.ShouldDeliver(consumerID, e) {
			return false
		}
	}
	return fb.selfFilter.ShouldDeliver(consumerID, e)
}

// AddFilter appends f to the evaluation chain.
func (fb *FilteredBus) AddFilter(f Filter) {
	fb.filterMu.Lock()
	fb.filters = append(fb.filters, f)
	fb.filterMu.Unlock()
}

// ClearFilters removes every generic filter (the self-message filter is
// unaffected; reset it separately via SelfMessageFilter().SetActive(false)).
func (fb *FilteredBus) ClearFilters() {
	fb.filterMu.Lock()
	fb.filters = nil
	fb.filterMu.Unlock()
}

// SelfMessageFilter returns the handle for toggling self-message suppression.
func (fb *FilteredBus) SelfMessageFilter() *SelfMessageFilter {
	return fb.selfFilter
}
