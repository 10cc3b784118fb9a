package eventbus

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// ProducerRef is the registry-facing contract a Producer satisfies.
type ProducerRef interface {
	ID() ComponentId
}

// ConsumerRef is the registry-facing contract a Consumer satisfies.
type ConsumerRef interface {
	ID() ComponentId
	CanHandle(t reflect.Type) bool
	HandleEvent(ctx context.Context, e *Event) error
}

// Stats is a point-in-time snapshot of a Bus's delivery counters.
type Stats struct {
	Published int64
	Delivered int64
	Dropped   int64
	Faults    int64
}

// Bus is the central event registry and dispatch engine described by the
// package: registration of producers/consumers, interest-based broadcast,
// targeted delivery, and optional asynchronous delivery through an
// EventQueue.
type Bus struct {
	logger Logger

	mu        sync.RWMutex
	producers map[ComponentId]ProducerRef
	consumers map[ComponentId]ConsumerRef
	interests map[reflect.Type][]ComponentId

	// deliverHook screens (consumerID, event) before invocation. The plain
	// Bus always allows; FilteredBus overrides this with its filter chain.
	// This is composition standing in for the C++ base class's overridable
	// deliverEvent — Go methods have no virtual dispatch.
	deliverHook func(consumerID ComponentId, e *Event) bool

	queue   *EventQueue
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool

	published atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
	faults    atomic.Int64
}

// NewBus constructs a Bus from cfg. When cfg.AsyncDelivery is set, an Event
// Queue and background worker are started immediately.
func NewBus(cfg Config) (*Bus, error) {
	cfg = cfg.withDefaults()

	b := &Bus{
		logger:      cfg.Logger,
		producers:   make(map[ComponentId]ProducerRef),
		consumers:   make(map[ComponentId]ConsumerRef),
		interests:   make(map[reflect.Type][]ComponentId),
		deliverHook: func(ComponentId, *Event) bool { return true },
	}
	b.running.Store(true)

	if cfg.AsyncDelivery {
		queue, err := NewEventQueue(cfg.QueueCapacity, cfg.WritePolicy, cfg.Logger)
		if err != nil {
			return nil, err
		}
		b.queue = queue
		b.ctx, b.cancel = context.WithCancel(context.Background())
		b.wg.Add(1)
		go b.drainLoop()
	}

	return b, nil
}

// RegisterProducer attaches p to the bus, replacing any earlier registration
// under the same ComponentId (last-write-wins).
func (b *Bus) RegisterProducer(p ProducerRef) error {
	if p == nil {
		return ErrNilProducer
	}
	b.mu.Lock()
	b.producers[p.ID()] = p
	b.mu.Unlock()
	return nil
}

// UnregisterProducer removes a producer. Idempotent.
func (b *Bus) UnregisterProducer(id ComponentId) {
	b.mu.Lock()
	delete(b.producers, id)
	b.mu.Unlock()
}

// RegisterConsumer attaches c to the bus, replacing any earlier registration
// under the same ComponentId (last-write-wins).
func (b *Bus) RegisterConsumer(c ConsumerRef) error {
	if c == nil {
		return ErrNilConsumer
	}
	b.mu.Lock()
	b.consumers[c.ID()] = c
	b.mu.Unlock()
	return nil
}

// UnregisterConsumer removes a consumer. Idempotent; does not revoke
// delivery of events already in flight to that consumer.
func (b *Bus) UnregisterConsumer(id ComponentId) {
	b.mu.Lock()
	delete(b.consumers, id)
	b.mu.Unlock()
}

// RegisterEventInterest appends consumerID to the broadcast interest list
// for t. Duplicate registrations are kept, producing duplicate delivery.
func (b *Bus) RegisterEventInterest(consumerID ComponentId, t reflect.Type) {
	b.mu.Lock()
	b.interests[t] = append(b.interests[t], consumerID)
	b.mu.Unlock()
}

// GetEventQueue returns the bus's Event Queue, or nil for a synchronous bus.
func (b *Bus) GetEventQueue() *EventQueue { return b.queue }

// Stats returns a snapshot of delivery counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Dropped:   b.dropped.Load(),
		Faults:    b.faults.Load(),
	}
}

// PublishEvent constructs an Event of payload type E, stamps source/target/
// timestamp, and dispatches it — synchronously on the caller's goroutine, or
// by enqueueing for the background worker when the bus is asynchronous.
func PublishEvent[E any](b *Bus, sourceID, targetID ComponentId, payload E) error {
	return b.publish(sourceID, targetID, payload)
}

func (b *Bus) publish(sourceID, targetID ComponentId, payload any) error {
	if !b.running.Load() {
		b.logger.Warn("publish ignored: bus is stopped", "source", sourceID)
		return nil
	}

	e := newEvent(payload)
	e.sourceID = sourceID
	e.targetID = targetID
	e.timestamp = time.Now()
	b.published.Add(1)

	if b.queue == nil {
		return b.dispatch(context.Background(), e)
	}

	if !b.queue.Write(e) {
		b.dropped.Add(1)
		return ErrQueueOverflow
	}
	return nil
}

// dispatch routes e to its candidate consumers, holding the registry's
// read lock for the whole delivery (per design: handlers may re-entrantly
// publish, but must not register/unregister on this bus, which would
// attempt to upgrade this read lock and deadlock).
func (b *Bus) dispatch(ctx context.Context, e *Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var firstErr error
	invoke := func(c ConsumerRef) {
		if !c.CanHandle(e.typ) {
			return
		}
		if !b.deliverHook(c.ID(), e) {
			return
		}
		if err := b.invokeHandler(ctx, c, e); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if e.targetID != "" {
		if c, ok := b.consumers[e.targetID]; ok {
			invoke(c)
		}
		return firstErr
	}

	for _, id := range b.interests[e.typ] {
		if c, ok := b.consumers[id]; ok {
			invoke(c)
		}
	}
	return firstErr
}

// invokeHandler calls the consumer's handler, containing both a returned
// error and a recovered panic (this package's stand-in for a thrown
// exception) as a HandlerFault: logged at ERROR, never propagated to the
// async worker, and reported back to a synchronous publisher as the
// dispatch's first error.
func (b *Bus) invokeHandler(ctx context.Context, c ConsumerRef, e *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.faults.Add(1)
			b.logger.Error("event handler panicked", "consumer", c.ID(), "type", e.typ, "source", e.sourceID, "target", e.targetID, "panic", r)
			err = &HandlerFault{Consumer: c.ID(), EventType: e.typ, Cause: r}
		}
	}()

	herr := c.HandleEvent(ctx, e)
	if herr != nil {
		b.faults.Add(1)
		b.logger.Error("event handler failed", "consumer", c.ID(), "type", e.typ, "source", e.sourceID, "target", e.targetID, "error", herr)
		return &HandlerFault{Consumer: c.ID(), EventType: e.typ, Cause: herr}
	}
	b.delivered.Add(1)
	return nil
}

func (b *Bus) drainLoop() {
	defer b.wg.Done()
	var ev *Event
	for {
		if b.ctx.Err() != nil {
			return
		}
		if n := b.queue.Read(&ev, true, 100*time.Millisecond); n == 0 {
			continue
		}
		if b.ctx.Err() != nil {
			return
		}
		_ = b.dispatch(b.ctx, ev)
	}
}

// Stop terminates asynchronous delivery: the background worker finishes its
// current event and exits, and further Publish calls become no-ops that
// return nil and log a WARN.
// Idempotent. For a synchronous bus this only flips the running flag.
func (b *Bus) Stop(ctx context.Context) error {
	if !b.running.CompareAndSwap(true, false) {
		return nil
	}
	if b.cancel == nil {
		return nil
	}
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrShutdownTimeout
	}
}
