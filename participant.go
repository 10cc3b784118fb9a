package eventbus

import (
	"context"
	"reflect"
	"sync"
)

// InterestRegistrar lets an embedding Consumer/Agent declare its
// subscriptions right after attaching to a Bus. It is this package's
// substitute for the virtual registerEventInterests() hook a C++ base
// class would call on a still-constructing derived object: Go methods
// don't dispatch virtually from an embedded base, so AttachToBus takes the
// outer value explicitly and type-asserts it against this interface.
type InterestRegistrar interface {
	RegisterEventInterests()
}

// Consumer is the base building block for event subscribers. Embed it in a
// concrete type, register handlers with RegisterHandler, and attach with
// AttachToBus.
type Consumer struct {
	id ComponentId

	mu       sync.Mutex
	handlers map[reflect.Type][]func(ctx context.Context, e *Event) error
	bus      *Bus
}

// NewConsumer creates a Consumer with the given stable ComponentId.
func NewConsumer(id ComponentId) *Consumer {
	return &Consumer{
		id:       id,
		handlers: make(map[reflect.Type][]func(context.Context, *Event) error),
	}
}

// ID returns the consumer's ComponentId.
func (c *Consumer) ID() ComponentId { return c.id }

// CanHandle reports whether any handler is registered for t.
func (c *Consumer) CanHandle(t reflect.Type) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.handlers[t]
	return ok
}

// HandleEvent invokes every handler registered for e's type, in registration
// order. Unknown types are a no-op. Returns the first handler error, if any
// — later handlers still run.
func (c *Consumer) HandleEvent(ctx context.Context, e *Event) error {
	c.mu.Lock()
	fns := append([]func(context.Context, *Event) error(nil), c.handlers[e.Type()]...)
	c.mu.Unlock()

	var firstErr error
	for _, fn := range fns {
		if err := fn(ctx, e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// AttachToBus registers the consumer on bus, registers broadcast interest
// once for each payload type that already has handlers, and, if self
// implements InterestRegistrar, calls RegisterEventInterests() to let it
// declare its handlers. self is normally the concrete type embedding this
// Consumer.
func (c *Consumer) AttachToBus(bus *Bus, self any) error {
	if bus == nil {
		return ErrNilBus
	}
	c.mu.Lock()
	c.bus = bus
	types := make([]reflect.Type, 0, len(c.handlers))
	for t := range c.handlers {
		types = append(types, t)
	}
	c.mu.Unlock()

	if err := bus.RegisterConsumer(c); err != nil {
		return err
	}
	for _, t := range types {
		bus.RegisterEventInterest(c.id, t)
	}
	if r, ok := self.(InterestRegistrar); ok {
		r.RegisterEventInterests()
	}
	return nil
}

// RegisterHandler appends fn to c's handler list for payload type E,
// registering broadcast interest with the attached bus if any (handlers
// added before AttachToBus get their interest registered on attach). Registering
// the same or a different handler for E a second time accumulates: both
// fire on every matching delivery.
func RegisterHandler[E any](c *Consumer, fn func(ctx context.Context, payload E) error) {
	t := TypeTag[E]()
	wrapped := func(ctx context.Context, e *Event) error {
		payload, _ := PayloadAs[E](e)
		return fn(ctx, payload)
	}

	c.mu.Lock()
	c.handlers[t] = append(c.handlers[t], wrapped)
	bus := c.bus
	c.mu.Unlock()

	if bus != nil {
		bus.RegisterEventInterest(c.id, t)
	}
}

// Producer is the base building block for event publishers.
type Producer struct {
	id  ComponentId
	bus *Bus
}

// NewProducer creates a Producer with the given stable ComponentId.
func NewProducer(id ComponentId) *Producer {
	return &Producer{id: id}
}

// ID returns the producer's ComponentId.
func (p *Producer) ID() ComponentId { return p.id }

// AttachToBus registers the producer on bus.
func (p *Producer) AttachToBus(bus *Bus) error {
	if bus == nil {
		return ErrNilBus
	}
	if err := bus.RegisterProducer(p); err != nil {
		return err
	}
	p.bus = bus
	return nil
}

// Publish sends an event of payload type E through p's attached bus.
// Returns ErrNoBusAttached if p has not been attached yet.
func Publish[E any](p *Producer, targetID ComponentId, payload E) error {
	if p.bus == nil {
		return ErrNoBusAttached
	}
	return PublishEvent(p.bus, p.id, targetID, payload)
}

// Agent is the union of Producer and Consumer: a single ComponentId
// registered in both roles. An Agent that both publishes and subscribes to
// a type receives its own events unless a FilteredBus's SelfMessageFilter
// is active.
type Agent struct {
	*Producer
	*Consumer
}

// NewAgent creates an Agent with a single ComponentId shared by both roles.
func NewAgent(id ComponentId) *Agent {
	return &Agent{
		Producer: NewProducer(id),
		Consumer: NewConsumer(id),
	}
}

// ID returns the agent's shared ComponentId. Defined explicitly because
// Producer and Consumer both promote an ID() method.
func (a *Agent) ID() ComponentId { return a.Producer.id }

// AttachToBus registers the agent as both producer and consumer in one
// call, then invokes self's RegisterEventInterests() hook if present.
func (a *Agent) AttachToBus(bus *Bus, self any) error {
	if bus == nil {
		return ErrNilBus
	}
	if err := bus.RegisterProducer(a.Producer); err != nil {
		return err
	}
	a.Producer.bus = bus

	a.Consumer.mu.Lock()
	a.Consumer.bus = bus
	types := make([]reflect.Type, 0, len(a.Consumer.handlers))
	for t := range a.Consumer.handlers {
		types = append(types, t)
	}
	a.Consumer.mu.Unlock()
	if err := bus.RegisterConsumer(a.Consumer); err != nil {
		return err
	}
	for _, t := range types {
		bus.RegisterEventInterest(a.Consumer.id, t)
	}

	if r, ok := self.(InterestRegistrar); ok {
		r.RegisterEventInterests()
	}
	return nil
}
