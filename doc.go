// Package eventbus provides an in-process, type-safe publish/subscribe
// system for decoupling components within a single process.
//
// # Features
//
// The package offers the following capabilities:
//   - Typed payload dispatch keyed by concrete Go type, not string topics
//   - Targeted (point-to-point) and broadcast (interest-based) delivery
//   - Synchronous or asynchronous delivery, the latter backed by a bounded
//     Event Queue and a single background worker
//   - A bounded, overflow-policy-configurable Ring Buffer underlying the
//     queue (Reject, Rotate, or Reset on overflow)
//   - An optional Filter chain (FilteredBus) for cross-cutting delivery
//     rules, including built-in self-message suppression
//   - Base Producer/Consumer/Agent types for embedding into application
//     components
//
// # Basic usage
//
//	bus, err := eventbus.NewBus(eventbus.Config{})
//	consumer := eventbus.NewConsumer("printer")
//	eventbus.RegisterHandler(consumer, func(ctx context.Context, msg string) error {
//	    fmt.Println(msg)
//	    return nil
//	})
//	consumer.AttachToBus(bus, consumer)
//
//	producer := eventbus.NewProducer("writer")
//	producer.AttachToBus(bus)
//	eventbus.Publish(producer, "", "hello")
//
// # Asynchronous delivery
//
//	bus, err := eventbus.NewBus(eventbus.Config{
//	    AsyncDelivery: true,
//	    QueueCapacity: 1024,
//	    WritePolicy:   eventbus.Rotate,
//	})
//	defer bus.Stop(context.Background())
package eventbus
