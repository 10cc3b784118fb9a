package eventbus

import (
	"errors"
	"fmt"
	"reflect"
)

// Event bus state errors
var (
	ErrBusNotStarted  = errors.New("event bus not started")
	ErrShutdownTimeout = errors.New("event bus shutdown timed out")
	ErrNilBus          = errors.New("bus reference cannot be nil")
	ErrNoBusAttached   = errors.New("participant is not attached to a bus")
)

// Registration errors
var (
	ErrNilProducer  = errors.New("producer cannot be nil")
	ErrNilConsumer  = errors.New("consumer cannot be nil")
	ErrNilEvent     = errors.New("event cannot be nil")
	ErrNilHandler   = errors.New("handler cannot be nil")
)

// Ring buffer / queue errors
var (
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	ErrQueueOverflow   = errors.New("event queue is full")
)

// HandlerFault wraps a panic or error raised inside a consumer's handler.
// A synchronous Publish returns the dispatch's first HandlerFault; an
// asynchronous worker only logs it and continues with the next consumer.
type HandlerFault struct {
	Consumer  ComponentId
	EventType reflect.Type
	Cause     any
}

func (f *HandlerFault) Error() string {
	return fmt.Sprintf("handler fault: consumer=%s type=%s cause=%v", f.Consumer, f.EventType, f.Cause)
}

func (f *HandlerFault) Unwrap() error {
	if err, ok := f.Cause.(error); ok {
		return err
	}
	return nil
}
