package eventbus

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// ComponentId uniquely identifies a Producer, Consumer, or Agent within one Bus.
type ComponentId = string

// NewComponentID returns a fresh, randomly-generated ComponentId. Participants
// are free to supply their own stable id instead; this is a convenience for
// callers that don't need one.
func NewComponentID() ComponentId {
	return uuid.New().String()
}

// Event is an immutable-after-publish message: a typed payload plus the
// routing metadata the Bus stamps on at publish time. The zero value is not
// usable; Events are created by PublishEvent/Publish.
type Event struct {
	sourceID  ComponentId
	targetID  ComponentId
	timestamp time.Time
	typ       reflect.Type
	payload   any
}

func newEvent(payload any) *Event {
	return &Event{
		typ:     reflect.TypeOf(payload),
		payload: payload,
	}
}

// SourceID returns the ComponentId that published the event, or "" if published anonymously.
func (e *Event) SourceID() ComponentId { return e.sourceID }

// TargetID returns the destination ComponentId, or "" for a broadcast event.
func (e *Event) TargetID() ComponentId { return e.targetID }

// Timestamp returns the wall-clock instant the Bus stamped at publish time.
func (e *Event) Timestamp() time.Time { return e.timestamp }

// Type returns the event's dispatch key: the reflect.Type of its concrete payload.
func (e *Event) Type() reflect.Type { return e.typ }

// String renders the event for logging.
func (e *Event) String() string {
	target := e.targetID
	if target == "" {
		target = "*"
	}
	return fmt.Sprintf("Event{type=%s source=%s target=%s}", e.typ, e.sourceID, target)
}

// TypeTag returns the stable dispatch key for the concrete payload type E.
// TypeTag(E1) == TypeTag(E2) iff E1 and E2 are the same concrete Go type.
func TypeTag[E any]() reflect.Type {
	return reflect.TypeOf((*E)(nil)).Elem()
}

// PayloadAs extracts the concrete payload from e. ok is false if e does not
// carry a payload of type E — callers reach this only through handler
// dispatch, which already routed by matching type tag, so the assertion is
// expected to always succeed there.
func PayloadAs[E any](e *Event) (payload E, ok bool) {
	payload, ok = e.payload.(E)
	return payload, ok
}
