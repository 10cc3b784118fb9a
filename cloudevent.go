package eventbus

import (
	"fmt"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// ToCloudEvent renders e as a CloudEvents envelope for handlers that need an
// interoperable, self-describing representation — for example, writing an
// audit trail or handing the event to logging/tracing middleware that
// already understands the CloudEvents attribute set. This is a structural
// conversion only: the package has no transport of its own, and nothing
// here serializes the result onto a wire.
//
// typeURI becomes the envelope's "type" attribute; source defaults to e's
// SourceID, or "eventbus" for an anonymously-published event.
func (e *Event) ToCloudEvent(typeURI string) (cloudevents.Event, error) {
	ce := cloudevents.NewEvent()
	ce.SetID(fmt.Sprintf("%s-%d", e.typ.String(), e.timestamp.UnixNano()))
	ce.SetType(typeURI)
	ce.SetTime(e.timestamp)

	source := e.sourceID
	if source == "" {
		source = "eventbus"
	}
	ce.SetSource(source)
	if e.targetID != "" {
		ce.SetExtension("target", e.targetID)
	}

	if err := ce.SetData(cloudevents.ApplicationJSON, e.payload); err != nil {
		return cloudevents.Event{}, fmt.Errorf("eventbus: encoding cloudevent payload: %w", err)
	}
	return ce, nil
}
