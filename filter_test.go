package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfMessageFilterBlocksOwnEventsWhenActive(t *testing.T) {
	f := NewSelfMessageFilter(true)
	e := newEvent("x")
	e.sourceID = "agent-1"

	assert.False(t, f.ShouldDeliver("agent-1", e))
	assert.True(t, f.ShouldDeliver("agent-2", e))
}

func TestSelfMessageFilterInactiveAllowsEverything(t *testing.T) {
	f := NewSelfMessageFilter(false)
	e := newEvent("x")
	e.sourceID = "agent-1"

	assert.True(t, f.ShouldDeliver("agent-1", e))
	f.SetActive(true)
	assert.False(t, f.ShouldDeliver("agent-1", e))
	assert.True(t, f.Active())
}

func TestFilteredBusSuppressesBySelfMessageFilter(t *testing.T) {
	fb, err := NewFilteredBus(Config{})
	require.NoError(t, err)
	fb.SelfMessageFilter().SetActive(true)

	agent := NewAgent("loopback")
	var heard bool
	RegisterHandler(agent.Consumer, func(ctx context.Context, n int) error {
		heard = true
		return nil
	})
	require.NoError(t, agent.AttachToBus(fb.Bus, agent))
	require.NoError(t, Publish(agent.Producer, "", 1))

	assert.False(t, heard)
}

func TestFilteredBusCustomFilterChain(t *testing.T) {
	fb, err := NewFilteredBus(Config{})
	require.NoError(t, err)

	blockAll := FilterFunc(func(consumerID ComponentId, e *Event) bool { return false })
	fb.AddFilter(blockAll)

	consumer := NewConsumer("target")
	var heard bool
	RegisterHandler(consumer, func(ctx context.Context, n int) error {
		heard = true
		return nil
	})
	require.NoError(t, consumer.AttachToBus(fb.Bus, consumer))

	producer := NewProducer("writer")
	require.NoError(t, producer.AttachToBus(fb.Bus))
	require.NoError(t, Publish(producer, "", 1))
	assert.False(t, heard)

	fb.ClearFilters()
	require.NoError(t, Publish(producer, "", 1))
	assert.True(t, heard)
}
