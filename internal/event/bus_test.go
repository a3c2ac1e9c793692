package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	bus.Publish(Event{Type: AgentReplied, ConversationKey: "42", ChatID: 42})

	select {
	case ev := <-events:
		assert.Equal(t, AgentReplied, ev.Type)
		assert.Equal(t, "42", ev.ConversationKey)
		assert.Equal(t, int64(42), ev.ChatID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribeChannelClosesOnCancel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after cancel")
	}
}

func TestMultipleSubscribersEachReceive(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	b, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	bus.Publish(Event{Type: SessionReset, ConversationKey: "7"})

	for _, ch := range []<-chan Event{a, b} {
		select {
		case ev := <-ch:
			assert.Equal(t, SessionReset, ev.Type)
		case <-time.After(2 * time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}
