// Package event provides a pub/sub bus for bot activity using
// watermill. Handlers publish what happened to each inbound message;
// the runner and the debug SSE endpoint subscribe.
package event

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/skel-labs/skelbot/internal/logging"
)

// Type identifies what happened.
type Type string

const (
	MessageReceived Type = "message.received"
	MessageIgnored  Type = "message.ignored"
	AgentReplied    Type = "agent.replied"
	AgentFailed     Type = "agent.failed"
	SessionReset    Type = "session.reset"
)

// Event is one bot activity record.
type Event struct {
	Type            Type   `json:"type"`
	ConversationKey string `json:"conversation_key,omitempty"`
	ChatID          int64  `json:"chat_id,omitempty"`
	// Detail is a short free-form annotation (command name, error
	// summary). Never user message content.
	Detail string `json:"detail,omitempty"`
}

// topic is the single gochannel topic all bot events flow through.
const topic = "bot.activity"

// Bus is an in-process pub/sub bus. Publishing never blocks the caller
// beyond the subscriber buffer; events to slow subscribers are dropped
// by context cancellation rather than backpressure on the hot path.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates a bus.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: 100,
				Persistent:          false,
			},
			watermill.NopLogger{},
		),
	}
}

// Publish emits an event. Failures are logged, never returned: bot
// observability must not affect message handling.
func (b *Bus) Publish(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logging.Error().Err(err).Msg("failed to encode bus event")
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", string(ev.Type))
	if err := b.pubsub.Publish(topic, msg); err != nil {
		logging.Error().Err(err).Str("type", string(ev.Type)).Msg("failed to publish bus event")
	}
}

// Subscribe returns a channel of events, closed when ctx is cancelled
// or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, error) {
	msgs, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}
	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				logging.Warn().Err(err).Msg("dropping undecodable bus event")
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the bus down; subscriber channels are closed. Idempotent.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
