package events

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// WatermillSink publishes chat events as JSON messages on a watermill topic.
type WatermillSink struct {
	publisher message.Publisher
	topic     string
}

func NewWatermillSink(publisher message.Publisher, topic string) *WatermillSink {
	return &WatermillSink{
		publisher: publisher,
		topic:     topic,
	}
}

func (w *WatermillSink) PublishEvent(event chat.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal event to JSON")
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("call_id", event.ID.String())

	err = w.publisher.Publish(w.topic, msg)
	if err != nil {
		log.Error().Err(err).Str("topic", w.topic).Msg("Failed to publish event to watermill")
		return err
	}

	log.Trace().Str("topic", w.topic).Str("event_type", string(event.Type)).Msg("Published event to watermill")
	return nil
}

var _ chat.EventSink = (*WatermillSink)(nil)

// NullSink discards all events.
type NullSink struct{}

func NewNullSink() *NullSink {
	return &NullSink{}
}

func (n *NullSink) PublishEvent(event chat.Event) error {
	return nil
}

var _ chat.EventSink = (*NullSink)(nil)

// NewEventFromJSON decodes the payload of a message published by a WatermillSink.
func NewEventFromJSON(b []byte) (chat.Event, error) {
	var ev chat.Event
	if err := json.Unmarshal(b, &ev); err != nil {
		return chat.Event{}, errors.Wrap(err, "could not decode chat event")
	}
	if ev.Type == "" {
		return chat.Event{}, errors.New("chat event has no type")
	}
	return ev, nil
}
