package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/rs/zerolog/log"
)

// Router wires an in-process gochannel pub/sub to a watermill router so
// chat events can be consumed by handlers while a Chat runs.
type Router struct {
	logger     watermill.LoggerAdapter
	Publisher  message.Publisher
	Subscriber message.Subscriber
	router     *message.Router
}

type RouterOption func(*Router)

func WithLogger(logger watermill.LoggerAdapter) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithVerbose routes watermill logs to the global zerolog logger.
func WithVerbose(verbose bool, options ...LoggerOption) RouterOption {
	return func(r *Router) {
		if verbose {
			r.logger = NewWatermillLogger(log.Logger, options...)
		}
	}
}

func NewRouter(options ...RouterOption) (*Router, error) {
	ret := &Router{
		logger: watermill.NopLogger{},
	}
	for _, o := range options {
		o(ret)
	}

	goPubSub := gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, ret.logger)
	ret.Publisher = goPubSub
	ret.Subscriber = goPubSub

	router, err := message.NewRouter(message.RouterConfig{}, ret.logger)
	if err != nil {
		return nil, err
	}
	ret.router = router

	return ret, nil
}

// Sink returns a chat.EventSink publishing on topic.
func (r *Router) Sink(topic string) *WatermillSink {
	return NewWatermillSink(r.Publisher, topic)
}

// AddHandler registers f for every chat event published on topic.
func (r *Router) AddHandler(name string, topic string, f func(ev chat.Event) error) {
	r.router.AddNoPublisherHandler(name, topic, r.Subscriber, func(msg *message.Message) error {
		ev, err := NewEventFromJSON(msg.Payload)
		if err != nil {
			log.Error().Err(err).Str("message_id", msg.UUID).Msg("Failed to parse chat event")
			return nil
		}
		return f(ev)
	})
}

// Running is closed once the router's handlers are subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

func (r *Router) Close() error {
	log.Debug().Msg("Closing publisher")
	if err := r.Publisher.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close pubsub")
	}
	log.Debug().Msg("Closing router")
	if err := r.router.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close router")
		return err
	}
	return nil
}
