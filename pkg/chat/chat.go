// Package chat manages one linear conversation with a language model.
//
// A Chat keeps a single transcript of Messages. Every call to Chat.Chat sends
// the context for the call plus the new user prompt to a completion Adapter
// and returns the resulting transcript. Adapter failures are never returned
// as Go errors: they are recorded as a trailing message of type "error".
//
// When recording is enabled the Chat accumulates every call, including
// failed ones, into its stored history, and later calls build on it. When
// recording is disabled each call only sees the history passed by the caller.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Chat struct {
	adapter Adapter
	sinks   []EventSink

	// turn is held by recorded calls so that a turn is never lost to a
	// concurrent call overwriting stored history. Unrecorded calls skip it.
	turn chan struct{}

	mu      sync.RWMutex
	state   RecordingState
	history Transcript
}

type Option func(*Chat)

func WithEventSink(sink EventSink) Option {
	return func(c *Chat) {
		if sink != nil {
			c.sinks = append(c.sinks, sink)
		}
	}
}

// WithRecording sets the initial recording state.
func WithRecording(enabled bool) Option {
	return func(c *Chat) {
		c.state = c.state.Transition(enabled)
	}
}

func New(adapter Adapter, options ...Option) *Chat {
	ret := &Chat{
		adapter: adapter,
		turn:    make(chan struct{}, 1),
		state:   RecordingDisabled,
		history: Transcript{},
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Record turns recording on or off. Turning it off keeps the history
// recorded so far.
func (c *Chat) Record(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.Transition(enabled)
}

func (c *Chat) State() RecordingState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Chat) IsRecording() bool {
	return c.State() == RecordingEnabled
}

// History returns a copy of the recorded transcript.
func (c *Chat) History() Transcript {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.Clone()
}

// Chat sends prompt to the adapter and returns the transcript of this call.
//
// With recording disabled, the transcript is history followed by the user
// prompt and the adapter's reply. With recording enabled, the recorded
// history comes first and history is appended to it before the prompt, and
// the returned transcript becomes the new recorded history. Recorded calls
// run one at a time; a call whose ctx ends while it waits for its turn
// returns an error transcript and leaves the recorded history alone.
//
// Chat never fails: adapter errors end the transcript with an error message.
func (c *Chat) Chat(ctx context.Context, prompt string, history Transcript) Transcript {
	callID := uuid.New()
	state, request := c.buildRequest(prompt, history)

	if state == RecordingEnabled {
		select {
		case c.turn <- struct{}{}:
			defer func() { <-c.turn }()
		case <-ctx.Done():
			return c.abandon(callID, prompt, request, ctx.Err())
		}
		// the recorded history may have grown while waiting
		state, request = c.buildRequest(prompt, history)
	}

	return c.run(ctx, callID, prompt, state, request)
}

func (c *Chat) run(ctx context.Context, callID uuid.UUID, prompt string, state RecordingState, request Transcript) Transcript {
	log.Debug().
		Str("call_id", callID.String()).
		Str("recording", state.String()).
		Int("request_messages", len(request)).
		Msg("chat: invoking adapter")
	c.publish(Event{
		ID:         callID,
		Type:       EventTypeStart,
		Prompt:     prompt,
		Recording:  state == RecordingEnabled,
		Transcript: request.Clone(),
	})

	start := time.Now()
	reply, failure, ok := invokeAdapter(ctx, c.adapter, Request{History: request.Clone()})

	result := make(Transcript, 0, len(request)+len(reply)+1)
	result = append(result, request...)
	if ok {
		result = append(result, reply...)
	} else {
		result = append(result, NewErrorMessage(failure))
	}

	if state == RecordingEnabled {
		c.mu.Lock()
		c.history = result.Clone()
		c.mu.Unlock()
	}

	ev := Event{
		ID:         callID,
		Type:       EventTypeFinal,
		Prompt:     prompt,
		Recording:  state == RecordingEnabled,
		Transcript: result.Clone(),
	}
	if !ok {
		ev.Type = EventTypeError
		ev.Error = failure
		log.Debug().
			Str("call_id", callID.String()).
			Str("error", failure).
			Dur("duration", time.Since(start)).
			Msg("chat: adapter failed")
	} else {
		log.Debug().
			Str("call_id", callID.String()).
			Int("reply_messages", len(reply)).
			Dur("duration", time.Since(start)).
			Msg("chat: adapter replied")
	}
	c.publish(ev)

	return result.Clone()
}

// abandon ends a recorded call that gave up waiting for its turn. The adapter
// is not called and nothing is recorded.
func (c *Chat) abandon(callID uuid.UUID, prompt string, request Transcript, err error) Transcript {
	failure := ErrorText(err)
	result := make(Transcript, 0, len(request)+1)
	result = append(result, request...)
	result = append(result, NewErrorMessage(failure))

	log.Debug().
		Str("call_id", callID.String()).
		Str("error", failure).
		Msg("chat: gave up waiting for turn")
	c.publish(Event{
		ID:         callID,
		Type:       EventTypeError,
		Prompt:     prompt,
		Recording:  true,
		Transcript: result.Clone(),
		Error:      failure,
	})

	return result.Clone()
}

// buildRequest snapshots the recording state and returns the request
// transcript for a call made in that state.
func (c *Chat) buildRequest(prompt string, history Transcript) (RecordingState, Transcript) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var base Transcript
	switch c.state {
	case RecordingEnabled:
		base = make(Transcript, 0, len(c.history)+len(history)+1)
		base = append(base, c.history...)
		base = append(base, history...)
	default:
		base = make(Transcript, 0, len(history)+1)
		base = append(base, history...)
	}

	return c.state, append(base, NewUserMessage(prompt))
}

func (c *Chat) publish(ev Event) {
	for _, sink := range c.sinks {
		publishTo(sink, ev)
	}
}

func publishTo(sink EventSink, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().
				Interface("panic", r).
				Str("event_type", string(ev.Type)).
				Msg("chat: event sink panicked")
		}
	}()
	if err := sink.PublishEvent(ev); err != nil {
		log.Warn().Err(err).Str("event_type", string(ev.Type)).Msg("chat: failed to publish event")
	}
}
