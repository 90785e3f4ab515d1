package chat

import (
	"context"
	"time"
)

// Request is what the Chat hands to its completion adapter: the full
// transcript for this call, ending with the new user message.
type Request struct {
	History Transcript `json:"history"`
}

// Response carries the messages the adapter produced for a request. It only
// contains the new messages, never the request transcript.
type Response struct {
	History Transcript `json:"history"`
}

// Adapter performs the actual call to a model provider.
type Adapter interface {
	Chat(ctx context.Context, req Request) (Response, error)
}

type AdapterFunc func(ctx context.Context, req Request) (Response, error)

func (f AdapterFunc) Chat(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

var _ Adapter = AdapterFunc(nil)

// WithTimeout bounds every call to adapter by d. A non-positive d returns
// adapter unchanged.
func WithTimeout(adapter Adapter, d time.Duration) Adapter {
	if d <= 0 {
		return adapter
	}
	return AdapterFunc(func(ctx context.Context, req Request) (Response, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return adapter.Chat(ctx, req)
	})
}

// invokeAdapter runs one adapter call and classifies its outcome. Either the
// returned messages are valid (ok is true), or failure holds the text of the
// error message to record. Panics inside the adapter are classified the same
// way as returned errors.
func invokeAdapter(ctx context.Context, adapter Adapter, req Request) (msgs Transcript, failure string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			msgs, failure, ok = nil, classifyPanic(r), false
		}
	}()

	resp, err := adapter.Chat(ctx, req)
	if err != nil {
		return nil, ErrorText(err), false
	}
	return resp.History.Clone(), "", true
}
