// Package factory creates chat adapters and Chats for the configured
// provider.
package factory

import (
	"context"

	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/go-go-golems/ragged/pkg/chat/provider/gemini"
	"github.com/go-go-golems/ragged/pkg/chat/provider/ollama"
	"github.com/go-go-golems/ragged/pkg/chat/provider/openai"
	"github.com/go-go-golems/ragged/pkg/settings"
	"github.com/go-go-golems/ragged/pkg/tools"
	"github.com/pkg/errors"
)

type adapterOptions struct {
	tools *tools.Registry
}

type AdapterOption func(*adapterOptions)

// WithTools makes the registry available to providers that support tool
// calls. Other providers ignore it.
func WithTools(r *tools.Registry) AdapterOption {
	return func(o *adapterOptions) {
		o.tools = r
	}
}

func NewAdapter(ctx context.Context, s *settings.Settings, options ...AdapterOption) (chat.Adapter, error) {
	if s == nil || s.Chat == nil {
		return nil, errors.New("no chat settings provided")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	o := &adapterOptions{}
	for _, option := range options {
		option(o)
	}

	var (
		adapter chat.Adapter
		err     error
	)
	switch s.Chat.ApiType {
	case settings.ApiTypeOpenAI:
		var opts []openai.Option
		if o.tools != nil {
			opts = append(opts, openai.WithTools(o.tools))
		}
		var a *openai.Adapter
		a, err = openai.NewFromSettings(s, opts...)
		adapter = a
	case settings.ApiTypeGemini:
		var a *gemini.Adapter
		a, err = gemini.NewFromSettings(ctx, s)
		adapter = a
	case settings.ApiTypeOllama:
		var a *ollama.Adapter
		a, err = ollama.NewFromSettings(s)
		adapter = a
	default:
		return nil, errors.Errorf("unsupported chat api type %q", s.Chat.ApiType)
	}
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

// NewChat creates a Chat backed by the configured provider. Each adapter
// call is bounded by the chat timeout of s.
func NewChat(ctx context.Context, s *settings.Settings, adapterOpts []AdapterOption, options ...chat.Option) (*chat.Chat, error) {
	adapter, err := NewAdapter(ctx, s, adapterOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "could not create chat adapter")
	}
	return chat.New(chat.WithTimeout(adapter, s.Chat.Timeout), options...), nil
}
