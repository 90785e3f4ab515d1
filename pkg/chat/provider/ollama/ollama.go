// Package ollama implements chat.Adapter against a local ollama server.
package ollama

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/go-go-golems/ragged/pkg/settings"
	"github.com/jmorganca/ollama/api"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	ProviderName = "ollama"
	DefaultModel = "llama3"
)

type Adapter struct {
	client      *api.Client
	model       string
	temperature *float64
	maxTokens   *int
}

var _ chat.Adapter = &Adapter{}

type Option func(*Adapter)

func WithModel(model string) Option {
	return func(a *Adapter) {
		if model != "" {
			a.model = model
		}
	}
}

func WithTemperature(t *float64) Option {
	return func(a *Adapter) {
		a.temperature = t
	}
}

func WithMaxResponseTokens(n *int) Option {
	return func(a *Adapter) {
		a.maxTokens = n
	}
}

func New(client *api.Client, options ...Option) *Adapter {
	ret := &Adapter{
		client: client,
		model:  DefaultModel,
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

// NewClient creates an ollama client for baseURL. The client only reads its
// address from OLLAMA_HOST, so baseURL is exported there when set.
func NewClient(baseURL string) (*api.Client, error) {
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil || u.Host == "" {
			return nil, errors.Errorf("invalid ollama base url %q", baseURL)
		}
		if err := os.Setenv("OLLAMA_HOST", u.Scheme+"://"+u.Host); err != nil {
			return nil, errors.Wrap(err, "could not set OLLAMA_HOST")
		}
	}
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, "could not create ollama client")
	}
	return client, nil
}

func NewFromSettings(s *settings.Settings, options ...Option) (*Adapter, error) {
	client, err := NewClient(s.BaseURL(settings.ApiTypeOllama))
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithModel(s.ChatModel()),
		WithTemperature(s.Chat.Temperature),
		WithMaxResponseTokens(s.Chat.MaxResponseTokens),
	}
	opts = append(opts, options...)
	return New(client, opts...), nil
}

func (a *Adapter) Model() string {
	return a.model
}

func (a *Adapter) Chat(ctx context.Context, req chat.Request) (chat.Response, error) {
	stream := true
	chatReq := &api.ChatRequest{
		Model:    a.model,
		Messages: toOllamaMessages(req.History),
		Stream:   &stream,
		Options:  a.options(),
	}

	var b strings.Builder
	err := a.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		if resp.Done {
			log.Debug().Str("model", resp.Model).Int("length", b.Len()).Msg("ollama: chat done")
			return nil
		}
		b.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return chat.Response{}, normalizeError(err)
	}

	return chat.Response{History: chat.Transcript{chat.NewBotMessage(b.String())}}, nil
}

func (a *Adapter) options() map[string]interface{} {
	ret := map[string]interface{}{}
	if a.temperature != nil {
		ret["temperature"] = *a.temperature
	}
	if a.maxTokens != nil {
		ret["num_predict"] = *a.maxTokens
	}
	if len(ret) == 0 {
		return nil
	}
	return ret
}

func toOllamaMessages(history chat.Transcript) []api.Message {
	ret := make([]api.Message, 0, len(history))
	for _, m := range history {
		var role string
		switch m.Type {
		case chat.MessageTypeUser:
			role = "user"
		case chat.MessageTypeBot:
			role = "assistant"
		case chat.MessageTypeSystem:
			role = "system"
		default:
			continue
		}
		ret = append(ret, api.Message{Role: role, Content: m.Text})
	}
	return ret
}

func normalizeError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.ErrorMessage
		if msg == "" {
			msg = statusErr.Status
		}
		return &chat.ProviderError{
			Provider:   ProviderName,
			StatusCode: statusErr.StatusCode,
			Message:    msg,
			Cause:      err,
		}
	}
	// the client reports error bodies of non-streamed failures as plain
	// errors, without the status code
	return &chat.ProviderError{
		Provider: ProviderName,
		Message:  err.Error(),
		Cause:    err,
	}
}
