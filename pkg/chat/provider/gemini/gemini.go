// Package gemini implements chat.Adapter with the Google Gen AI SDK.
package gemini

import (
	"context"
	"strings"

	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/go-go-golems/ragged/pkg/settings"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const (
	ProviderName = "gemini"
	DefaultModel = "gemini-2.0-flash"
)

// modelsClient is the part of genai.Models the adapter needs.
type modelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

type Adapter struct {
	models      modelsClient
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

func newAdapter(models modelsClient, options ...Option) *Adapter {
	ret := &Adapter{
		models: models,
		model:  DefaultModel,
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

// New creates an adapter talking to the Gemini API with apiKey.
func New(ctx context.Context, apiKey string, options ...Option) (*Adapter, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("no API key provided for gemini")
	}

	client, err := newClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create gemini client")
	}

	return newAdapter(client.Models, options...), nil
}

func NewFromSettings(ctx context.Context, s *settings.Settings, options ...Option) (*Adapter, error) {
	opts := []Option{
		WithModel(s.ChatModel()),
		WithTemperature(s.Chat.Temperature),
		WithMaxResponseTokens(s.Chat.MaxResponseTokens),
	}
	opts = append(opts, options...)
	return New(ctx, s.APIKey(settings.ApiTypeGemini), opts...)
}

func (a *Adapter) Model() string {
	return a.model
}

func (a *Adapter) Chat(ctx context.Context, req chat.Request) (chat.Response, error) {
	contents, config := a.buildRequest(req.History)
	if len(contents) == 0 {
		return chat.Response{}, errors.New("at least one user or bot message is required")
	}

	resp, err := a.models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		return chat.Response{}, normalizeError(err)
	}

	if resp != nil && len(resp.Candidates) == 0 && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return chat.Response{}, &chat.ProviderError{
			Provider: ProviderName,
			Code:     string(resp.PromptFeedback.BlockReason),
			Message:  "the prompt was blocked",
		}
	}

	text := extractVisibleText(resp)
	log.Debug().Str("model", a.model).Int("length", len(text)).Msg("gemini: content generated")
	if text == "" {
		return chat.Response{}, nil
	}
	return chat.Response{History: chat.Transcript{chat.NewBotMessage(text)}}, nil
}

// buildRequest moves system messages into the system instruction and maps
// bot messages to the model role. Error messages are dropped.
func (a *Adapter) buildRequest(history chat.Transcript) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := make([]*genai.Content, 0, len(history))
	var systemParts []string

	for _, m := range history {
		switch m.Type {
		case chat.MessageTypeSystem:
			if text := strings.TrimSpace(m.Text); text != "" {
				systemParts = append(systemParts, text)
			}
		case chat.MessageTypeBot:
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: m.Text}}})
		case chat.MessageTypeUser:
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{Text: m.Text}}})
		}
	}

	config := &genai.GenerateContentConfig{}
	if len(systemParts) > 0 {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: strings.Join(systemParts, "\n\n")}}}
	}
	if a.temperature != nil {
		config.Temperature = genai.Ptr(float32(*a.temperature))
	}
	if a.maxTokens != nil && *a.maxTokens > 0 {
		config.MaxOutputTokens = int32(*a.maxTokens)
	}

	return contents, config
}

func extractVisibleText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func normalizeError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &chat.ProviderError{
			Provider:   ProviderName,
			StatusCode: apiErr.Code,
			Code:       apiErr.Status,
			Message:    apiErr.Message,
			Cause:      err,
		}
	}
	return errors.Wrap(err, "gemini generate content failed")
}
