// Package openai implements chat.Adapter on top of the OpenAI chat
// completions API, including the tool calling loop.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/go-go-golems/ragged/pkg/settings"
	"github.com/go-go-golems/ragged/pkg/tokens"
	"github.com/go-go-golems/ragged/pkg/tools"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

const (
	ProviderName         = "openai"
	DefaultModel         = "gpt-4o-mini"
	DefaultMaxIterations = 10
)

type Adapter struct {
	client        *go_openai.Client
	model         string
	temperature   *float64
	maxTokens     *int
	maxIterations int
	tools         *tools.Registry
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

// WithTemperature sets the sampling temperature. The client omits a zero
// temperature from the request, so 0 falls back to the API default of 1.
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

// WithMaxIterations caps the number of completion requests a single call may
// make while the model keeps asking for tools.
func WithMaxIterations(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithTools exposes the tools of r to the model.
func WithTools(r *tools.Registry) Option {
	return func(a *Adapter) {
		a.tools = r
	}
}

func NewClient(apiKey string, baseURL string) *go_openai.Client {
	config := go_openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return go_openai.NewClientWithConfig(config)
}

func New(client *go_openai.Client, options ...Option) *Adapter {
	ret := &Adapter{
		client:        client,
		model:         DefaultModel,
		maxIterations: DefaultMaxIterations,
	}
	for _, o := range options {
		o(ret)
	}
	if ret.temperature != nil && *ret.temperature == 0 {
		log.Warn().
			Str("model", ret.model).
			Msg("openai: temperature 0 is not sent to the API, the default temperature applies")
	}
	return ret
}

// NewFromSettings creates an adapter from the chat and api sections of s.
// Extra options are applied after the settings.
func NewFromSettings(s *settings.Settings, options ...Option) (*Adapter, error) {
	apiKey := s.APIKey(settings.ApiTypeOpenAI)
	if apiKey == "" {
		return nil, errors.New("no API key provided for openai")
	}

	opts := []Option{
		WithModel(s.ChatModel()),
		WithTemperature(s.Chat.Temperature),
		WithMaxResponseTokens(s.Chat.MaxResponseTokens),
		WithMaxIterations(s.Chat.MaxIterations),
	}
	opts = append(opts, options...)

	return New(NewClient(apiKey, s.BaseURL(settings.ApiTypeOpenAI)), opts...), nil
}

func (a *Adapter) Model() string {
	return a.model
}

func (a *Adapter) Chat(ctx context.Context, req chat.Request) (chat.Response, error) {
	messages := toOpenAIMessages(req.History)
	toolDefs, err := a.toolDefinitions()
	if err != nil {
		return chat.Response{}, err
	}

	a.logPromptTokens(req.History)

	var out chat.Transcript
	for i := 0; i < a.maxIterations; i++ {
		resp, err := a.client.CreateChatCompletion(ctx, a.newRequest(messages, toolDefs))
		if err != nil {
			return chat.Response{}, normalizeError(err)
		}
		if len(resp.Choices) == 0 {
			return chat.Response{}, &chat.ProviderError{
				Provider: ProviderName,
				Message:  "no choices returned",
			}
		}

		msg := resp.Choices[0].Message
		if msg.Content != "" {
			out = append(out, chat.NewBotMessage(msg.Content))
		}

		log.Debug().
			Int("iteration", i).
			Int("tool_calls", len(msg.ToolCalls)).
			Str("finish_reason", string(resp.Choices[0].FinishReason)).
			Int("prompt_tokens", resp.Usage.PromptTokens).
			Int("completion_tokens", resp.Usage.CompletionTokens).
			Msg("openai: completion received")

		if len(msg.ToolCalls) == 0 || a.tools == nil {
			return chat.Response{History: out}, nil
		}

		messages = append(messages, go_openai.ChatCompletionMessage{
			Role:      go_openai.ChatMessageRoleAssistant,
			Content:   msg.Content,
			ToolCalls: msg.ToolCalls,
		})
		for _, call := range msg.ToolCalls {
			result := a.tools.Execute(ctx, call.Function.Name, call.Function.Arguments)
			messages = append(messages, go_openai.ChatCompletionMessage{
				Role:       go_openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	return chat.Response{}, errors.Errorf("the model did not finish within %d tool iterations", a.maxIterations)
}

func (a *Adapter) newRequest(messages []go_openai.ChatCompletionMessage, toolDefs []go_openai.Tool) go_openai.ChatCompletionRequest {
	req := go_openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
		Tools:    toolDefs,
	}
	if a.temperature != nil {
		req.Temperature = float32(*a.temperature)
	}
	if a.maxTokens != nil {
		req.MaxTokens = *a.maxTokens
	}
	return req
}

func (a *Adapter) toolDefinitions() ([]go_openai.Tool, error) {
	if a.tools == nil || a.tools.Len() == 0 {
		return nil, nil
	}

	var ret []go_openai.Tool
	for _, t := range a.tools.List() {
		schema, err := t.SchemaJSON()
		if err != nil {
			return nil, errors.Wrapf(err, "could not build schema for tool %s", t.ID)
		}
		ret = append(ret, go_openai.Tool{
			Type: go_openai.ToolTypeFunction,
			Function: &go_openai.FunctionDefinition{
				Name:        t.ID,
				Description: t.Description,
				Parameters:  schema,
			},
		})
	}
	return ret, nil
}

func (a *Adapter) logPromptTokens(history chat.Transcript) {
	e := log.Debug()
	if !e.Enabled() {
		return
	}
	counter, err := tokens.NewCounter(a.model)
	if err != nil {
		e.Err(err).Msg("openai: could not count prompt tokens")
		return
	}
	n, err := counter.CountTranscript(history)
	if err != nil {
		e.Err(err).Msg("openai: could not count prompt tokens")
		return
	}
	e.Str("model", a.model).Int("estimated_prompt_tokens", n).Msg("openai: sending completion request")
}

// toOpenAIMessages converts the transcript to OpenAI roles. Error messages
// only exist on our side and are not sent.
func toOpenAIMessages(history chat.Transcript) []go_openai.ChatCompletionMessage {
	ret := make([]go_openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		var role string
		switch m.Type {
		case chat.MessageTypeUser:
			role = go_openai.ChatMessageRoleUser
		case chat.MessageTypeBot:
			role = go_openai.ChatMessageRoleAssistant
		case chat.MessageTypeSystem:
			role = go_openai.ChatMessageRoleSystem
		case chat.MessageTypeError:
			continue
		default:
			log.Debug().Str("type", string(m.Type)).Msg("openai: skipping message of unknown type")
			continue
		}
		ret = append(ret, go_openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	return ret
}

func normalizeError(err error) error {
	var apiErr *go_openai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.Code != nil {
			code = fmt.Sprint(apiErr.Code)
		}
		return &chat.ProviderError{
			Provider:   ProviderName,
			StatusCode: apiErr.HTTPStatusCode,
			Code:       code,
			Message:    apiErr.Message,
			Cause:      err,
		}
	}

	var reqErr *go_openai.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &chat.ProviderError{
			Provider:   ProviderName,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    msg,
			Cause:      err,
		}
	}

	return errors.Wrap(err, "openai chat completion failed")
}
