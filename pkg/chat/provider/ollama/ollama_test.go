package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/go-go-golems/ragged/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Options map[string]interface{} `json:"options"`
}

func newTestAdapter(t *testing.T, handler http.HandlerFunc, options ...Option) *Adapter {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("OLLAMA_HOST", "")

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	return New(client, options...)
}

func TestChatStreamsIntoOneMessage(t *testing.T) {
	var got chatRequest
	temp := 0.1
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(
			`{"model":"mistral","message":{"role":"assistant","content":"Hel"},"done":false}` + "\n" +
				`{"model":"mistral","message":{"role":"assistant","content":"lo!"},"done":false}` + "\n" +
				`{"model":"mistral","done":true,"eval_count":2}` + "\n"))
	}, WithModel("mistral"), WithTemperature(&temp))

	resp, err := a.Chat(context.Background(), chat.Request{History: chat.Transcript{
		chat.NewSystemMessage("sys"),
		chat.NewUserMessage("hi"),
		chat.NewErrorMessage("nope"),
		chat.NewBotMessage("yo"),
		chat.NewUserMessage("again"),
	}})
	require.NoError(t, err)
	assert.Equal(t, chat.Transcript{chat.NewBotMessage("Hello!")}, resp.History)

	assert.Equal(t, "mistral", got.Model)
	roles := []string{}
	for _, m := range got.Messages {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles)
	assert.InDelta(t, 0.1, got.Options["temperature"], 1e-9)
}

func TestChatStatusError(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'llama3' not found, try pulling it first"}`))
	})

	_, err := a.Chat(context.Background(), chat.Request{History: chat.Transcript{chat.NewUserMessage("hi")}})
	require.Error(t, err)
	pe, ok := chat.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, ProviderName, pe.Provider)
	assert.Contains(t, pe.Message, "not found")
}

func TestChatTransportErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	t.Setenv("OLLAMA_HOST", "")
	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = New(client).Chat(context.Background(), chat.Request{History: chat.Transcript{chat.NewUserMessage("hi")}})
	require.Error(t, err)
	pe, ok := chat.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, ProviderName, pe.Provider)
	assert.NotEmpty(t, pe.Message)
}

func TestNewFromSettingsUsesConfiguredModel(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")
	s := settings.NewSettings()
	s.Chat.ApiType = settings.ApiTypeOllama
	settings.DefaultModels[settings.ApiTypeOllama] = "mistral"
	t.Cleanup(func() { settings.DefaultModels[settings.ApiTypeOllama] = DefaultModel })

	a, err := NewFromSettings(s)
	require.NoError(t, err)
	assert.Equal(t, "mistral", a.Model())

	s.Chat.Model = "qwen2"
	a, err = NewFromSettings(s)
	require.NoError(t, err)
	assert.Equal(t, "qwen2", a.Model())
}

func TestNewClientRejectsInvalidURL(t *testing.T) {
	_, err := NewClient("not a url")
	require.Error(t, err)
}

func TestOptions(t *testing.T) {
	assert.Nil(t, New(nil).options())

	n := 32
	opts := New(nil, WithMaxResponseTokens(&n)).options()
	assert.Equal(t, 32, opts["num_predict"])
}
