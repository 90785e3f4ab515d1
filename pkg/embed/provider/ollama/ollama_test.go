package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/go-go-golems/ragged/pkg/embed"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed(t *testing.T) {
	var got embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"embedding":[0.5,0.25,-1]}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL+"/", "", 0)
	e, err := p.Embed(context.Background(), embed.Request{Text: "hello"})
	require.NoError(t, err)

	assert.Equal(t, embeddingRequest{Model: "all-minilm", Prompt: "hello"}, got)
	assert.Equal(t, "ollama", e.Provider)
	assert.Equal(t, "all-minilm", e.Model)
	assert.Equal(t, []float32{0.5, 0.25, -1}, e.Vector)
	assert.Equal(t, 384, p.Dimensions())
}

func TestEmbedErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "status error",
			status: http.StatusNotFound,
			body:   `{"error":"model 'nomic' not found"}`,
			check: func(t *testing.T, err error) {
				var pe *chat.ProviderError
				require.True(t, errors.As(err, &pe))
				assert.Equal(t, http.StatusNotFound, pe.StatusCode)
				assert.Equal(t, "model 'nomic' not found", pe.Message)
			},
		},
		{
			name:   "empty embedding",
			status: http.StatusOK,
			body:   `{"embedding":[]}`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "no embedding data")
			},
		},
		{
			name:   "invalid json",
			status: http.StatusOK,
			body:   `not json`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "failed to decode response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewProvider(srv.URL, "nomic", 0).Embed(context.Background(), embed.Request{Text: "x"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
