package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-go-golems/ragged/pkg/embed"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportsDimensionsOverride(t *testing.T) {
	assert.True(t, supportsDimensionsOverride(openai.SmallEmbedding3))
	assert.True(t, supportsDimensionsOverride(openai.LargeEmbedding3))
	assert.False(t, supportsDimensionsOverride(openai.AdaEmbeddingV2))
}

func TestNewRequestDimensions(t *testing.T) {
	t.Run("text-embedding-3 includes dimensions", func(t *testing.T) {
		p := NewProvider("dummy", openai.SmallEmbedding3, 512)
		req := p.newRequest("hello", p.model)
		assert.Equal(t, openai.SmallEmbedding3, req.Model)
		assert.Equal(t, 512, req.Dimensions)
	})

	t.Run("text-embedding-ada-002 omits dimensions", func(t *testing.T) {
		p := NewProvider("dummy", openai.AdaEmbeddingV2, 1536)
		req := p.newRequest("hello", p.model)
		assert.Equal(t, 0, req.Dimensions)
	})

	t.Run("defaults", func(t *testing.T) {
		p := NewProvider("dummy", "", 0)
		assert.Equal(t, string(openai.SmallEmbedding3), p.Model())
		assert.Equal(t, 1536, p.Dimensions())
	})
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *map[string]interface{}) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestEmbed(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"object":"list","model":"text-embedding-3-small","data":[{"object":"embedding","index":0,"embedding":[0.5,-0.25]}]}`)

	p := NewProvider("key", "", 2, WithBaseURL(srv.URL))
	e, err := p.Embed(context.Background(), embed.Request{Text: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "openai", e.Provider)
	assert.Equal(t, "text-embedding-3-small", e.Model)
	assert.Equal(t, []float32{0.5, -0.25}, e.Vector)
	assert.Equal(t, []interface{}{"hello"}, (*got)["input"])
	assert.Equal(t, float64(2), (*got)["dimensions"])
}

func TestEmbedModelOverride(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"data":[{"embedding":[1]}]}`)

	p := NewProvider("key", "", 0, WithBaseURL(srv.URL))
	e, err := p.Embed(context.Background(), embed.Request{Text: "x", Model: "text-embedding-ada-002"})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-ada-002", e.Model)
	assert.Equal(t, "text-embedding-ada-002", (*got)["model"])
	_, hasDimensions := (*got)["dimensions"]
	assert.False(t, hasDimensions)
}

func TestEmbedNoData(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"data":[]}`)

	p := NewProvider("key", "", 0, WithBaseURL(srv.URL))
	_, err := p.Embed(context.Background(), embed.Request{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no embedding data")
}

func TestEmbedAPIError(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`)

	p := NewProvider("key", "", 0, WithBaseURL(srv.URL))
	_, err := p.Embed(context.Background(), embed.Request{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}
