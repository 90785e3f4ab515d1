// Package ollama computes embeddings with a local ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/go-go-golems/ragged/pkg/embed"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const ProviderName = "ollama"

type Provider struct {
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

var _ embed.Adapter = &Provider{}

func NewProvider(baseURL string, model string, dimensions int) *Provider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "all-minilm"
	}
	if dimensions <= 0 {
		dimensions = 384
	}

	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		dimensions: dimensions,
		client:     &http.Client{},
	}
}

func (p *Provider) Embed(ctx context.Context, req embed.Request) (embed.Embedding, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	jsonData, err := json.Marshal(embeddingRequest{Model: model, Prompt: req.Text})
	if err != nil {
		return embed.Embedding{}, errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(jsonData))
	if err != nil {
		return embed.Embedding{}, errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return embed.Embedding{}, errors.Wrap(err, "failed to send request")
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return embed.Embedding{}, errors.Wrap(err, "failed to read response")
	}

	var result embeddingResponse
	decodeErr := json.Unmarshal(body, &result)

	if resp.StatusCode != http.StatusOK {
		return embed.Embedding{}, &chat.ProviderError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Message:    result.Error,
		}
	}
	if decodeErr != nil {
		return embed.Embedding{}, errors.Wrap(decodeErr, "failed to decode response")
	}
	if len(result.Embedding) == 0 {
		return embed.Embedding{}, errors.New("no embedding data received from ollama")
	}

	vector := make([]float32, len(result.Embedding))
	for i, v := range result.Embedding {
		vector[i] = float32(v)
	}

	return embed.Embedding{
		Model:    model,
		Provider: ProviderName,
		Vector:   vector,
	}, nil
}

func (p *Provider) Model() string {
	return p.model
}

func (p *Provider) Dimensions() int {
	return p.dimensions
}
