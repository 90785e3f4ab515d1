// Package openai computes embeddings with the OpenAI embeddings endpoint.
package openai

import (
	"context"
	"strings"

	"github.com/go-go-golems/ragged/pkg/embed"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

const ProviderName = "openai"

type Provider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

var _ embed.Adapter = &Provider{}

type Option func(*openai.ClientConfig)

func WithBaseURL(baseURL string) Option {
	return func(c *openai.ClientConfig) {
		if baseURL != "" {
			c.BaseURL = baseURL
		}
	}
}

func NewProvider(apiKey string, model openai.EmbeddingModel, dimensions int, options ...Option) *Provider {
	if model == "" {
		model = openai.SmallEmbedding3
	}
	if dimensions <= 0 {
		dimensions = 1536
	}

	config := openai.DefaultConfig(apiKey)
	for _, o := range options {
		o(&config)
	}

	return &Provider{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		dimensions: dimensions,
	}
}

// supportsDimensionsOverride reports whether the model accepts a reduced
// output size. Older models reject the dimensions parameter.
func supportsDimensionsOverride(model openai.EmbeddingModel) bool {
	return strings.HasPrefix(string(model), "text-embedding-3")
}

func (p *Provider) newRequest(text string, model openai.EmbeddingModel) openai.EmbeddingRequest {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: model,
	}
	if supportsDimensionsOverride(model) {
		req.Dimensions = p.dimensions
	}
	return req
}

func (p *Provider) Embed(ctx context.Context, req embed.Request) (embed.Embedding, error) {
	model := p.model
	if req.Model != "" {
		model = openai.EmbeddingModel(req.Model)
	}

	resp, err := p.client.CreateEmbeddings(ctx, p.newRequest(req.Text, model))
	if err != nil {
		return embed.Embedding{}, errors.Wrap(err, "could not create openai embedding")
	}

	if len(resp.Data) == 0 {
		return embed.Embedding{}, errors.New("no embedding data received from openai")
	}
	if len(resp.Data) > 1 {
		log.Warn().Int("count", len(resp.Data)).Msg("openai returned more than one embedding, using the first")
	}

	return embed.Embedding{
		Model:    string(model),
		Provider: ProviderName,
		Vector:   resp.Data[0].Embedding,
	}, nil
}

func (p *Provider) Model() string {
	return string(p.model)
}

func (p *Provider) Dimensions() int {
	return p.dimensions
}
