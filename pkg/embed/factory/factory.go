// Package factory builds embedding adapters from settings.
package factory

import (
	"github.com/go-go-golems/ragged/pkg/embed"
	embedollama "github.com/go-go-golems/ragged/pkg/embed/provider/ollama"
	embedopenai "github.com/go-go-golems/ragged/pkg/embed/provider/openai"
	"github.com/go-go-golems/ragged/pkg/settings"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

type ProviderOption func(*providerOptions)

type providerOptions struct {
	apiType    settings.ApiType
	model      string
	baseURL    string
	apiKey     string
	dimensions int
}

func WithApiType(t settings.ApiType) ProviderOption {
	return func(o *providerOptions) {
		o.apiType = t
	}
}

func WithModel(m string) ProviderOption {
	return func(o *providerOptions) {
		o.model = m
	}
}

func WithBaseURL(url string) ProviderOption {
	return func(o *providerOptions) {
		o.baseURL = url
	}
}

func WithAPIKey(key string) ProviderOption {
	return func(o *providerOptions) {
		o.apiKey = key
	}
}

func WithDimensions(d int) ProviderOption {
	return func(o *providerOptions) {
		o.dimensions = d
	}
}

// Factory creates embedding adapters from the embeddings and api sections
// of the settings.
type Factory struct {
	settings *settings.Settings
}

func NewFactory(s *settings.Settings) *Factory {
	return &Factory{settings: s}
}

// NewAdapter creates the configured adapter. When cache_size is positive the
// adapter is wrapped in an LRU cache of that size.
func (f *Factory) NewAdapter(opts ...ProviderOption) (embed.Adapter, error) {
	if f.settings == nil || f.settings.Embeddings == nil {
		return nil, errors.New("no embeddings configuration provided")
	}

	es := f.settings.Embeddings
	options := &providerOptions{
		apiType:    es.ApiType,
		model:      es.Model,
		dimensions: es.Dimensions,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.apiType == "" {
		return nil, errors.New("no embeddings type specified")
	}
	if options.baseURL == "" {
		options.baseURL = f.settings.BaseURL(options.apiType)
	}

	var adapter embed.Adapter
	switch options.apiType {
	case settings.ApiTypeOllama:
		adapter = embedollama.NewProvider(options.baseURL, options.model, options.dimensions)

	case settings.ApiTypeOpenAI:
		apiKey := options.apiKey
		if apiKey == "" {
			apiKey = f.settings.APIKey(settings.ApiTypeOpenAI)
		}
		if apiKey == "" {
			return nil, errors.New("no API key provided for openai")
		}
		adapter = embedopenai.NewProvider(
			apiKey,
			openai.EmbeddingModel(options.model),
			options.dimensions,
			embedopenai.WithBaseURL(options.baseURL),
		)

	default:
		return nil, errors.Errorf("unsupported provider type for embeddings: %s", options.apiType)
	}

	if es.CacheSize > 0 {
		return embed.NewCachedAdapter(adapter, es.CacheSize), nil
	}
	return adapter, nil
}
