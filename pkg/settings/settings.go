package settings

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type ApiType string

const (
	ApiTypeOpenAI ApiType = "openai"
	ApiTypeGemini ApiType = "gemini"
	ApiTypeOllama ApiType = "ollama"
)

var DefaultBaseURLs = map[ApiType]string{
	ApiTypeOpenAI: "https://api.openai.com/v1",
	ApiTypeOllama: "http://localhost:11434",
}

var DefaultModels = map[ApiType]string{
	ApiTypeOpenAI: "gpt-4o-mini",
	ApiTypeGemini: "gemini-2.0-flash",
	ApiTypeOllama: "llama3",
}

// envAPIKeys are consulted when no key was configured for a provider.
var envAPIKeys = map[ApiType]string{
	ApiTypeOpenAI: "OPENAI_API_KEY",
	ApiTypeGemini: "GEMINI_API_KEY",
}

type ChatSettings struct {
	ApiType           ApiType       `yaml:"api_type" mapstructure:"api_type"`
	Model             string        `yaml:"model,omitempty" mapstructure:"model"`
	Temperature       *float64      `yaml:"temperature,omitempty" mapstructure:"temperature"`
	MaxResponseTokens *int          `yaml:"max_response_tokens,omitempty" mapstructure:"max_response_tokens"`
	MaxIterations     int           `yaml:"max_iterations,omitempty" mapstructure:"max_iterations"`
	Timeout           time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

type EmbeddingsSettings struct {
	ApiType     ApiType `yaml:"api_type" mapstructure:"api_type"`
	Model       string  `yaml:"model,omitempty" mapstructure:"model"`
	Dimensions  int     `yaml:"dimensions,omitempty" mapstructure:"dimensions"`
	CacheSize   int     `yaml:"cache_size,omitempty" mapstructure:"cache_size"`
	Concurrency int     `yaml:"concurrency,omitempty" mapstructure:"concurrency"`
}

type APISettings struct {
	APIKeys  map[ApiType]string `yaml:"api_keys,omitempty" mapstructure:"api_keys"`
	BaseURLs map[ApiType]string `yaml:"base_urls,omitempty" mapstructure:"base_urls"`
}

type Settings struct {
	Chat       *ChatSettings       `yaml:"chat" mapstructure:"chat"`
	Embeddings *EmbeddingsSettings `yaml:"embeddings" mapstructure:"embeddings"`
	API        *APISettings        `yaml:"api" mapstructure:"api"`
}

func NewSettings() *Settings {
	return &Settings{
		Chat: &ChatSettings{
			ApiType:       ApiTypeOpenAI,
			MaxIterations: 10,
			Timeout:       60 * time.Second,
		},
		Embeddings: &EmbeddingsSettings{
			ApiType:     ApiTypeOpenAI,
			Model:       "text-embedding-3-small",
			Dimensions:  1536,
			Concurrency: 4,
		},
		API: &APISettings{
			APIKeys:  map[ApiType]string{},
			BaseURLs: map[ApiType]string{},
		},
	}
}

func (s *Settings) Clone() *Settings {
	return clone.Clone(s).(*Settings)
}

// LoadFromYAML overlays the YAML document read from r onto the defaults.
func LoadFromYAML(r io.Reader) (*Settings, error) {
	s := NewSettings()
	if err := yaml.NewDecoder(r).Decode(s); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "could not decode settings")
	}
	s.fillMaps()
	return s, nil
}

// FromViper reads the settings from the "chat", "embeddings" and "api" keys
// of v, on top of the defaults.
func FromViper(v *viper.Viper) (*Settings, error) {
	s := NewSettings()
	if err := v.Unmarshal(s); err != nil {
		return nil, errors.Wrap(err, "could not read settings from config")
	}
	s.fillMaps()
	return s, nil
}

func (s *Settings) fillMaps() {
	if s.Chat == nil {
		s.Chat = NewSettings().Chat
	}
	if s.Embeddings == nil {
		s.Embeddings = NewSettings().Embeddings
	}
	if s.API == nil {
		s.API = &APISettings{}
	}
	if s.API.APIKeys == nil {
		s.API.APIKeys = map[ApiType]string{}
	}
	if s.API.BaseURLs == nil {
		s.API.BaseURLs = map[ApiType]string{}
	}
}

// APIKey returns the configured key for apiType, falling back to the
// provider's conventional environment variable.
func (s *Settings) APIKey(apiType ApiType) string {
	if s.API != nil {
		if key := strings.TrimSpace(s.API.APIKeys[apiType]); key != "" {
			return key
		}
	}
	if env, ok := envAPIKeys[apiType]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}

func (s *Settings) BaseURL(apiType ApiType) string {
	if s.API != nil {
		if u := strings.TrimSpace(s.API.BaseURLs[apiType]); u != "" {
			return u
		}
	}
	return DefaultBaseURLs[apiType]
}

// ChatModel returns the configured chat model or the provider default.
func (s *Settings) ChatModel() string {
	if s.Chat.Model != "" {
		return s.Chat.Model
	}
	return DefaultModels[s.Chat.ApiType]
}

func (s *Settings) Validate() error {
	if s.Chat == nil || s.Embeddings == nil || s.API == nil {
		return errors.New("settings are incomplete")
	}
	if !isKnown(s.Chat.ApiType) {
		return errors.Errorf("unsupported chat api type %q", s.Chat.ApiType)
	}
	if !isKnown(s.Embeddings.ApiType) || s.Embeddings.ApiType == ApiTypeGemini {
		return errors.Errorf("unsupported embeddings api type %q", s.Embeddings.ApiType)
	}
	if s.Chat.MaxIterations < 0 {
		return errors.New("max_iterations must not be negative")
	}
	if s.Chat.Temperature != nil && (*s.Chat.Temperature < 0 || *s.Chat.Temperature > 2) {
		return errors.Errorf("temperature %v is out of range [0, 2]", *s.Chat.Temperature)
	}
	if s.Embeddings.CacheSize < 0 {
		return errors.New("cache_size must not be negative")
	}
	return nil
}

// Redacted returns a copy whose API keys are masked, suitable for printing.
func (s *Settings) Redacted() *Settings {
	ret := s.Clone()
	if ret.API == nil {
		return ret
	}
	for k, v := range ret.API.APIKeys {
		ret.API.APIKeys[k] = mask(v)
	}
	return ret
}

func mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

func isKnown(t ApiType) bool {
	switch t {
	case ApiTypeOpenAI, ApiTypeGemini, ApiTypeOllama:
		return true
	default:
		return false
	}
}
