// Package llm talks to the chat model that proposes categorization plans.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"organizer-api/internal/models"
)

var (
	ErrMissingAPIKey   = errors.New("llm: api key is not configured")
	ErrMissingBaseURL  = errors.New("llm: custom provider requires a base URL")
	ErrUnknownProvider = errors.New("llm: unknown provider")
	ErrEmptyResponse   = errors.New("llm: empty response from model")
	ErrUnavailable     = errors.New("llm: upstream temporarily unavailable")
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultModel         = "gpt-4o"
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultTemperature   = 0.2
)

// Request is a single system + user prompt exchange.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Response struct {
	Content string
	Model   string
	Usage   *Usage
}

// Categorizer sends a prompt and returns the model's raw text.
type Categorizer interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Options select and configure a provider.
type Options struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// OptionsFromSettings maps user settings onto client options.
func OptionsFromSettings(s models.Settings, timeout time.Duration) Options {
	return Options{
		Provider: s.Provider,
		APIKey:   s.APIKey,
		BaseURL:  s.BaseURL,
		Model:    s.Model,
		Timeout:  timeout,
	}
}

// ResolvedModel returns the model that will be used for these options.
func (o Options) ResolvedModel() string {
	if o.Model != "" {
		return o.Model
	}
	if normalizeProvider(o.Provider) == models.ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultModel
}

// New builds a Categorizer for the configured provider.
func New(ctx context.Context, opts Options) (Categorizer, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	switch normalizeProvider(opts.Provider) {
	case models.ProviderOpenAI:
		base := opts.BaseURL
		if base == "" {
			base = DefaultOpenAIBaseURL
		}
		return NewOpenAIClient(base, opts.APIKey, opts.ResolvedModel(), opts.Timeout), nil
	case models.ProviderCustom:
		if opts.BaseURL == "" {
			return nil, ErrMissingBaseURL
		}
		return NewOpenAIClient(opts.BaseURL, opts.APIKey, opts.ResolvedModel(), opts.Timeout), nil
	case models.ProviderGemini:
		return NewGeminiClient(ctx, opts.APIKey, opts.BaseURL, opts.ResolvedModel(), opts.Timeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
}

func normalizeProvider(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return models.ProviderOpenAI
	}
	return p
}
