// Package llm wraps the chat-model vendors that can write a tagged
// company analysis behind one Provider interface.
package llm

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Provider names accepted by New.
const (
	Anthropic  = "anthropic"
	Gemini     = "gemini"
	OpenAI     = "openai"
	Perplexity = "perplexity"
)

// defaultTimeout bounds one analysis call.
const defaultTimeout = 120 * time.Second

// maxOutputTokens caps the analysis response length.
const maxOutputTokens = 4000

// Provider produces a raw tagged analysis for a prompt.
type Provider interface {
	Name() string
	// SupportsWebGrounding reports whether the model searches the web on
	// its own, in which case no separate web search is needed.
	SupportsWebGrounding() bool
	Complete(ctx context.Context, prompt string) (*Completion, error)
	// Verify issues the cheapest request that proves the key works.
	Verify(ctx context.Context) error
}

// Completion is a provider response.
type Completion struct {
	Text  string
	Model string
	// Citations are source URLs reported by grounded providers.
	Citations    []string
	InputTokens  int64
	OutputTokens int64
	// Prompt-cache token counts, reported by anthropic only.
	CacheWriteTokens int64
	CacheReadTokens  int64
}

// Options configures a provider.
type Options struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the vendor API host.
	BaseURL    string
	HTTPClient *http.Client
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultTimeout
}

// ErrUnknownProvider is returned by New for unsupported names.
var ErrUnknownProvider = eris.New("llm: unknown provider")

// Names returns the supported provider names in sorted order.
func Names() []string {
	return []string{Anthropic, Gemini, OpenAI, Perplexity}
}

// Valid reports whether name is a supported provider.
func Valid(name string) bool {
	return slices.Contains(Names(), strings.ToLower(strings.TrimSpace(name)))
}

// DefaultModel returns the model used when none is configured, or "".
func DefaultModel(name string) string {
	switch name {
	case Anthropic:
		return defaultAnthropicModel
	case Gemini:
		return defaultGeminiModel
	case OpenAI:
		return defaultOpenAIModel
	case Perplexity:
		return defaultPerplexityModel
	}
	return ""
}

// New builds the named provider.
func New(name string, opts Options) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !Valid(name) {
		return nil, eris.Wrapf(ErrUnknownProvider, "provider %q", name)
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, eris.Errorf("llm: %s api key is required", name)
	}
	if opts.Model == "" {
		opts.Model = DefaultModel(name)
	}

	switch name {
	case Anthropic:
		return newAnthropicProvider(opts), nil
	case Gemini:
		return newGeminiProvider(opts), nil
	case OpenAI:
		return newOpenAIProvider(opts), nil
	default:
		return newPerplexityProvider(opts), nil
	}
}
