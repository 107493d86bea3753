package llm

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rotisserie/eris"

	"github.com/sells-group/marketpulse/internal/resilience"
)

const (
	defaultOpenAIModel   = "gpt-5.2"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	openAITemperature    = 0.3
)

type openAIProvider struct {
	opts Options
}

func newOpenAIProvider(opts Options) *openAIProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultOpenAIBaseURL
	}
	return &openAIProvider{opts: opts}
}

func (p *openAIProvider) Name() string              { return OpenAI }
func (p *openAIProvider) SupportsWebGrounding() bool { return false }

// generateOptions returns the sampling options for model. GPT-5 models
// reject max_tokens and a custom temperature.
func generateOptions(modelName string) []model.Option {
	if strings.HasPrefix(modelName, "gpt-5") {
		return nil
	}
	return []model.Option{
		model.WithMaxTokens(maxOutputTokens),
		model.WithTemperature(openAITemperature),
	}
}

func (p *openAIProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	cfg := &openai.ChatModelConfig{
		BaseURL: p.opts.BaseURL,
		APIKey:  p.opts.APIKey,
		Model:   p.opts.Model,
		Timeout: p.opts.timeout(),
	}
	if p.opts.HTTPClient != nil {
		cfg.HTTPClient = p.opts.HTTPClient
	}
	cm, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "llm: create openai chat model")
	}

	resp, err := cm.Generate(ctx, []*schema.Message{
		{Role: schema.System, Content: systemPrompt(false)},
		{Role: schema.User, Content: prompt},
	}, generateOptions(p.opts.Model)...)
	if err != nil {
		return nil, eris.Wrap(err, "llm: openai completion")
	}

	out := &Completion{Text: resp.Content, Model: p.opts.Model}
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		out.InputTokens = int64(resp.ResponseMeta.Usage.PromptTokens)
		out.OutputTokens = int64(resp.ResponseMeta.Usage.CompletionTokens)
	}
	return out, nil
}

// Verify lists models, which needs a valid key but spends no tokens.
func (p *openAIProvider) Verify(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(p.opts.BaseURL, "/")+"/models", nil)
	if err != nil {
		return eris.Wrap(err, "llm: create openai verify request")
	}
	req.Header.Set("Authorization", "Bearer "+p.opts.APIKey)

	hc := p.opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: p.opts.timeout()}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return eris.Wrap(err, "llm: openai verify")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resilience.NewStatusError("openai", resp.StatusCode, body)
	}
	return nil
}
