package llm

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/marketpulse/pkg/perplexity"
)

const (
	defaultPerplexityModel = "sonar-pro"
	perplexityVerifyModel  = "sonar"
)

type perplexityProvider struct {
	client perplexity.Client
	model  string
}

func newPerplexityProvider(opts Options) *perplexityProvider {
	clientOpts := []perplexity.Option{perplexity.WithModel(opts.Model)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, perplexity.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, perplexity.WithHTTPClient(opts.HTTPClient))
	}
	return &perplexityProvider{
		client: perplexity.NewClient(opts.APIKey, clientOpts...),
		model:  opts.Model,
	}
}

func (p *perplexityProvider) Name() string              { return Perplexity }
func (p *perplexityProvider) SupportsWebGrounding() bool { return true }

func (p *perplexityProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := p.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model: p.model,
		Messages: []perplexity.Message{
			{Role: "system", Content: systemPrompt(true)},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm: perplexity completion")
	}

	zap.L().Debug("llm: perplexity usage",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("citations", len(resp.Citations)),
	)

	return &Completion{
		Text:         resp.Content(),
		Model:        resp.Model,
		Citations:    resp.Citations,
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
	}, nil
}

func (p *perplexityProvider) Verify(ctx context.Context) error {
	one := 1
	_, err := p.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model:     perplexityVerifyModel,
		MaxTokens: &one,
		Messages:  []perplexity.Message{{Role: "user", Content: "Hi"}},
	})
	return eris.Wrap(err, "llm: perplexity verify")
}
