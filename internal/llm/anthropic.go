package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/marketpulse/pkg/anthropic"
)

const (
	defaultAnthropicModel = anthropic.DefaultModel
	anthropicVerifyModel  = "claude-haiku-4-5-20251001"
)

type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropicProvider(opts Options) *anthropicProvider {
	var clientOpts []anthropic.Option
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(opts.BaseURL))
	}
	return &anthropicProvider{
		client: anthropic.NewClient(opts.APIKey, clientOpts...),
		model:  opts.Model,
	}
}

func (p *anthropicProvider) Name() string              { return Anthropic }
func (p *anthropicProvider) SupportsWebGrounding() bool { return false }

func (p *anthropicProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: maxOutputTokens,
		System:    anthropic.CachedSystem(systemPrompt(false)),
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm: anthropic completion")
	}

	return &Completion{
		Text:             resp.Text(),
		Model:            resp.Model,
		InputTokens:      resp.Usage.InputTokens,
		OutputTokens:     resp.Usage.OutputTokens,
		CacheWriteTokens: resp.Usage.CacheCreationInputTokens,
		CacheReadTokens:  resp.Usage.CacheReadInputTokens,
	}, nil
}

func (p *anthropicProvider) Verify(ctx context.Context) error {
	_, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     anthropicVerifyModel,
		MaxTokens: 1,
		Messages:  []anthropic.Message{{Role: "user", Content: "Hi"}},
	})
	return eris.Wrap(err, "llm: anthropic verify")
}
