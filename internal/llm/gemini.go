package llm

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"

	"github.com/sells-group/marketpulse/internal/resilience"
)

const defaultGeminiModel = "gemini-2.5-flash"

type geminiProvider struct {
	opts Options
}

func newGeminiProvider(opts Options) *geminiProvider {
	return &geminiProvider{opts: opts}
}

func (p *geminiProvider) Name() string              { return Gemini }
func (p *geminiProvider) SupportsWebGrounding() bool { return true }

func (p *geminiProvider) client(ctx context.Context) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:     p.opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.opts.HTTPClient,
	}
	if p.opts.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = p.opts.BaseURL
	}
	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "llm: create gemini client")
	}
	return c, nil
}

func (p *geminiProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	c, err := p.client(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout())
	defer cancel()

	result, err := c.Models.GenerateContent(ctx, p.opts.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt(true)}}},
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return nil, eris.Wrap(geminiError(err), "llm: gemini completion")
	}

	out := &Completion{
		Text:      result.Text(),
		Model:     p.opts.Model,
		Citations: groundingURLs(result),
	}
	if u := result.UsageMetadata; u != nil {
		out.InputTokens = int64(u.PromptTokenCount)
		out.OutputTokens = int64(u.CandidatesTokenCount)
	}
	return out, nil
}

func (p *geminiProvider) Verify(ctx context.Context) error {
	c, err := p.client(ctx)
	if err != nil {
		return err
	}
	_, err = c.Models.GenerateContent(ctx, p.opts.Model, genai.Text("Hi"), &genai.GenerateContentConfig{
		MaxOutputTokens: 1,
	})
	if err != nil {
		return eris.Wrap(geminiError(err), "llm: gemini verify")
	}
	return nil
}

// groundingURLs returns the web sources Google Search grounding attached
// to the first candidate.
func groundingURLs(resp *genai.GenerateContentResponse) []string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var urls []string
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk != nil && chunk.Web != nil && chunk.Web.URI != "" {
			urls = append(urls, chunk.Web.URI)
		}
	}
	return urls
}

// geminiError maps SDK API errors onto resilience.StatusError so callers
// can classify them by HTTP status.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return resilience.NewStatusError("gemini", apiErr.Code, []byte(apiErr.Message))
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return resilience.NewStatusError("gemini", apiErrPtr.Code, []byte(apiErrPtr.Message))
	}
	return err
}
