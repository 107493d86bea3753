package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/marketpulse/internal/llm"
	"github.com/sells-group/marketpulse/internal/resilience"
	"github.com/sells-group/marketpulse/internal/websearch"
)

// Verification is the outcome of a key check.
type Verification struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// VerifyKey checks an LLM provider key with the provider's cheapest
// request. Anthropic and Perplexity keys that hit a rate limit still
// count as valid.
func (s *Service) VerifyKey(ctx context.Context, provider, apiKey string) Verification {
	name := strings.ToLower(strings.TrimSpace(provider))
	apiKey = strings.TrimSpace(apiKey)
	if name == "" || apiKey == "" {
		return Verification{Error: "Provider and API key are required"}
	}
	p, err := s.newProvider(name, llm.Options{APIKey: apiKey})
	if err != nil {
		return Verification{Error: "Invalid provider"}
	}

	err = p.Verify(ctx)
	if err == nil {
		return Verification{Valid: true}
	}
	status := resilience.HTTPStatus(err)
	if status == http.StatusTooManyRequests && (name == llm.Anthropic || name == llm.Perplexity) {
		return Verification{Valid: true}
	}
	zap.L().Debug("analysis: key verification failed", zap.String("provider", name), zap.Error(err))
	if status == 0 {
		return Verification{Error: "Connection failed"}
	}
	return Verification{Error: apiErrorMessage(err, "Invalid API key")}
}

// VerifyWebSearch checks a Tavily or Jina key with a one-result search.
func (s *Service) VerifyWebSearch(ctx context.Context, provider, apiKey string) Verification {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return Verification{Error: "API key is required"}
	}

	var keys websearch.Keys
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "tavily":
		keys.Tavily = apiKey
	case "jina":
		keys.Jina = apiKey
	default:
		return Verification{Error: "Invalid provider"}
	}

	searcher, err := s.newSearcher(keys)
	if err != nil {
		return Verification{Error: "Invalid provider"}
	}
	_, err = searcher.Search(ctx, websearch.Query{Category: websearch.CategoryInfo, Text: "test", MaxResults: 1})
	if err == nil {
		return Verification{Valid: true}
	}

	switch status := resilience.HTTPStatus(err); status {
	case 0:
		return Verification{Error: "Connection failed - please check your network"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Verification{Error: "Invalid API key"}
	case http.StatusTooManyRequests:
		return Verification{Error: "Rate limit exceeded"}
	default:
		return Verification{Error: apiErrorMessage(err, fmt.Sprintf("Error: %d", status))}
	}
}

// apiErrorMessage pulls a vendor's error message out of a StatusError
// body, accepting {"error":{"message"}}, {"error":"..."} and
// {"message"} shapes.
func apiErrorMessage(err error, fallback string) string {
	var se *resilience.StatusError
	if !errors.As(err, &se) {
		return fallback
	}
	var body struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal([]byte(se.Body), &body) != nil {
		return fallback
	}
	if len(body.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if json.Unmarshal(body.Error, &flat) == nil && flat != "" {
			return flat
		}
	}
	if body.Message != "" {
		return body.Message
	}
	return fallback
}
