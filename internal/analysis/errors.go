package analysis

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/marketpulse/internal/resilience"
)

// Request validation failures. Their messages are shown to API callers.
var (
	ErrCompanyRequired = eris.New("Company name is required")
	ErrInvalidProvider = eris.New("Valid provider is required (openai, anthropic, gemini, or perplexity)")
	ErrAPIKeyRequired  = eris.New("API key is required")
)

// Classified provider failures.
var (
	ErrInvalidKey  = eris.New("Invalid API key. Please check your credentials.")
	ErrRateLimited = eris.New("Rate limit exceeded. Please try again later.")
)

// classify maps a provider error onto ErrInvalidKey or ErrRateLimited
// when the status code or message identifies one, and wraps it otherwise.
func classify(err error) error {
	status := resilience.HTTPStatus(err)
	msg := err.Error()
	switch {
	case status == http.StatusUnauthorized,
		strings.Contains(msg, "401"),
		strings.Contains(msg, "Unauthorized"),
		strings.Contains(msg, "invalid_api_key"):
		return eris.Wrap(ErrInvalidKey, msg)
	case status == http.StatusTooManyRequests,
		strings.Contains(msg, "429"),
		strings.Contains(strings.ToLower(msg), "rate limit"):
		return eris.Wrap(ErrRateLimited, msg)
	default:
		return eris.Wrap(err, "analysis: provider request failed")
	}
}

// StatusCode returns the HTTP status an API handler should answer with
// for an Analyze error.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrCompanyRequired), errors.Is(err, ErrInvalidProvider):
		return http.StatusBadRequest
	case errors.Is(err, ErrAPIKeyRequired), errors.Is(err, ErrInvalidKey):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-facing text for an Analyze error. Unknown
// failures surface the underlying vendor message.
func Message(err error) string {
	for _, known := range []error{ErrCompanyRequired, ErrInvalidProvider, ErrAPIKeyRequired, ErrInvalidKey, ErrRateLimited} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return eris.Cause(err).Error()
}
