package perplexity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/marketpulse/internal/resilience"
)

const groundedAnswer = `{
	"id": "cmpl-acme",
	"model": "sonar-pro",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "[SUMMARY]Acme Financial is a broker-dealer.[/SUMMARY]"}}],
	"usage": {"prompt_tokens": 1200, "completion_tokens": 340},
	"citations": ["https://www.reuters.com/acme-fine", "https://www.finra.org/actions/acme"]
}`

func TestChatCompletion_GroundedAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer pplx-key", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sonar-pro", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(groundedAnswer))
	}))
	defer srv.Close()

	resp, err := NewClient("pplx-key", WithBaseURL(srv.URL)).ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{
			{Role: "system", Content: "You are a financial-services research analyst."},
			{Role: "user", Content: `Analyze "Acme Financial"`},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "cmpl-acme", resp.ID)
	assert.Contains(t, resp.Content(), "[SUMMARY]")
	assert.Equal(t, 1200, resp.Usage.PromptTokens)
	assert.Equal(t, 340, resp.Usage.CompletionTokens)
	assert.Equal(t, []string{"https://www.reuters.com/acme-fine", "https://www.finra.org/actions/acme"}, resp.Citations)
}

func TestChatCompletion_NoCitations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"1","model":"sonar","choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	resp, err := NewClient("k", WithBaseURL(srv.URL)).ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "Hi"}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Citations)
	assert.Equal(t, "ok", resp.Content())
}

func TestChatCompletion_StatusErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantTransient bool
	}{
		{"invalid key", http.StatusUnauthorized, `{"error":"invalid api key"}`, false},
		{"forbidden", http.StatusForbidden, `{"error":"account suspended"}`, false},
		{"bad request", http.StatusBadRequest, `{"error":"unknown model"}`, false},
		{"rate limited", http.StatusTooManyRequests, `{"error":"rate limit exceeded"}`, true},
		{"server error", http.StatusInternalServerError, `{"error":"internal"}`, true},
		{"bad gateway", http.StatusBadGateway, `<html>bad gateway</html>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := NewClient("k", WithBaseURL(srv.URL)).ChatCompletion(context.Background(), ChatCompletionRequest{
				Messages: []Message{{Role: "user", Content: "Hi"}},
			})
			require.Error(t, err)
			assert.Nil(t, resp)

			var se *resilience.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "perplexity", se.Service)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.body, se.Body)
			assert.Equal(t, tt.wantTransient, resilience.IsTransient(err))
		})
	}
}

func TestChatCompletion_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{invalid json`))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "Hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal response")
	assert.Zero(t, resilience.HTTPStatus(err))
}

func TestChatCompletion_Model(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		reqModel  string
		wantModel string
	}{
		{name: "client default", wantModel: "sonar-pro"},
		{name: "configured model", opts: []Option{WithModel("sonar")}, wantModel: "sonar"},
		{name: "request wins", opts: []Option{WithModel("sonar")}, reqModel: "sonar-reasoning", wantModel: "sonar-reasoning"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req ChatCompletionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, tt.wantModel, req.Model)
				_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
			}))
			defer srv.Close()

			opts := append([]Option{WithBaseURL(srv.URL)}, tt.opts...)
			_, err := NewClient("k", opts...).ChatCompletion(context.Background(), ChatCompletionRequest{
				Model:    tt.reqModel,
				Messages: []Message{{Role: "user", Content: "Hi"}},
			})
			require.NoError(t, err)
		})
	}
}

func TestChatCompletion_VerifyRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var raw map[string]any
		require.NoError(t, json.Unmarshal(body, &raw))

		assert.EqualValues(t, 1, raw["max_tokens"])
		_, hasRecency := raw["search_recency_filter"]
		assert.False(t, hasRecency)
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	one := 1
	_, err := NewClient("k", WithBaseURL(srv.URL)).ChatCompletion(context.Background(), ChatCompletionRequest{
		Model:     "sonar",
		MaxTokens: &one,
		Messages:  []Message{{Role: "user", Content: "Hi"}},
	})
	require.NoError(t, err)
}

func TestChatCompletion_OmitsUnsetMaxTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, has := raw["max_tokens"]
		assert.False(t, has)
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "Hi"}},
	})
	require.NoError(t, err)
}

func TestChatCompletion_RecencyFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "year", req.SearchRecencyFilter)
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages:            []Message{{Role: "user", Content: "Hi"}},
		SearchRecencyFilter: "year",
	})
	require.NoError(t, err)
}

func TestChatCompletion_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("k", WithBaseURL(srv.URL)).ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "Hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send request")
}

func TestNewClient_Options(t *testing.T) {
	custom := &http.Client{}
	hc := NewClient("pplx-key", WithHTTPClient(custom)).(*httpClient)
	assert.Same(t, custom, hc.http)

	hc = NewClient("pplx-key").(*httpClient)
	assert.Equal(t, defaultBaseURL, hc.baseURL)
	assert.Equal(t, defaultModel, hc.model)
	assert.NotNil(t, hc.http.Transport)
}

func TestContent_Empty(t *testing.T) {
	var nilResp *ChatCompletionResponse
	assert.Equal(t, "", nilResp.Content())
	assert.Equal(t, "", (&ChatCompletionResponse{}).Content())
}
