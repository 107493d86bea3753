package tavily

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

func TestSearch(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    string
		wantStatus int
		wantCount  int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"query": "Acme latest news",
				"answer": "Acme is a broker-dealer.",
				"results": [
					{"title": "Acme ships AI", "url": "https://reuters.com/acme", "content": "Acme shipped.", "score": 0.91},
					{"title": "Acme earnings", "url": "https://cnbc.com/acme", "content": "Beat.", "score": 0.8}
				]
			}`,
			wantCount: 2,
		},
		{
			name:       "invalid_key",
			status:     http.StatusUnauthorized,
			body:       `{"detail": {"error": "Unauthorized: missing or invalid API key."}}`,
			wantErr:    "unexpected status 401",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rate_limit",
			status:     http.StatusTooManyRequests,
			body:       `{"detail": "rate limit"}`,
			wantErr:    "unexpected status 429",
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{not json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/search", r.URL.Path)
				assert.Equal(t, "Bearer tvly-key", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("tvly-key", WithBaseURL(srv.URL))
			resp, err := client.Search(context.Background(), SearchRequest{Query: "Acme latest news"})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, tt.wantStatus, resilience.HTTPStatus(err))
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Len(t, resp.Results, tt.wantCount)
			assert.Equal(t, "Acme is a broker-dealer.", resp.Answer)
			assert.Equal(t, "https://reuters.com/acme", resp.Results[0].URL)
		})
	}
}

func TestSearch_RequestDefaults(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	resp, err := client.Search(context.Background(), SearchRequest{Query: "q"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)

	assert.Equal(t, "q", got["query"])
	assert.Equal(t, DepthBasic, got["search_depth"])
	assert.Equal(t, float64(defaultMaxResults), got["max_results"])
	assert.NotContains(t, got, "include_answer")
}

func TestSearch_AdvancedWithAnswer(t *testing.T) {
	var got SearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), SearchRequest{
		Query:         "Acme company overview",
		SearchDepth:   DepthAdvanced,
		MaxResults:    10,
		IncludeAnswer: true,
	})
	require.NoError(t, err)
	assert.Equal(t, DepthAdvanced, got.SearchDepth)
	assert.Equal(t, 10, got.MaxResults)
	assert.True(t, got.IncludeAnswer)
}

func TestSearch_EmptyQuery(t *testing.T) {
	_, err := NewClient("k").Search(context.Background(), SearchRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty query")
}

func TestSearch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("k", WithBaseURL(srv.URL)).Search(ctx, SearchRequest{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send request")
}
