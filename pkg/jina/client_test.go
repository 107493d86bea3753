package jina

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/marketpulse/internal/resilience"
)

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/Acme case study", r.URL.Path)
		assert.Equal(t, "Bearer jina-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		assert.Equal(t, "aws.amazon.com", r.URL.Query().Get("site"))
		_, _ = w.Write([]byte(`{"code":200,"data":[
			{"title":"Acme on AWS","url":"https://aws.amazon.com/acme","description":"Grid compute","content":"long"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient("jina-key", WithSearchBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	resp, err := client.Search(context.Background(), "Acme case study", WithCount(5), WithSiteFilter("aws.amazon.com"))

	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Acme on AWS", resp.Data[0].Title)
	assert.Equal(t, "Grid compute", resp.Data[0].Description)
}

func TestSearch_NoParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"code":200,"data":[]}`))
	}))
	defer srv.Close()

	resp, err := NewClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "acme")
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}

func TestSearch_NoResults422(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	resp, err := NewClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Empty(t, resp.Data)
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantErr       string
		wantTransient bool
	}{
		{"unauthorized", http.StatusUnauthorized, "invalid token", "unexpected status 401", false},
		{"rate_limited", http.StatusTooManyRequests, "slow down", "unexpected status 429", true},
		{"unavailable", http.StatusServiceUnavailable, "down", "unexpected status 503", true},
		{"bad_json", http.StatusOK, "{", "unmarshal search response", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "acme")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.wantTransient, resilience.IsTransient(err))
		})
	}
}
