package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/marketpulse/internal/model"
	"github.com/sells-group/marketpulse/pkg/jina"
	"github.com/sells-group/marketpulse/pkg/tavily"
)

func TestCompanyQueries(t *testing.T) {
	qs := CompanyQueries("  Acme Corp ", false)
	require.Len(t, qs, 4)

	cats := make([]Category, 0, len(qs))
	for _, q := range qs {
		cats = append(cats, q.Category)
		assert.Contains(t, q.Text, "Acme Corp ")
		assert.NotContains(t, q.Text, "  Acme")
	}
	assert.Equal(t, []Category{CategoryNews, CategoryCaseStudies, CategoryInfo, CategoryInvestorDocs}, cats)
	assert.Equal(t, 10, qs[0].MaxResults)
	assert.True(t, qs[2].Advanced)
	assert.True(t, qs[2].IncludeAnswer)

	withLeaders := CompanyQueries("Acme Corp", true)
	require.Len(t, withLeaders, 5)
	assert.Equal(t, CategoryLeadership, withLeaders[4].Category)
}

func TestTavily_Search(t *testing.T) {
	var got tavily.SearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tavily.SearchResponse{
			Results: []tavily.SearchResult{
				{Title: "Acme launches AI", URL: "https://news.example.com/a", Content: "Acme shipped a model."},
			},
		})
	}))
	defer srv.Close()

	s := NewTavily(tavily.NewClient("tvly-key", tavily.WithBaseURL(srv.URL)))
	items, err := s.Search(context.Background(), Query{Text: "Acme overview", MaxResults: 5, Advanced: true, IncludeAnswer: true})
	require.NoError(t, err)

	assert.Equal(t, "Tavily", s.Name())
	assert.Equal(t, "Acme overview", got.Query)
	assert.Equal(t, tavily.DepthAdvanced, got.SearchDepth)
	assert.Equal(t, 5, got.MaxResults)
	assert.True(t, got.IncludeAnswer)
	assert.Equal(t, []model.SearchItem{
		{Title: "Acme launches AI", URL: "https://news.example.com/a", Description: "Acme shipped a model."},
	}, items)
}

func TestJina_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jina.SearchResponse{
			Code: 200,
			Data: []jina.SearchResult{
				{Title: "One", URL: "https://a.example.com", Description: "first"},
				{Title: "Two", URL: "https://b.example.com", Content: "body only"},
				{Title: "Three", URL: "https://c.example.com", Description: "dropped"},
			},
		})
	}))
	defer srv.Close()

	s := NewJina(jina.NewClient("jina-key", jina.WithSearchBaseURL(srv.URL)))
	items, err := s.Search(context.Background(), Query{Text: "Acme", MaxResults: 2})
	require.NoError(t, err)

	assert.Equal(t, "Jina", s.Name())
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Description)
	assert.Equal(t, "body only", items[1].Description)
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		keys    Keys
		want    string
		wantErr bool
	}{
		{name: "tavily preferred", keys: Keys{Tavily: "t", Jina: "j"}, want: "Tavily"},
		{name: "jina fallback", keys: Keys{Jina: "j"}, want: "Jina"},
		{name: "blank keys", keys: Keys{Tavily: "  ", Jina: ""}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Select(tt.keys, Options{})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoSearchKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name())
		})
	}
}
