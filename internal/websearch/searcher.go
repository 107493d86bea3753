// Package websearch gathers live web evidence about a company from a
// search API, independently of the LLM provider.
package websearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/marketpulse/internal/model"
	"github.com/sells-group/marketpulse/pkg/jina"
	"github.com/sells-group/marketpulse/pkg/tavily"
)

// Category identifies one of the evidence searches.
type Category string

const (
	CategoryNews         Category = "news"
	CategoryCaseStudies  Category = "case_studies"
	CategoryInfo         Category = "info"
	CategoryInvestorDocs Category = "investor_docs"
	CategoryLeadership   Category = "leadership"
)

// Query is a single category search.
type Query struct {
	Category      Category
	Text          string
	MaxResults    int
	Advanced      bool
	IncludeAnswer bool
}

// Searcher runs one web search.
type Searcher interface {
	// Name is the user-facing provider name used in warnings.
	Name() string
	Search(ctx context.Context, q Query) ([]model.SearchItem, error)
}

// CompanyQueries returns the evidence searches for company. The
// leadership search is appended only when leadership is true.
func CompanyQueries(company string, leadership bool) []Query {
	company = strings.TrimSpace(company)
	qs := []Query{
		{Category: CategoryNews, Text: company + " latest news technology AI developments", MaxResults: 10},
		{Category: CategoryCaseStudies, Text: company + " case study customer success story", MaxResults: 5},
		{Category: CategoryInfo, Text: company + " company overview business strategy recent developments", MaxResults: 5, Advanced: true, IncludeAnswer: true},
		{Category: CategoryInvestorDocs, Text: company + " investor relations SEC filing annual report 10-K", MaxResults: 5},
	}
	if leadership {
		qs = append(qs, Query{
			Category:   CategoryLeadership,
			Text:       fmt.Sprintf("%s executive appointment named CEO CFO leadership change", company),
			MaxResults: 10,
		})
	}
	return qs
}

// Tavily adapts a tavily.Client to Searcher.
type Tavily struct {
	client tavily.Client
}

// NewTavily wraps client.
func NewTavily(client tavily.Client) *Tavily {
	return &Tavily{client: client}
}

// Name implements Searcher.
func (t *Tavily) Name() string { return "Tavily" }

// Search implements Searcher.
func (t *Tavily) Search(ctx context.Context, q Query) ([]model.SearchItem, error) {
	req := tavily.SearchRequest{
		Query:         q.Text,
		MaxResults:    q.MaxResults,
		IncludeAnswer: q.IncludeAnswer,
		SearchDepth:   tavily.DepthBasic,
	}
	if q.Advanced {
		req.SearchDepth = tavily.DepthAdvanced
	}
	resp, err := t.client.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	items := make([]model.SearchItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		items = append(items, model.SearchItem{Title: r.Title, URL: r.URL, Description: r.Content})
	}
	return items, nil
}

// Jina adapts a jina.Client to Searcher.
type Jina struct {
	client jina.Client
}

// NewJina wraps client.
func NewJina(client jina.Client) *Jina {
	return &Jina{client: client}
}

// Name implements Searcher.
func (j *Jina) Name() string { return "Jina" }

// Search implements Searcher.
func (j *Jina) Search(ctx context.Context, q Query) ([]model.SearchItem, error) {
	resp, err := j.client.Search(ctx, q.Text, jina.WithCount(q.MaxResults))
	if err != nil {
		return nil, err
	}
	items := make([]model.SearchItem, 0, len(resp.Data))
	for _, r := range resp.Data {
		desc := r.Description
		if desc == "" {
			desc = r.Content
		}
		items = append(items, model.SearchItem{Title: r.Title, URL: r.URL, Description: desc})
		if q.MaxResults > 0 && len(items) >= q.MaxResults {
			break
		}
	}
	return items, nil
}

// Keys holds the search API keys available to one request.
type Keys struct {
	Tavily string
	Jina   string
}

// Options carries client overrides used when building searchers.
type Options struct {
	TavilyOptions []tavily.Option
	JinaOptions   []jina.Option
}

// ErrNoSearchKey is returned by Select when no search key is configured.
var ErrNoSearchKey = eris.New("websearch: no search API key")

// Select returns the searcher for keys, preferring Tavily.
func Select(keys Keys, opts Options) (Searcher, error) {
	switch {
	case strings.TrimSpace(keys.Tavily) != "":
		return NewTavily(tavily.NewClient(strings.TrimSpace(keys.Tavily), opts.TavilyOptions...)), nil
	case strings.TrimSpace(keys.Jina) != "":
		return NewJina(jina.NewClient(strings.TrimSpace(keys.Jina), opts.JinaOptions...)), nil
	default:
		return nil, ErrNoSearchKey
	}
}
