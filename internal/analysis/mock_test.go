package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/marketpulse/internal/llm"
	"github.com/sells-group/marketpulse/internal/model"
	"github.com/sells-group/marketpulse/internal/websearch"
)

// --- Provider Mock ---

type mockProvider struct {
	mock.Mock
	name     string
	grounded bool
}

func (m *mockProvider) Name() string               { return m.name }
func (m *mockProvider) SupportsWebGrounding() bool { return m.grounded }

func (m *mockProvider) Complete(ctx context.Context, prompt string) (*llm.Completion, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Completion), args.Error(1)
}

func (m *mockProvider) Verify(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetCachedReport(ctx context.Context, company, provider string) (*model.CachedReport, error) {
	args := m.Called(ctx, company, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CachedReport), args.Error(1)
}

func (m *mockStore) SetCachedReport(ctx context.Context, company, provider string, report model.Report, ttl time.Duration) error {
	args := m.Called(ctx, company, provider, report, ttl)
	return args.Error(0)
}

func (m *mockStore) RecordSearch(ctx context.Context, company, provider string, report model.Report) (*model.HistoryEntry, error) {
	args := m.Called(ctx, company, provider, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HistoryEntry), args.Error(1)
}

// --- Searcher Fake ---

type fakeSearcher struct {
	mu      sync.Mutex
	results map[websearch.Category][]model.SearchItem
	err     error
	queries []websearch.Query
}

func (f *fakeSearcher) Name() string { return "Fake" }

func (f *fakeSearcher) Search(_ context.Context, q websearch.Query) ([]model.SearchItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[q.Category], nil
}

func (f *fakeSearcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// providerFactory returns a ProviderFactory that hands out p and records
// the options it was asked for.
func providerFactory(p llm.Provider, got *llm.Options) ProviderFactory {
	return func(name string, opts llm.Options) (llm.Provider, error) {
		if got != nil {
			*got = opts
		}
		return p, nil
	}
}

// searcherFactory returns s whenever any key is set.
func searcherFactory(s websearch.Searcher, got *websearch.Keys) SearcherFactory {
	return func(keys websearch.Keys) (websearch.Searcher, error) {
		if got != nil {
			*got = keys
		}
		if keys.Tavily == "" && keys.Jina == "" {
			return nil, websearch.ErrNoSearchKey
		}
		return s, nil
	}
}
