// Package analysis orchestrates one company analysis: cache lookup, web
// evidence, the LLM call, parsing, evidence merge, and persistence.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/marketpulse/internal/cost"
	"github.com/sells-group/marketpulse/internal/evidence"
	"github.com/sells-group/marketpulse/internal/llm"
	"github.com/sells-group/marketpulse/internal/model"
	"github.com/sells-group/marketpulse/internal/parse"
	"github.com/sells-group/marketpulse/internal/websearch"
)

// Store is the persistence the service needs. store.Store satisfies it.
type Store interface {
	GetCachedReport(ctx context.Context, company, provider string) (*model.CachedReport, error)
	SetCachedReport(ctx context.Context, company, provider string, report model.Report, ttl time.Duration) error
	RecordSearch(ctx context.Context, company, provider string, report model.Report) (*model.HistoryEntry, error)
}

// ProviderFactory builds an LLM provider. llm.New is the default.
type ProviderFactory func(name string, opts llm.Options) (llm.Provider, error)

// SearcherFactory builds a web searcher for the given keys.
type SearcherFactory func(keys websearch.Keys) (websearch.Searcher, error)

// Request is one analysis request. Keys and model override the
// configured defaults when set.
type Request struct {
	Company   string
	Provider  string
	Model     string
	APIKey    string
	TavilyKey string
	JinaKey   string
	// Refresh bypasses the report cache.
	Refresh bool
}

// Result is the analysis response.
type Result struct {
	Data           model.Report `json:"data"`
	Cached         bool         `json:"cached"`
	Provider       string       `json:"provider"`
	WebSearchUsed  bool         `json:"webSearchUsed"`
	WebSearchError string       `json:"webSearchError,omitempty"`
}

// Config holds service defaults.
type Config struct {
	// Providers holds configured credentials and models keyed by provider name.
	Providers map[string]llm.Options
	// SearchKeys are used when a request carries no search key.
	SearchKeys websearch.Keys
	Search     websearch.Config
	// LeadershipLimit caps leadership items derived from search results.
	LeadershipLimit int
	// CacheTTL is the report cache lifetime. Zero disables caching.
	CacheTTL time.Duration
}

// Service runs analyses. It is safe for concurrent use.
type Service struct {
	cfg         Config
	parser      *parse.Parser
	store       Store
	limiter     *rate.Limiter
	costs       *cost.Calculator
	newProvider ProviderFactory
	newSearcher SearcherFactory
}

// Option configures a Service.
type Option func(*Service)

// WithStore enables caching and history.
func WithStore(s Store) Option {
	return func(svc *Service) { svc.store = s }
}

// WithLimiter shares a search rate limiter across requests.
func WithLimiter(l *rate.Limiter) Option {
	return func(svc *Service) { svc.limiter = l }
}

// WithCalculator overrides the pricing used for cost estimates.
func WithCalculator(c *cost.Calculator) Option {
	return func(svc *Service) { svc.costs = c }
}

// WithProviderFactory overrides how providers are built.
func WithProviderFactory(f ProviderFactory) Option {
	return func(svc *Service) { svc.newProvider = f }
}

// WithSearcherFactory overrides how searchers are built.
func WithSearcherFactory(f SearcherFactory) Option {
	return func(svc *Service) { svc.newSearcher = f }
}

// New creates a Service.
func New(cfg Config, parser *parse.Parser, opts ...Option) *Service {
	if parser == nil {
		parser = parse.Default()
	}
	s := &Service{
		cfg:         cfg,
		parser:      parser,
		costs:       cost.NewCalculator(cost.DefaultRates()),
		newProvider: llm.New,
		newSearcher: func(keys websearch.Keys) (websearch.Searcher, error) {
			return websearch.Select(keys, websearch.Options{})
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Analyze runs the full analysis for req. Web-search failures are
// reported in Result.WebSearchError and never fail the request.
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	company := strings.TrimSpace(req.Company)
	if company == "" {
		return nil, ErrCompanyRequired
	}
	name := strings.ToLower(strings.TrimSpace(req.Provider))
	if !llm.Valid(name) {
		return nil, ErrInvalidProvider
	}
	opts := s.providerOptions(name, req)
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrAPIKeyRequired
	}

	log := zap.L().With(zap.String("company", company), zap.String("provider", name))

	if !req.Refresh {
		if cached := s.cached(ctx, log, company, name); cached != nil {
			return cached, nil
		}
	}

	provider, err := s.newProvider(name, opts)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: build provider")
	}

	res := &Result{Provider: name}
	var bundle *model.SearchBundle
	if !provider.SupportsWebGrounding() {
		bundle, res.WebSearchError = s.gather(ctx, log, company, req)
		res.WebSearchUsed = bundle != nil
	}

	start := time.Now()
	completion, err := provider.Complete(ctx, llm.AnalysisPrompt(company))
	if err != nil {
		log.Error("analysis: provider request failed", zap.Error(err))
		return nil, classify(err)
	}
	modelName := completion.Model
	if modelName == "" {
		modelName = opts.Model
	}
	estimate := s.costs.LLM(modelName, cost.Usage{
		Input:      completion.InputTokens,
		Output:     completion.OutputTokens,
		CacheWrite: completion.CacheWriteTokens,
		CacheRead:  completion.CacheReadTokens,
	})
	if name == llm.Perplexity {
		estimate += s.costs.PerplexityQuery()
	}
	log.Info("analysis: provider responded",
		zap.String("model", modelName),
		zap.Int64("input_tokens", completion.InputTokens),
		zap.Int64("output_tokens", completion.OutputTokens),
		zap.Int64("cache_read_tokens", completion.CacheReadTokens),
		zap.Float64("estimated_cost_usd", estimate),
		zap.Duration("elapsed", time.Since(start)),
	)

	report := s.parser.Parse(completion.Text)
	report.Sources = parse.UniqueStrings(report.Sources, completion.Citations)
	if bundle != nil {
		report = evidence.Merge(report, bundle)
		if len(report.LeadershipChanges) == 0 && len(bundle.Leadership) > 0 {
			report.LeadershipChanges = evidence.LeadershipFromArticles(bundle.Leadership, s.cfg.LeadershipLimit)
		}
	}
	res.Data = report

	s.persist(ctx, log, company, name, report)
	return res, nil
}

func (s *Service) providerOptions(name string, req Request) llm.Options {
	opts := s.cfg.Providers[name]
	if k := strings.TrimSpace(req.APIKey); k != "" {
		opts.APIKey = k
	}
	if m := strings.TrimSpace(req.Model); m != "" {
		opts.Model = m
	}
	return opts
}

func (s *Service) searchKeys(req Request) websearch.Keys {
	keys := s.cfg.SearchKeys
	if req.TavilyKey != "" || req.JinaKey != "" {
		keys = websearch.Keys{Tavily: req.TavilyKey, Jina: req.JinaKey}
	}
	return keys
}

func (s *Service) cached(ctx context.Context, log *zap.Logger, company, provider string) *Result {
	if s.store == nil || s.cfg.CacheTTL <= 0 {
		return nil
	}
	entry, err := s.store.GetCachedReport(ctx, company, provider)
	if err != nil {
		log.Warn("analysis: cache lookup failed", zap.Error(err))
		return nil
	}
	if entry == nil {
		return nil
	}
	log.Debug("analysis: cache hit", zap.Time("expires_at", entry.ExpiresAt))
	return &Result{Data: entry.Report, Cached: true, Provider: provider}
}

// gather returns the search bundle, or a user-facing warning when the
// search was attempted and failed. No search key means neither.
func (s *Service) gather(ctx context.Context, log *zap.Logger, company string, req Request) (*model.SearchBundle, string) {
	searcher, err := s.newSearcher(s.searchKeys(req))
	if err != nil {
		if !eris.Is(err, websearch.ErrNoSearchKey) {
			log.Warn("analysis: build searcher failed", zap.Error(err))
		}
		return nil, ""
	}

	queries := len(websearch.CompanyQueries(company, s.cfg.Search.Leadership))
	bundle, err := websearch.NewGatherer(searcher, s.limiter, s.cfg.Search).Gather(ctx, company)
	log.Debug("analysis: web search finished",
		zap.String("searcher", searcher.Name()),
		zap.Int("queries", queries),
		zap.Float64("estimated_cost_usd", s.costs.Search(searcher.Name(), queries)),
	)
	if err != nil {
		warning := websearch.Describe(searcher.Name(), err)
		log.Warn("analysis: web search failed, continuing without it",
			zap.String("searcher", searcher.Name()),
			zap.String("warning", warning),
			zap.Error(err),
		)
		return nil, warning
	}
	return bundle, ""
}

// persist writes the report to the cache and history. Failures are
// logged; the analysis result is still returned.
func (s *Service) persist(ctx context.Context, log *zap.Logger, company, provider string, report model.Report) {
	if s.store == nil {
		return
	}
	if s.cfg.CacheTTL > 0 {
		if err := s.store.SetCachedReport(ctx, company, provider, report, s.cfg.CacheTTL); err != nil {
			log.Warn("analysis: cache write failed", zap.Error(err))
		}
	}
	if _, err := s.store.RecordSearch(ctx, company, provider, report); err != nil {
		log.Warn("analysis: record history failed", zap.Error(err))
	}
}
