package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/marketpulse/internal/analysis"
	"github.com/sells-group/marketpulse/internal/cost"
	"github.com/sells-group/marketpulse/internal/db"
	"github.com/sells-group/marketpulse/internal/llm"
	"github.com/sells-group/marketpulse/internal/parse"
	"github.com/sells-group/marketpulse/internal/plausibility"
	"github.com/sells-group/marketpulse/internal/regevents"
	"github.com/sells-group/marketpulse/internal/resilience"
	"github.com/sells-group/marketpulse/internal/store"
	"github.com/sells-group/marketpulse/internal/websearch"
	"github.com/sells-group/marketpulse/pkg/jina"
	"github.com/sells-group/marketpulse/pkg/tavily"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "marketpulse.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, db.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore validates the store config, opens the store, and applies
// migrations.
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initParser builds the report parser from the dedup thresholds and any
// plausibility overrides file.
func initParser() (*parse.Parser, error) {
	filters := plausibility.Defaults()
	if path := cfg.Plausibility.OverridesFile; path != "" {
		extra, err := plausibility.LoadOverrides(path)
		if err != nil {
			return nil, err
		}
		filters = plausibility.New(plausibility.Default().Extend(extra))
		zap.L().Info("loaded plausibility overrides", zap.String("path", path))
	}
	deduper := regevents.NewDeduper(regevents.Thresholds{
		AmountTolerance: cfg.Dedup.AmountTolerance,
		YearWindow:      cfg.Dedup.YearWindow,
	})
	return parse.New(filters, deduper), nil
}

// initAnalysis wires the analysis service from config. st may be nil.
func initAnalysis(st store.Store) (*analysis.Service, error) {
	parser, err := initParser()
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.LLM.TimeoutSecs) * time.Second
	providers := make(map[string]llm.Options, len(llm.Names()))
	for _, name := range llm.Names() {
		pc := cfg.Provider(name)
		providers[name] = llm.Options{
			APIKey:  pc.Key,
			Model:   pc.Model,
			BaseURL: pc.BaseURL,
			Timeout: timeout,
		}
	}

	var searchOpts websearch.Options
	if cfg.Tavily.BaseURL != "" {
		searchOpts.TavilyOptions = append(searchOpts.TavilyOptions, tavily.WithBaseURL(cfg.Tavily.BaseURL))
	}
	if cfg.Jina.SearchBaseURL != "" {
		searchOpts.JinaOptions = append(searchOpts.JinaOptions, jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL))
	}

	svcCfg := analysis.Config{
		Providers:  providers,
		SearchKeys: websearch.Keys{Tavily: cfg.Tavily.Key, Jina: cfg.Jina.Key},
		Search: websearch.Config{
			Leadership: cfg.Search.Leadership,
			Timeout:    time.Duration(cfg.Search.TimeoutSecs) * time.Second,
			Retry: resilience.FromRetryConfig(
				cfg.Search.MaxAttempts, cfg.Search.InitialBackoffMs, cfg.Search.MaxBackoffMs,
				0, resilience.DefaultRetryConfig().JitterFraction,
			),
		},
		LeadershipLimit: cfg.Search.LeadershipLimit,
	}
	if cfg.Cache.Enabled {
		svcCfg.CacheTTL = time.Duration(cfg.Cache.TTLHours) * time.Hour
	}

	opts := []analysis.Option{
		analysis.WithCalculator(cost.NewCalculator(cfg.Cost.Rates())),
		analysis.WithLimiter(rate.NewLimiter(rate.Limit(cfg.Search.RatePerSec), cfg.Search.Burst)),
		analysis.WithSearcherFactory(func(keys websearch.Keys) (websearch.Searcher, error) {
			return websearch.Select(keys, searchOpts)
		}),
	}
	if st != nil {
		opts = append(opts, analysis.WithStore(st))
	}
	return analysis.New(svcCfg, parser, opts...), nil
}
