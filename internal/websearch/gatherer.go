package websearch

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/marketpulse/internal/model"
	"github.com/sells-group/marketpulse/internal/resilience"
)

// Config tunes a Gatherer.
type Config struct {
	// Leadership adds the leadership-news search to each batch.
	Leadership bool
	// Timeout bounds the whole batch. Zero means no extra deadline.
	Timeout time.Duration
	Retry   resilience.RetryConfig
}

// Gatherer runs the category searches for a company concurrently.
type Gatherer struct {
	searcher Searcher
	limiter  *rate.Limiter
	cfg      Config
}

// NewGatherer creates a Gatherer. limiter may be shared across gatherers
// to bound the process-wide request rate; nil means unlimited.
func NewGatherer(s Searcher, limiter *rate.Limiter, cfg Config) *Gatherer {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Gatherer{searcher: s, limiter: limiter, cfg: cfg}
}

// Gather issues every category query and assembles the bundle. Any
// category failure fails the whole batch.
func (g *Gatherer) Gather(ctx context.Context, company string) (*model.SearchBundle, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, eris.New("websearch: empty company name")
	}
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	queries := CompanyQueries(company, g.cfg.Leadership)
	bundle := &model.SearchBundle{}
	var mu sync.Mutex

	start := time.Now()
	eg, gctx := errgroup.WithContext(ctx)
	for _, q := range queries {
		eg.Go(func() error {
			if err := g.limiter.Wait(gctx); err != nil {
				return eris.Wrapf(err, "websearch: %s rate limit wait", q.Category)
			}
			retry := g.cfg.Retry
			retry.OnRetry = resilience.RetryLogger(g.searcher.Name(), string(q.Category), zap.String("company", company))
			items, err := resilience.DoVal(gctx, retry, func(ctx context.Context) ([]model.SearchItem, error) {
				return g.searcher.Search(ctx, q)
			})
			if err != nil {
				return eris.Wrapf(err, "websearch: %s search", q.Category)
			}

			mu.Lock()
			defer mu.Unlock()
			assign(bundle, q.Category, items)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		zap.L().Warn("websearch: batch failed",
			zap.String("searcher", g.searcher.Name()),
			zap.String("company", company),
			zap.Error(err),
		)
		return nil, err
	}

	zap.L().Debug("websearch: batch complete",
		zap.String("searcher", g.searcher.Name()),
		zap.String("company", company),
		zap.Int("news", len(bundle.News)),
		zap.Int("case_studies", len(bundle.CaseStudies)),
		zap.Int("info", len(bundle.Info)),
		zap.Int("investor_docs", len(bundle.InvestorDocs)),
		zap.Int("leadership", len(bundle.Leadership)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return bundle, nil
}

func assign(b *model.SearchBundle, c Category, items []model.SearchItem) {
	switch c {
	case CategoryNews:
		b.News = items
	case CategoryCaseStudies:
		b.CaseStudies = items
	case CategoryInfo:
		b.Info = items
	case CategoryInvestorDocs:
		b.InvestorDocs = items
	case CategoryLeadership:
		b.Leadership = items
	}
}

const maxWarningDetail = 100

// Describe turns a batch failure into the short warning shown alongside
// an LLM-only report.
func Describe(provider string, err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	status := resilience.HTTPStatus(err)

	switch {
	case status == 401 || status == 403 ||
		strings.Contains(msg, "Forbidden") || strings.Contains(lower, "invalid api key"):
		return provider + " key is invalid or expired"
	case status == 429 || strings.Contains(lower, "rate limit"):
		return provider + " rate limit exceeded"
	case isTimeout(err) || strings.Contains(lower, "timeout") || strings.Contains(msg, "ETIMEDOUT"):
		return provider + " request timed out"
	default:
		r := []rune(msg)
		if len(r) > maxWarningDetail {
			r = r[:maxWarningDetail]
		}
		return provider + " failed: " + string(r)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
