// Package cost estimates the vendor spend of an analysis.
package cost

import "strings"

// Prompt-cache pricing relative to the model's input rate.
const (
	cacheWriteMultiplier = 1.25
	cacheReadMultiplier  = 0.1
)

// Rates holds per-vendor pricing configuration.
type Rates struct {
	// Models maps model names (or name prefixes) to token pricing.
	Models     map[string]ModelRate
	Perplexity PerplexityRate
	Search     SearchRate
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64
	Output float64
}

// PerplexityRate holds the Perplexity per-request fee charged on top of tokens.
type PerplexityRate struct {
	PerQuery float64
}

// SearchRate holds web-search pricing per query.
type SearchRate struct {
	Tavily float64
	Jina   float64
}

// Usage is the token consumption of one completion. Cache counts are
// reported separately from Input by vendors with prompt caching.
type Usage struct {
	Input      int64
	Output     int64
	CacheWrite int64
	CacheRead  int64
}

// Merge returns r with the non-zero values of o applied. Models in o are
// added or replace same-named entries.
func (r Rates) Merge(o Rates) Rates {
	out := r
	out.Models = make(map[string]ModelRate, len(r.Models)+len(o.Models))
	for name, rate := range r.Models {
		out.Models[name] = rate
	}
	for name, rate := range o.Models {
		out.Models[name] = rate
	}
	if o.Perplexity.PerQuery > 0 {
		out.Perplexity.PerQuery = o.Perplexity.PerQuery
	}
	if o.Search.Tavily > 0 {
		out.Search.Tavily = o.Search.Tavily
	}
	if o.Search.Jina > 0 {
		out.Search.Jina = o.Search.Jina
	}
	return out
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// LLM computes the token cost of one completion. Unknown models cost 0.
// An exact model match wins over the longest matching prefix, so
// "gpt-5.2-2025-12-11" is priced as "gpt-5.2".
func (c *Calculator) LLM(model string, u Usage) float64 {
	rate, ok := c.modelRate(model)
	if !ok {
		return 0
	}
	in := float64(u.Input) / 1e6 * rate.Input
	out := float64(u.Output) / 1e6 * rate.Output
	write := float64(u.CacheWrite) / 1e6 * rate.Input * cacheWriteMultiplier
	read := float64(u.CacheRead) / 1e6 * rate.Input * cacheReadMultiplier
	return in + out + write + read
}

func (c *Calculator) modelRate(model string) (ModelRate, bool) {
	if r, ok := c.rates.Models[model]; ok {
		return r, true
	}
	var best string
	for name := range c.rates.Models {
		if strings.HasPrefix(model, name) && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return ModelRate{}, false
	}
	return c.rates.Models[best], true
}

// PerplexityQuery returns the flat fee per Perplexity request.
func (c *Calculator) PerplexityQuery() float64 {
	return c.rates.Perplexity.PerQuery
}

// Search returns the cost of n queries against the named search
// provider ("Tavily" or "Jina", case-insensitive).
func (c *Calculator) Search(provider string, n int) float64 {
	switch strings.ToLower(provider) {
	case "tavily":
		return float64(n) * c.rates.Search.Tavily
	case "jina":
		return float64(n) * c.rates.Search.Jina
	default:
		return 0
	}
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Models: map[string]ModelRate{
			"claude-haiku-4-5":  {Input: 1.00, Output: 5.00},
			"claude-sonnet-4-5": {Input: 3.00, Output: 15.00},
			"claude-opus-4":     {Input: 15.00, Output: 75.00},
			"gpt-5.2":           {Input: 1.75, Output: 14.00},
			"gpt-5":             {Input: 1.25, Output: 10.00},
			"gpt-4o":            {Input: 2.50, Output: 10.00},
			"gemini-2.5-flash":  {Input: 0.30, Output: 2.50},
			"gemini-2.5-pro":    {Input: 1.25, Output: 10.00},
			"sonar-pro":         {Input: 3.00, Output: 15.00},
			"sonar":             {Input: 1.00, Output: 1.00},
		},
		Perplexity: PerplexityRate{PerQuery: 0.005},
		Search:     SearchRate{Tavily: 0.008, Jina: 0.002},
	}
}
