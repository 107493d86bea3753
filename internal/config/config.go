package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/marketpulse/internal/cost"
	"github.com/sells-group/marketpulse/internal/llm"
)

// Config holds the full application configuration.
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Anthropic    ProviderConfig     `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI       ProviderConfig     `yaml:"openai" mapstructure:"openai"`
	Gemini       ProviderConfig     `yaml:"gemini" mapstructure:"gemini"`
	Perplexity   ProviderConfig     `yaml:"perplexity" mapstructure:"perplexity"`
	Tavily       TavilyConfig       `yaml:"tavily" mapstructure:"tavily"`
	Jina         JinaConfig         `yaml:"jina" mapstructure:"jina"`
	Search       SearchConfig       `yaml:"search" mapstructure:"search"`
	Dedup        DedupConfig        `yaml:"dedup" mapstructure:"dedup"`
	Plausibility PlausibilityConfig `yaml:"plausibility" mapstructure:"plausibility"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Cost         CostConfig         `yaml:"cost" mapstructure:"cost"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LLMConfig selects the default provider.
type LLMConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ProviderConfig holds one LLM vendor's credentials.
type ProviderConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// TavilyConfig holds Tavily search settings.
type TavilyConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// JinaConfig holds Jina AI Search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// SearchConfig configures the web-evidence search batch.
type SearchConfig struct {
	Leadership       bool    `yaml:"leadership" mapstructure:"leadership"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec       float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst            int     `yaml:"burst" mapstructure:"burst"`
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	LeadershipLimit  int     `yaml:"leadership_limit" mapstructure:"leadership_limit"`
}

// DedupConfig tunes regulatory-event deduplication.
type DedupConfig struct {
	AmountTolerance float64 `yaml:"amount_tolerance" mapstructure:"amount_tolerance"`
	YearWindow      int     `yaml:"year_window" mapstructure:"year_window"`
}

// PlausibilityConfig points at an optional YAML file of extra heuristics.
type PlausibilityConfig struct {
	OverridesFile string `yaml:"overrides_file" mapstructure:"overrides_file"`
}

// CacheConfig configures the report cache.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled" mapstructure:"enabled"`
	TTLHours int  `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// CostConfig overrides the built-in vendor pricing. Models is a list rather
// than a map because model names contain dots, which viper reads as nesting.
type CostConfig struct {
	Models             []ModelCostConfig `yaml:"models" mapstructure:"models"`
	PerplexityPerQuery float64           `yaml:"perplexity_per_query" mapstructure:"perplexity_per_query"`
	TavilyPerQuery     float64           `yaml:"tavily_per_query" mapstructure:"tavily_per_query"`
	JinaPerQuery       float64           `yaml:"jina_per_query" mapstructure:"jina_per_query"`
}

// ModelCostConfig prices one model (or model-name prefix) per million tokens.
type ModelCostConfig struct {
	Model  string  `yaml:"model" mapstructure:"model"`
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Rates returns the built-in pricing with the configured overrides applied.
func (c CostConfig) Rates() cost.Rates {
	o := cost.Rates{Models: make(map[string]cost.ModelRate, len(c.Models))}
	for _, m := range c.Models {
		o.Models[m.Model] = cost.ModelRate{Input: m.Input, Output: m.Output}
	}
	o.Perplexity.PerQuery = c.PerplexityPerQuery
	o.Search.Tavily = c.TavilyPerQuery
	o.Search.Jina = c.JinaPerQuery
	return cost.DefaultRates().Merge(o)
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Provider returns the configuration for the named LLM provider.
func (c *Config) Provider(name string) ProviderConfig {
	switch name {
	case llm.Anthropic:
		return c.Anthropic
	case llm.OpenAI:
		return c.OpenAI
	case llm.Gemini:
		return c.Gemini
	case llm.Perplexity:
		return c.Perplexity
	}
	return ProviderConfig{}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MARKETPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "marketpulse.db")
	v.SetDefault("llm.provider", llm.Gemini)
	v.SetDefault("llm.timeout_secs", 120)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", llm.DefaultModel(llm.Anthropic))
	v.SetDefault("openai.key", "")
	v.SetDefault("openai.model", llm.DefaultModel(llm.OpenAI))
	v.SetDefault("gemini.key", "")
	v.SetDefault("gemini.model", llm.DefaultModel(llm.Gemini))
	v.SetDefault("perplexity.key", "")
	v.SetDefault("perplexity.model", llm.DefaultModel(llm.Perplexity))
	v.SetDefault("tavily.key", "")
	v.SetDefault("tavily.base_url", "https://api.tavily.com")
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("search.leadership", true)
	v.SetDefault("search.timeout_secs", 30)
	v.SetDefault("search.rate_per_sec", 5.0)
	v.SetDefault("search.burst", 5)
	v.SetDefault("search.max_attempts", 2)
	v.SetDefault("search.initial_backoff_ms", 500)
	v.SetDefault("search.max_backoff_ms", 5000)
	v.SetDefault("search.leadership_limit", 6)
	v.SetDefault("dedup.amount_tolerance", 0.05)
	v.SetDefault("dedup.year_window", 1)
	v.SetDefault("plausibility.overrides_file", "")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required by a command mode: "analyze",
// "serve", or "store".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	if c.Dedup.AmountTolerance < 0 || c.Dedup.AmountTolerance > 1 {
		errs = append(errs, "dedup.amount_tolerance must be between 0 and 1")
	}
	if c.Dedup.YearWindow < 0 {
		errs = append(errs, "dedup.year_window must be >= 0")
	}
	for i, m := range c.Cost.Models {
		if m.Model == "" {
			errs = append(errs, fmt.Sprintf("cost.models[%d].model is required", i))
		}
	}

	switch mode {
	case "analyze":
		errs = append(errs, c.validateAnalysis()...)
		if p := c.LLM.Provider; llm.Valid(p) && c.Provider(p).Key == "" {
			errs = append(errs, p+".key is required")
		}
	case "serve":
		errs = append(errs, c.validateAnalysis()...)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	case "store":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateAnalysis() []string {
	var errs []string
	if !llm.Valid(c.LLM.Provider) {
		errs = append(errs, "llm.provider must be one of "+strings.Join(llm.Names(), ", "))
	}
	if c.Search.RatePerSec <= 0 {
		errs = append(errs, "search.rate_per_sec must be > 0")
	}
	if c.Search.Burst < 1 {
		errs = append(errs, "search.burst must be >= 1")
	}
	if c.Cache.TTLHours < 0 {
		errs = append(errs, "cache.ttl_hours must be >= 0")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
