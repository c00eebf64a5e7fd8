package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/disclosure-cli/internal/confidence"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic  AnthropicConfig          `yaml:"anthropic" mapstructure:"anthropic"`
	Retrieval  RetrievalConfig          `yaml:"retrieval" mapstructure:"retrieval"`
	Audit      AuditConfig              `yaml:"audit" mapstructure:"audit"`
	Confidence ConfidenceConfig         `yaml:"confidence" mapstructure:"confidence"`
	Generate   GenerateConfig           `yaml:"generate" mapstructure:"generate"`
	Companies  map[string]CompanyConfig `yaml:"companies" mapstructure:"companies"`
	Batch      BatchConfig              `yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig             `yaml:"server" mapstructure:"server"`
	Log        LogConfig                `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// RetrievalConfig holds passage search service settings.
type RetrievalConfig struct {
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	TopK       int     `yaml:"top_k" mapstructure:"top_k"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst  int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// AuditConfig configures the audit trail.
type AuditConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	IndexDSN string `yaml:"index_dsn" mapstructure:"index_dsn"`
}

// ConfidenceConfig holds the tunable confidence scoring weights.
type ConfidenceConfig struct {
	DataWeight       float64 `yaml:"data_weight" mapstructure:"data_weight"`
	SourceWeight     float64 `yaml:"source_weight" mapstructure:"source_weight"`
	Baseline         float64 `yaml:"baseline" mapstructure:"baseline"`
	NarrativeBonus   float64 `yaml:"narrative_bonus" mapstructure:"narrative_bonus"`
	QuantityWeight   float64 `yaml:"quantity_weight" mapstructure:"quantity_weight"`
	QuantitySat      int     `yaml:"quantity_sat" mapstructure:"quantity_sat"`
	DiversityWeight  float64 `yaml:"diversity_weight" mapstructure:"diversity_weight"`
	DiversitySat     int     `yaml:"diversity_sat" mapstructure:"diversity_sat"`
	RecencyWeight    float64 `yaml:"recency_weight" mapstructure:"recency_weight"`
	LatestFilingYear int     `yaml:"latest_filing_year" mapstructure:"latest_filing_year"`
}

// Weights converts the config section into scoring weights.
func (c ConfidenceConfig) Weights() confidence.Weights {
	return confidence.Weights{
		DataWeight:       c.DataWeight,
		SourceWeight:     c.SourceWeight,
		Baseline:         c.Baseline,
		NarrativeBonus:   c.NarrativeBonus,
		QuantityWeight:   c.QuantityWeight,
		QuantitySat:      c.QuantitySat,
		DiversityWeight:  c.DiversityWeight,
		DiversitySat:     c.DiversitySat,
		RecencyWeight:    c.RecencyWeight,
		LatestFilingYear: c.LatestFilingYear,
	}
}

// GenerateConfig configures drafting behavior.
type GenerateConfig struct {
	TemplatesPath string `yaml:"templates_path" mapstructure:"templates_path"`
}

// CompanyConfig is one entry of the target company registry.
type CompanyConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	CIK  string `yaml:"cik" mapstructure:"cik"`
}

// BatchConfig configures multi-ticker batch drafting.
type BatchConfig struct {
	MaxConcurrentSessions int `yaml:"max_concurrent_sessions" mapstructure:"max_concurrent_sessions"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DISCLOSURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	// Secrets default to empty so env-only values survive Unmarshal.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.temperature", 0.3)
	v.SetDefault("retrieval.base_url", "http://localhost:8600")
	v.SetDefault("retrieval.top_k", 8)
	v.SetDefault("retrieval.rate_per_sec", 10)
	v.SetDefault("retrieval.rate_burst", 10)
	v.SetDefault("generate.templates_path", "")
	v.SetDefault("audit.dir", "data/audit_logs")
	v.SetDefault("audit.index_dsn", "data/audit_index.db")
	v.SetDefault("confidence.data_weight", 0.6)
	v.SetDefault("confidence.source_weight", 0.4)
	v.SetDefault("confidence.baseline", 0.3)
	v.SetDefault("confidence.narrative_bonus", 0.2)
	v.SetDefault("confidence.quantity_weight", 0.3)
	v.SetDefault("confidence.quantity_sat", 8)
	v.SetDefault("confidence.diversity_weight", 0.3)
	v.SetDefault("confidence.diversity_sat", 3)
	v.SetDefault("confidence.recency_weight", 0.4)
	v.SetDefault("confidence.latest_filing_year", 2025)
	v.SetDefault("batch.max_concurrent_sessions", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("companies", defaultCompanies())

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

// Validate checks the configuration for the given run mode ("draft", "batch",
// or "serve"). All problems are reported at once.
func (c *Config) Validate(mode string) error {
	var problems []string
	check := func(bad bool, msg string) {
		if bad {
			problems = append(problems, msg)
		}
	}

	check(c.Anthropic.Key == "", "anthropic.key is required")
	check(c.Retrieval.BaseURL == "", "retrieval.base_url is required")
	check(c.Audit.Dir == "", "audit.dir is required")
	check(c.Confidence.DataWeight < 0 || c.Confidence.SourceWeight < 0,
		"confidence weights must be >= 0")
	check(c.Confidence.QuantitySat < 1 || c.Confidence.DiversitySat < 1,
		"confidence saturation points must be >= 1")

	switch mode {
	case "draft":
	case "batch":
		check(c.Batch.MaxConcurrentSessions < 1 || c.Batch.MaxConcurrentSessions > 16,
			"batch.max_concurrent_sessions must be between 1 and 16")
	case "serve":
		check(c.Server.Port <= 0, "server.port must be > 0")
	default:
		check(true, fmt.Sprintf("unknown mode %q", mode))
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// CompanyNames returns the registry as a ticker-to-name map.
func (c *Config) CompanyNames() map[string]string {
	out := make(map[string]string, len(c.Companies))
	for ticker, info := range c.Companies {
		out[strings.ToUpper(ticker)] = info.Name
	}
	return out
}

func defaultCompanies() map[string]map[string]string {
	return map[string]map[string]string{
		"nvda": {"name": "NVIDIA Corporation", "cik": "0001045810"},
		"msft": {"name": "Microsoft Corporation", "cik": "0000789019"},
		"ko":   {"name": "The Coca-Cola Company", "cik": "0000021344"},
		"nke":  {"name": "NIKE, Inc.", "cik": "0000320187"},
		"amzn": {"name": "Amazon.com, Inc.", "cik": "0001018724"},
		"dash": {"name": "DoorDash, Inc.", "cik": "0001792789"},
		"tjx":  {"name": "The TJX Companies, Inc.", "cik": "0000109198"},
		"dri":  {"name": "Darden Restaurants, Inc.", "cik": "0000940944"},
	}
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
