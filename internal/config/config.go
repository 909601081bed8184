// Package config loads the YAML service configuration and applies
// environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port                string `yaml:"port"`
	CORSOrigins         string `yaml:"cors_origins"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs"`
}

type FAQConfig struct {
	Path string `yaml:"path"`
}

type GeminiConfig struct {
	Model     string `yaml:"model"`
	Project   string `yaml:"project"`
	Location  string `yaml:"location"`
	APIKey    string `yaml:"api_key"`
	BatchSize int    `yaml:"batch_size"`
}

// EmbedderConfig selects the embedder: gemini, tfidf or none.
type EmbedderConfig struct {
	Type        string        `yaml:"type"`
	TimeoutSecs int           `yaml:"timeout_secs"`
	MaxRetries  int           `yaml:"max_retries"`
	Gemini      *GeminiConfig `yaml:"gemini,omitempty"`
}

type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
}

// EmbeddingCacheConfig selects where question vectors persist: file, qdrant or none.
type EmbeddingCacheConfig struct {
	Type   string        `yaml:"type"`
	Path   string        `yaml:"path"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

type ResolverConfig struct {
	HighThreshold           float64 `yaml:"high_threshold"`
	MediumThreshold         float64 `yaml:"medium_threshold"`
	CutoffMatchThreshold    float64 `yaml:"cutoff_match_threshold"`
	ClarificationConfidence float64 `yaml:"clarification_confidence"`
	StaticCutoffConfidence  float64 `yaml:"static_cutoff_confidence"`
	FallbackConfidence      float64 `yaml:"fallback_confidence"`
	SiteURL                 string  `yaml:"site_url"`
}

type VariationConfig struct {
	Probability float64 `yaml:"probability"`
	Seed        uint64  `yaml:"seed"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// HistoryConfig selects the conversation store: memory or redis.
type HistoryConfig struct {
	Type       string `yaml:"type"`
	MaxUsers   int    `yaml:"max_users"`
	MaxTurns   int    `yaml:"max_turns"`
	TTLMinutes int    `yaml:"ttl_minutes"`
	KeyPrefix  string `yaml:"key_prefix"`
}

// RateLimitConfig is only enforced when Redis is configured.
type RateLimitConfig struct {
	Requests   int `yaml:"requests"`
	WindowSecs int `yaml:"window_secs"`
}

// FallbackConfig selects the low-confidence path: static or website.
type FallbackConfig struct {
	Type            string   `yaml:"type"`
	Sections        []string `yaml:"sections"`
	TimeoutSecs     int      `yaml:"timeout_secs"`
	CacheTTLMinutes int      `yaml:"cache_ttl_minutes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root configuration document.
type AppConfig struct {
	Server         ServerConfig         `yaml:"server"`
	FAQ            FAQConfig            `yaml:"faq"`
	Embedder       EmbedderConfig       `yaml:"embedder"`
	EmbeddingCache EmbeddingCacheConfig `yaml:"embedding_cache"`
	Resolver       ResolverConfig       `yaml:"resolver"`
	Variation      VariationConfig      `yaml:"variation"`
	Redis          RedisConfig          `yaml:"redis"`
	History        HistoryConfig        `yaml:"history"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	Fallback       FallbackConfig       `yaml:"fallback"`
	Log            LogConfig            `yaml:"log"`
}

// Load reads a config from path. A missing file yields the defaults. In both
// cases environment overrides are applied last.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyConfigDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server:         ServerConfig{Port: "8000", CORSOrigins: "*", ShutdownTimeoutSecs: 10},
		FAQ:            FAQConfig{Path: "faq_data.json"},
		Embedder:       EmbedderConfig{Type: "tfidf", TimeoutSecs: 10, MaxRetries: 3},
		EmbeddingCache: EmbeddingCacheConfig{Type: "file", Path: "data/embeddings_cache.json"},
		Resolver: ResolverConfig{
			HighThreshold:           0.5,
			MediumThreshold:         0.2,
			CutoffMatchThreshold:    0.5,
			ClarificationConfidence: 0.8,
			StaticCutoffConfidence:  0.8,
			FallbackConfidence:      0.3,
			SiteURL:                 "https://nie.ac.in",
		},
		Variation: VariationConfig{Probability: 0.3},
		History:   HistoryConfig{Type: "memory", MaxUsers: 10000, MaxTurns: 10, TTLMinutes: 60, KeyPrefix: "faqbot:history:"},
		RateLimit: RateLimitConfig{Requests: 30, WindowSecs: 60},
		Fallback: FallbackConfig{
			Type:            "static",
			Sections:        []string{"/admissions/", "/placements/", "/facilities/", "/about/"},
			TimeoutSecs:     10,
			CacheTTLMinutes: 360,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8000"
	}
	if cfg.Server.ShutdownTimeoutSecs == 0 {
		cfg.Server.ShutdownTimeoutSecs = 10
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 10
	}
	if cfg.Embedder.Type == "gemini" {
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiConfig{}
		}
		if cfg.Embedder.Gemini.Model == "" {
			cfg.Embedder.Gemini.Model = "text-embedding-004"
		}
		if cfg.Embedder.Gemini.BatchSize == 0 {
			cfg.Embedder.Gemini.BatchSize = 100
		}
	}
	if cfg.EmbeddingCache.Type == "qdrant" {
		if cfg.EmbeddingCache.Qdrant == nil {
			cfg.EmbeddingCache.Qdrant = &QdrantConfig{}
		}
		if cfg.EmbeddingCache.Qdrant.Host == "" {
			cfg.EmbeddingCache.Qdrant.Host = "localhost"
		}
		if cfg.EmbeddingCache.Qdrant.Port == 0 {
			cfg.EmbeddingCache.Qdrant.Port = 6334
		}
		if cfg.EmbeddingCache.Qdrant.Collection == "" {
			cfg.EmbeddingCache.Qdrant.Collection = "faq_questions"
		}
	}
	if cfg.History.MaxTurns == 0 {
		cfg.History.MaxTurns = 10
	}
	if cfg.Fallback.CacheTTLMinutes == 0 {
		cfg.Fallback.CacheTTLMinutes = 360
	}
	if cfg.Fallback.TimeoutSecs == 0 {
		cfg.Fallback.TimeoutSecs = 10
	}
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("FAQBOT_FAQ_PATH"); v != "" {
		cfg.FAQ.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if q := cfg.EmbeddingCache.Qdrant; q != nil {
		if v := os.Getenv("QDRANT_HOST"); v != "" {
			q.Host = v
		}
		if port, err := strconv.Atoi(os.Getenv("QDRANT_PORT")); err == nil && port > 0 {
			q.Port = port
		}
	}
	if g := cfg.Embedder.Gemini; g != nil {
		if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
			g.Project = v
		}
		if v := os.Getenv("GOOGLE_CLOUD_LOCATION"); v != "" {
			g.Location = v
		}
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			g.APIKey = v
		}
	}
}

// Validate rejects settings the resolver cannot run with.
func (c *AppConfig) Validate() error {
	r := c.Resolver
	if r.HighThreshold <= 0 || r.HighThreshold > 1 {
		return fmt.Errorf("resolver.high_threshold must be in (0,1], got %v", r.HighThreshold)
	}
	if r.MediumThreshold < 0 || r.MediumThreshold > r.HighThreshold {
		return fmt.Errorf("resolver.medium_threshold must be in [0,high_threshold], got %v", r.MediumThreshold)
	}
	for name, v := range map[string]float64{
		"resolver.cutoff_match_threshold":   r.CutoffMatchThreshold,
		"resolver.clarification_confidence": r.ClarificationConfidence,
		"resolver.static_cutoff_confidence": r.StaticCutoffConfidence,
		"resolver.fallback_confidence":      r.FallbackConfidence,
		"variation.probability":             c.Variation.Probability,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
	}
	if err := oneOf("embedder.type", c.Embedder.Type, "gemini", "tfidf", "none"); err != nil {
		return err
	}
	if err := oneOf("embedding_cache.type", c.EmbeddingCache.Type, "file", "qdrant", "none"); err != nil {
		return err
	}
	if err := oneOf("history.type", c.History.Type, "memory", "redis"); err != nil {
		return err
	}
	if c.History.Type == "redis" && c.Redis.Addr == "" {
		return errors.New("history.type redis requires redis.addr")
	}
	if err := oneOf("fallback.type", c.Fallback.Type, "static", "website"); err != nil {
		return err
	}
	if c.FAQ.Path == "" {
		return errors.New("faq.path is required")
	}
	return nil
}

func oneOf(field, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s: unknown value %q (want one of %v)", field, v, allowed)
}

func (c *AppConfig) HistoryTTL() time.Duration {
	return time.Duration(c.History.TTLMinutes) * time.Minute
}

func (c *AppConfig) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSecs) * time.Second
}

func (c *AppConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSecs) * time.Second
}
