package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Analysis  AnalysisConfig
	Traffic   TrafficConfig
	Advisor   AdvisorConfig
	RateLimit RateLimitConfig
	SQLite    SQLiteConfig
	Metrics   MetricsConfig
}

type AppConfig struct {
	Env      string
	LogLevel string
}

type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

type AnalysisConfig struct {
	DefaultEdgeLatencyMs float64
	LatencyEntryNode     string
}

type TrafficConfig struct {
	MaxVisitsPerNode int
	TimeoutMs        float64
	RetryRate        float64
	FailureRate      float64
}

type AdvisorConfig struct {
	APIKey      string
	Enabled     bool
	BaseURL     string
	Model       string
	TimeoutMs   int
	Temperature float64
	MaxTokens   int
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type SQLiteConfig struct {
	DBPath string
}

type MetricsConfig struct {
	Enabled bool
}

// MaxVisitsPerNodeLimit bounds the per-node expansion cap of the traffic
// engines, whether it comes from the environment or a request body.
const MaxVisitsPerNodeLimit = 100

// Default returns the configuration Load produces with an empty environment.
// Load reads its fallbacks from here.
func Default() *Config {
	return &Config{
		App:    AppConfig{Env: "development", LogLevel: "info"},
		Server: ServerConfig{Port: 3000, AllowedOrigins: []string{"*"}},
		Analysis: AnalysisConfig{
			DefaultEdgeLatencyMs: 10,
			LatencyEntryNode:     "api-gateway",
		},
		Traffic: TrafficConfig{
			MaxVisitsPerNode: 3,
			TimeoutMs:        2000,
			RetryRate:        1.0,
			FailureRate:      0.3,
		},
		Advisor: AdvisorConfig{
			Enabled:     true,
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			TimeoutMs:   8000,
			Temperature: 0.5,
			MaxTokens:   1500,
		},
		RateLimit: RateLimitConfig{RequestsPerSecond: 20, Burst: 40},
		SQLite:    SQLiteConfig{DBPath: "./data/diagrams.db"},
		Metrics:   MetricsConfig{Enabled: true},
	}
}

func Load() (*Config, error) {
	d := Default()
	cfg := &Config{
		App: AppConfig{
			Env:      getEnv("APP_ENV", d.App.Env),
			LogLevel: getEnv("LOG_LEVEL", d.App.LogLevel),
		},
		Server: ServerConfig{
			Port:           getEnvInt("PORT", d.Server.Port),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", d.Server.AllowedOrigins),
		},
		Analysis: AnalysisConfig{
			DefaultEdgeLatencyMs: getEnvFloat("DEFAULT_EDGE_LATENCY_MS", d.Analysis.DefaultEdgeLatencyMs),
			LatencyEntryNode:     getEnv("LATENCY_ENTRY_NODE", d.Analysis.LatencyEntryNode),
		},
		Traffic: TrafficConfig{
			MaxVisitsPerNode: getEnvInt("MAX_VISITS_PER_NODE", d.Traffic.MaxVisitsPerNode),
			TimeoutMs:        getEnvFloat("TRAFFIC_TIMEOUT_MS", d.Traffic.TimeoutMs),
			RetryRate:        getEnvFloat("TRAFFIC_RETRY_RATE", d.Traffic.RetryRate),
			FailureRate:      getEnvFloat("TRAFFIC_FAILURE_RATE", d.Traffic.FailureRate),
		},
		Advisor: AdvisorConfig{
			APIKey:      getEnv("GROQ_API_KEY", ""),
			Enabled:     getEnvBool("ENABLE_AI", d.Advisor.Enabled),
			BaseURL:     getEnv("AI_BASE_URL", d.Advisor.BaseURL),
			Model:       getEnv("AI_MODEL", d.Advisor.Model),
			TimeoutMs:   getEnvInt("AI_TIMEOUT_MS", d.Advisor.TimeoutMs),
			Temperature: getEnvFloat("AI_TEMPERATURE", d.Advisor.Temperature),
			MaxTokens:   getEnvInt("AI_MAX_TOKENS", d.Advisor.MaxTokens),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", d.RateLimit.RequestsPerSecond),
			Burst:             getEnvInt("RATE_LIMIT_BURST", d.RateLimit.Burst),
		},
		SQLite: SQLiteConfig{
			DBPath: d.SQLite.DBPath,
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", d.Metrics.Enabled),
		},
	}

	// An explicitly empty SQLITE_DB_PATH disables diagram storage.
	if v, set := os.LookupEnv("SQLITE_DB_PATH"); set {
		cfg.SQLite.DBPath = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535. Got: %d", c.Server.Port)
	}
	if c.Analysis.DefaultEdgeLatencyMs < 0 {
		return fmt.Errorf("DEFAULT_EDGE_LATENCY_MS must be >= 0")
	}
	if c.Traffic.MaxVisitsPerNode < 1 || c.Traffic.MaxVisitsPerNode > MaxVisitsPerNodeLimit {
		return fmt.Errorf("MAX_VISITS_PER_NODE must be between 1 and %d", MaxVisitsPerNodeLimit)
	}
	if c.Traffic.TimeoutMs <= 0 {
		return fmt.Errorf("TRAFFIC_TIMEOUT_MS must be > 0")
	}
	if c.Traffic.RetryRate < 0 || c.Traffic.FailureRate < 0 {
		return fmt.Errorf("TRAFFIC_RETRY_RATE and TRAFFIC_FAILURE_RATE must be >= 0")
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be >= 0")
	}
	if c.Advisor.TimeoutMs <= 0 {
		return fmt.Errorf("AI_TIMEOUT_MS must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v != "false" && v != "0"
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
