package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains all runtime settings for the interview service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	AllowedOrigins   []string
	DefaultSessionID string
	LogFormat        string
	Debug            bool

	LLMProvider    string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	LLMTemperature float64
	LLMTimeout     time.Duration
	LLMRateLimit   float64

	ShortTermBackend string
	RedisURL         string
	UpstashURL       string
	UpstashToken     string
	ShortTermTTL     time.Duration

	DatabaseURL string
}

// NewViper returns a viper instance with defaults registered, the optional env file
// (APP_ENV_FILE, default .env) read, and environment variables bound.
// Environment variables take precedence over the env file.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	envFile := strings.TrimSpace(os.Getenv("APP_ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat env file %s: %w", envFile, err)
	}

	v.AutomaticEnv()
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("APP_METRICS_NAMESPACE", "interviewd")
	v.SetDefault("APP_ALLOWED_ORIGINS", "*")
	v.SetDefault("APP_DEFAULT_SESSION_ID", "voice-agent-session")
	v.SetDefault("APP_LOG_FORMAT", "text")
	v.SetDefault("APP_DEBUG", "false")
	v.SetDefault("LLM_PROVIDER", "auto")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_TEMPERATURE", "0.1")
	v.SetDefault("LLM_TIMEOUT", "60s")
	v.SetDefault("LLM_RATE_LIMIT_RPS", "0")
	v.SetDefault("SHORT_TERM_BACKEND", "auto")
	v.SetDefault("SHORT_TERM_TTL", "1h")
}

// Load reads the env file and environment variables and applies safe defaults.
func Load() (Config, error) {
	v, err := NewViper()
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// FromViper builds and validates a Config from an already prepared viper instance,
// which lets CLI flags bound with BindPFlag take part.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		BindAddr:         bindAddr(v),
		MetricsNamespace: trimmed(v, "APP_METRICS_NAMESPACE"),
		AllowedOrigins:   splitList(v.GetString("APP_ALLOWED_ORIGINS")),
		DefaultSessionID: trimmed(v, "APP_DEFAULT_SESSION_ID"),
		LogFormat:        strings.ToLower(trimmed(v, "APP_LOG_FORMAT")),
		LLMProvider:      strings.ToLower(trimmed(v, "LLM_PROVIDER")),
		GeminiAPIKey:     trimmed(v, "GEMINI_API_KEY"),
		GeminiModel:      trimmed(v, "GEMINI_MODEL"),
		GeminiBaseURL:    trimmed(v, "GEMINI_BASE_URL"),
		OpenAIAPIKey:     trimmed(v, "OPENAI_API_KEY"),
		OpenAIModel:      trimmed(v, "OPENAI_MODEL"),
		OpenAIBaseURL:    trimmed(v, "OPENAI_BASE_URL"),
		ShortTermBackend: strings.ToLower(trimmed(v, "SHORT_TERM_BACKEND")),
		RedisURL:         trimmed(v, "REDIS_URL"),
		UpstashURL:       trimmed(v, "UPSTASH_REDIS_REST_URL"),
		UpstashToken:     trimmed(v, "UPSTASH_REDIS_REST_TOKEN"),
		DatabaseURL:      trimmed(v, "DATABASE_URL"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = trimmed(v, "SUPABASE_DB_URL")
	}

	var err error
	cfg.ShutdownTimeout, err = durationFrom(v, "APP_SHUTDOWN_TIMEOUT")
	if err != nil {
		return Config{}, err
	}
	cfg.LLMTimeout, err = durationFrom(v, "LLM_TIMEOUT")
	if err != nil {
		return Config{}, err
	}
	cfg.ShortTermTTL, err = durationFrom(v, "SHORT_TERM_TTL")
	if err != nil {
		return Config{}, err
	}
	cfg.LLMTemperature, err = floatFrom(v, "LLM_TEMPERATURE")
	if err != nil {
		return Config{}, err
	}
	cfg.LLMRateLimit, err = floatFrom(v, "LLM_RATE_LIMIT_RPS")
	if err != nil {
		return Config{}, err
	}
	cfg.Debug, err = boolFrom(v, "APP_DEBUG")
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DefaultSessionID == "" {
		return fmt.Errorf("APP_DEFAULT_SESSION_ID must not be empty")
	}
	if c.ShortTermTTL < time.Second {
		return fmt.Errorf("SHORT_TERM_TTL must be at least 1s")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0, 2]")
	}
	if c.LLMRateLimit < 0 {
		return fmt.Errorf("LLM_RATE_LIMIT_RPS must be >= 0")
	}
	switch c.LLMProvider {
	case "auto", "gemini", "openai", "mock":
	default:
		return fmt.Errorf("invalid LLM_PROVIDER: %q (expected auto|gemini|openai|mock)", c.LLMProvider)
	}
	switch c.ShortTermBackend {
	case "auto", "redis", "upstash", "memory":
	default:
		return fmt.Errorf("invalid SHORT_TERM_BACKEND: %q (expected auto|redis|upstash|memory)", c.ShortTermBackend)
	}
	switch c.LogFormat {
	case "text", "json", "pretty":
	default:
		return fmt.Errorf("invalid APP_LOG_FORMAT: %q (expected text|json|pretty)", c.LogFormat)
	}
	return nil
}

// AllowAnyOrigin reports whether the CORS allow-list is the wildcard.
func (c Config) AllowAnyOrigin() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// bindAddr prefers APP_BIND_ADDR, then PORT (as ":PORT"), then :3001.
func bindAddr(v *viper.Viper) string {
	if addr := trimmed(v, "APP_BIND_ADDR"); addr != "" {
		return addr
	}
	if port := trimmed(v, "PORT"); port != "" {
		return ":" + strings.TrimPrefix(port, ":")
	}
	return ":3001"
}

func trimmed(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func durationFrom(v *viper.Viper, key string) (time.Duration, error) {
	raw := trimmed(v, key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func floatFrom(v *viper.Viper, key string) (float64, error) {
	raw := trimmed(v, key)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func boolFrom(v *viper.Viper, key string) (bool, error) {
	raw := trimmed(v, key)
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
