package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds service configuration. All three provider keys are optional;
// an empty key routes every call for that provider straight to the mock path.
type Config struct {
	HTTPPort string

	AlphaVantageAPIKey string
	AlphaVantageURL    string
	NewsAPIKey         string
	NewsAPIURL         string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	HistoryCacheTTL   time.Duration

	RedisAddr string // optional; empty means in-memory cache

	AllowedOrigins []string

	LogLevel string
	LogFile  string
}

// LoadConfig loads configuration from environment variables with defaults.
func LoadConfig() *Config {
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8000")
	viper.SetDefault("ALPHA_VANTAGE_URL", "https://www.alphavantage.co/query")
	viper.SetDefault("NEWS_API_URL", "https://newsapi.org/v2")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 30)
	viper.SetDefault("RATE_LIMIT_WINDOW_SEC", 60)
	viper.SetDefault("HISTORY_CACHE_TTL_SEC", 3600)
	viper.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FILE", "")

	return &Config{
		HTTPPort:           viper.GetString("PORT"),
		AlphaVantageAPIKey: viper.GetString("ALPHA_VANTAGE_API_KEY"),
		AlphaVantageURL:    viper.GetString("ALPHA_VANTAGE_URL"),
		NewsAPIKey:         viper.GetString("NEWS_API_KEY"),
		NewsAPIURL:         viper.GetString("NEWS_API_URL"),
		OpenAIAPIKey:       viper.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL:      viper.GetString("OPENAI_BASE_URL"),
		OpenAIModel:        viper.GetString("OPENAI_MODEL"),
		RateLimitRequests:  viper.GetInt("RATE_LIMIT_REQUESTS"),
		RateLimitWindow:    time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SEC")) * time.Second,
		HistoryCacheTTL:    time.Duration(viper.GetInt("HISTORY_CACHE_TTL_SEC")) * time.Second,
		RedisAddr:          viper.GetString("REDIS_ADDR"),
		AllowedOrigins:     splitCSV(viper.GetString("CORS_ORIGINS")),
		LogLevel:           viper.GetString("LOG_LEVEL"),
		LogFile:            viper.GetString("LOG_FILE"),
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
