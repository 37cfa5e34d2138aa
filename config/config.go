package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config stores all configuration for the service.
type Config struct {
	Port              string        `mapstructure:"PORT"`
	GinMode           string        `mapstructure:"GIN_MODE"`
	DevMode           bool          `mapstructure:"DEV_MODE"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	DataDir           string        `mapstructure:"DATA_DIR"`
	FetchTimeout      time.Duration `mapstructure:"FETCH_TIMEOUT"`
	FetchMaxRedirects int           `mapstructure:"FETCH_MAX_REDIRECTS"`
	UserAgent         string        `mapstructure:"USER_AGENT"`
	DataForSEOLogin   string        `mapstructure:"DATAFORSEO_LOGIN"`
	DataForSEOPass    string        `mapstructure:"DATAFORSEO_PASSWORD"`
	DataForSEOBaseURL string        `mapstructure:"DATAFORSEO_BASE_URL"`
	MetricsTimeout    time.Duration `mapstructure:"METRICS_TIMEOUT"`
	ResendAPIKey      string        `mapstructure:"RESEND_API_KEY"`
	ReportFromEmail   string        `mapstructure:"REPORT_FROM_EMAIL"`
	RateLimitRPS      float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst    float64       `mapstructure:"RATE_LIMIT_BURST"`
}

var defaults = map[string]any{
	"PORT":                "8082",
	"GIN_MODE":            "release",
	"DEV_MODE":            false,
	"LOG_LEVEL":           "info",
	"DATA_DIR":            "data",
	"FETCH_TIMEOUT":       "10s",
	"FETCH_MAX_REDIRECTS": 5,
	"USER_AGENT":          "",
	"DATAFORSEO_LOGIN":    "",
	"DATAFORSEO_PASSWORD": "",
	"DATAFORSEO_BASE_URL": "https://api.dataforseo.com/v3",
	"METRICS_TIMEOUT":     "30s",
	"RESEND_API_KEY":      "",
	"REPORT_FROM_EMAIL":   "GEO Optimizer <reports@geo-optimizer.dev>",
	"RATE_LIMIT_RPS":      2,
	"RATE_LIMIT_BURST":    5,
}

// LoadEnv loads .env.development when present, falling back to .env. It
// reports whether any file was loaded. Variables already set in the
// environment are never overwritten.
func LoadEnv(dir string) (bool, error) {
	for _, name := range []string{".env.development", ".env"} {
		err := godotenv.Load(filepath.Join(dir, name))
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return false, err
		}
	}
	return false, nil
}

// Load reads configuration from the environment. Call LoadEnv first to pull
// in dotenv files.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
