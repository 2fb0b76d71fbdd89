package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	BaseURL        string `mapstructure:"base_url"`
	CategoriesFile string `mapstructure:"categories_file"`
	SinksFile      string `mapstructure:"sinks_file"`

	RequestDelayMs        int           `mapstructure:"request_delay_ms"`
	MaxRetries            int           `mapstructure:"max_retries"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestDelay          time.Duration `mapstructure:"-"`
	RequestTimeout        time.Duration `mapstructure:"-"`

	Workers             int `mapstructure:"workers"`
	MaxPagesPerCategory int `mapstructure:"max_pages_per_category"`
	ItemsPerPageHint    int `mapstructure:"items_per_page_hint"`

	TargetLocalesRaw string   `mapstructure:"target_locales"`
	TargetLocales    []string `mapstructure:"-"`

	ExtractAPIKey string `mapstructure:"extract_api_key"`
	ExtractAPIURL string `mapstructure:"extract_api_url"`

	TranslateAPIKey         string        `mapstructure:"translate_api_key"`
	TranslateAPIURL         string        `mapstructure:"translate_api_url"`
	TranslateModel          string        `mapstructure:"translate_model"`
	TranslateTimeoutSeconds int64         `mapstructure:"translate_timeout_seconds"`
	TranslateTimeout        time.Duration `mapstructure:"-"`

	StorageType string `mapstructure:"storage_type"`
	ToolsDir    string `mapstructure:"tools_dir"`
	DataDir     string `mapstructure:"data_dir"`
	BBoltPath   string `mapstructure:"bbolt_path"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "toolpedia-harvester")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_url", "https://www.futurepedia.io")
	v.SetDefault("categories_file", "./configs/categories.yaml")
	v.SetDefault("sinks_file", "")
	v.SetDefault("request_delay_ms", 1000)
	v.SetDefault("max_retries", 3)
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("workers", 4)
	v.SetDefault("max_pages_per_category", 200)
	v.SetDefault("items_per_page_hint", 20)
	v.SetDefault("target_locales", "es,pt,fr,de")
	v.SetDefault("extract_api_key", "")
	v.SetDefault("extract_api_url", "https://api.fetchfox.ai/v1/scrape")
	v.SetDefault("translate_api_key", "")
	v.SetDefault("translate_api_url", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("translate_model", "deepseek/deepseek-r1-0528:free")
	v.SetDefault("translate_timeout_seconds", 60)
	v.SetDefault("storage_type", "file")
	v.SetDefault("tools_dir", "./data/tools")
	v.SetDefault("data_dir", "./data/categories")
	v.SetDefault("bbolt_path", "./data/tools.db")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.RequestDelayMs < 0 {
		return nil, fmt.Errorf("invalid request_delay_ms (must not be negative)")
	}
	if cfg.MaxRetries <= 0 {
		return nil, fmt.Errorf("invalid max_retries (must be positive)")
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	if cfg.TranslateTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid translate_timeout_seconds (must be positive seconds)")
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("invalid workers (must be positive)")
	}
	if cfg.MaxPagesPerCategory <= 0 {
		return nil, fmt.Errorf("invalid max_pages_per_category (must be positive)")
	}
	if cfg.ItemsPerPageHint <= 0 {
		return nil, fmt.Errorf("invalid items_per_page_hint (must be positive)")
	}

	cfg.RequestDelay = time.Duration(cfg.RequestDelayMs) * time.Millisecond
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	cfg.TranslateTimeout = time.Duration(cfg.TranslateTimeoutSeconds) * time.Second

	cfg.TargetLocales = splitLocales(cfg.TargetLocalesRaw)
	if len(cfg.TargetLocales) == 0 {
		return nil, fmt.Errorf("invalid target_locales (need at least one locale)")
	}

	return &cfg, nil
}

// splitLocales parses a comma-separated locale list, dropping empties and duplicates.
func splitLocales(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		loc := strings.ToLower(strings.TrimSpace(p))
		if loc == "" || seen[loc] {
			continue
		}
		seen[loc] = true
		out = append(out, loc)
	}
	return out
}
