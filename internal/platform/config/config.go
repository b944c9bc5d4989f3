// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Market struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Symbol  string `yaml:"symbol"`
		// Timeout applies to all outbound HTTP requests.
		Timeout time.Duration `yaml:"-"`
	} `yaml:"market"`
	Sheet struct {
		// ExportURL is optional; empty disables the historical source.
		ExportURL string `yaml:"export_url"`
	} `yaml:"sheet"`
	News struct {
		FeedURLs []string `yaml:"feed_urls"`
	} `yaml:"news"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Password string `yaml:"password"`
	} `yaml:"redis"`
	Schedule struct {
		// WarmCron pre-warms the chart cache; empty disables it.
		WarmCron string `yaml:"warm_cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; env-only setups
// are supported.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TWELVE_DATA_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("TWELVE_DATA_API_KEY"); v != "" {
		cfg.Market.APIKey = v
	}
	if v := os.Getenv("CHART_SYMBOL"); v != "" {
		cfg.Market.Symbol = v
	}
	if v := os.Getenv("SHEET_EXPORT_URL"); v != "" {
		cfg.Sheet.ExportURL = v
	}
	if v := os.Getenv("NEWS_FEED_URLS"); v != "" {
		cfg.News.FeedURLs = splitList(v)
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		cfg.Redis.Port = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CACHE_WARM_CRON"); v != "" {
		cfg.Schedule.WarmCron = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse HTTP_TIMEOUT: %w", err)
		}
		cfg.Market.Timeout = d
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Market.BaseURL == "" {
		cfg.Market.BaseURL = "https://api.twelvedata.com"
	}
	if cfg.Market.Symbol == "" {
		cfg.Market.Symbol = "SPY"
	}
	if cfg.Market.Timeout == 0 {
		cfg.Market.Timeout = 10 * time.Second
	}
	if len(cfg.News.FeedURLs) == 0 {
		cfg.News.FeedURLs = []string{
			"http://www.mortgagenewsdaily.com/rss/news",
			"https://www.housingwire.com/feed/",
		}
	}
	if cfg.Redis.Port == "" {
		cfg.Redis.Port = "6379"
	}

	return cfg, nil
}

// splitList parses a comma-separated list, trimming blanks.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
