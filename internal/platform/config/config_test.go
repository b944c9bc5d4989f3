package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected default addr: %q", cfg.Server.Addr)
	}
	if cfg.Market.BaseURL != "https://api.twelvedata.com" {
		t.Errorf("unexpected default base url: %q", cfg.Market.BaseURL)
	}
	if cfg.Market.Symbol != "SPY" {
		t.Errorf("unexpected default symbol: %q", cfg.Market.Symbol)
	}
	if cfg.Market.Timeout != 10*time.Second {
		t.Errorf("unexpected default timeout: %v", cfg.Market.Timeout)
	}
	if cfg.Sheet.ExportURL != "" {
		t.Errorf("sheet url must default to unset, got %q", cfg.Sheet.ExportURL)
	}
	if len(cfg.News.FeedURLs) != 2 {
		t.Errorf("unexpected default feeds: %v", cfg.News.FeedURLs)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
market:
  api_key: "file-key"
  symbol: "MORTGAGE30US"
sheet:
  export_url: "https://sheets.example/export.csv"
news:
  feed_urls:
    - "https://a.example/rss"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("unexpected addr: %q", cfg.Server.Addr)
	}
	if cfg.Market.APIKey != "file-key" {
		t.Errorf("unexpected api key: %q", cfg.Market.APIKey)
	}
	if cfg.Sheet.ExportURL != "https://sheets.example/export.csv" {
		t.Errorf("unexpected sheet url: %q", cfg.Sheet.ExportURL)
	}
	if !reflect.DeepEqual(cfg.News.FeedURLs, []string{"https://a.example/rss"}) {
		t.Errorf("unexpected feeds: %v", cfg.News.FeedURLs)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("market:\n  api_key: \"file-key\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TWELVE_DATA_API_KEY", "env-key")
	t.Setenv("CHART_SYMBOL", "DGS10")
	t.Setenv("NEWS_FEED_URLS", "https://x.example/rss, https://y.example/rss")
	t.Setenv("HTTP_TIMEOUT", "3s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Market.APIKey != "env-key" {
		t.Errorf("env must override file, got %q", cfg.Market.APIKey)
	}
	if cfg.Market.Symbol != "DGS10" {
		t.Errorf("unexpected symbol: %q", cfg.Market.Symbol)
	}
	if !reflect.DeepEqual(cfg.News.FeedURLs, []string{"https://x.example/rss", "https://y.example/rss"}) {
		t.Errorf("unexpected feeds: %v", cfg.News.FeedURLs)
	}
	if cfg.Market.Timeout != 3*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.Market.Timeout)
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "not-a-duration")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for invalid HTTP_TIMEOUT")
	}
}
