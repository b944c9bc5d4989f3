// Package sheet はユーザー管理のスプレッドシートCSVエクスポートから履歴系列を取得します。
package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/domain/entity"
	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/parse"
)

// Config holds configuration for the sheet export fetcher.
type Config struct {
	// ExportURL is the CSV export location. Empty means no historical
	// source is configured, which is not an error.
	ExportURL string
}

// Fetcher はCSVエクスポートをダウンロードしてパーサーに委譲するHistoricalRepository実装です。
type Fetcher struct {
	cfg    Config
	client *http.Client
}

// NewFetcher は指定された設定とHTTPクライアントでFetcherの新しいインスタンスを生成します。
func NewFetcher(cfg Config, client *http.Client) *Fetcher {
	return &Fetcher{cfg: cfg, client: client}
}

// FetchSeries は設定されたURLからCSVを取得し、価格ポイントの系列として返します。
// URLが未設定の場合はフェッチせずに空の系列を返します（履歴データは任意）。
func (f *Fetcher) FetchSeries(ctx context.Context) ([]entity.PricePoint, error) {
	if f.cfg.ExportURL == "" {
		return []entity.PricePoint{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.ExportURL, nil)
	if err != nil {
		return nil, err
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("sheet export http %d", res.StatusCode)
	}

	return parse.CSV(res.Body)
}
