// Package usecase はチャート系列の取得とマージのビジネスロジックを実装します。
package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/domain"
	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/domain/entity"
)

const (
	// HistoricalTTL はスプレッドシート由来の履歴系列のキャッシュ有効期間です。
	HistoricalTTL = 24 * time.Hour
	// LiveTTL はライブAPI由来の系列のキャッシュ有効期間です。
	LiveTTL = time.Hour
)

// HistoricalRepository はスプレッドシートエクスポートからの系列取得を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type HistoricalRepository interface {
	FetchSeries(ctx context.Context) ([]entity.PricePoint, error)
}

// MarketRepository はライブの株価データを取得するリポジトリのインターフェイスです。
// 外部 API の実装を抽象化します。
type MarketRepository interface {
	GetDailyCloses(ctx context.Context, symbol string) ([]entity.PricePoint, error)
}

// SeriesCache はソースごとのTTL付きメモ化を抽象化します。
// 2番目の戻り値はリフレッシュ失敗後に古い値が返されたことを示します。
type SeriesCache interface {
	Get(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) ([]entity.PricePoint, error)) ([]entity.PricePoint, bool, error)
}

// Chart は描画用に切り出されたマージ済み系列と、ソースごとの鮮度情報です。
type Chart struct {
	Points          []entity.PricePoint
	HistoricalStale bool
	LiveStale       bool
}

// Latest はマージ済み系列の末尾から導出される最新値メトリクスです。
type Latest struct {
	Date     time.Time
	Close    float64
	Previous float64
	Delta    float64
}

// chartUsecase は履歴ソースとライブソースをキャッシュ経由で取得しマージします。
type chartUsecase struct {
	historical HistoricalRepository
	market     MarketRepository
	cache      SeriesCache
	sheetURL   string // 履歴ソースのキャッシュキー。空なら履歴ソースは無効。
}

// NewChartUsecase はchartUsecaseの新しいインスタンスを生成します。
// sheetURL が空の場合、履歴ソースはフェッチされず系列はライブのみで構成されます。
func NewChartUsecase(historical HistoricalRepository, market MarketRepository, cache SeriesCache, sheetURL string) *chartUsecase {
	return &chartUsecase{historical: historical, market: market, cache: cache, sheetURL: sheetURL}
}

// GetChart は両ソースを独立に（並行して）取得し、マージして描画用に切り出します。
//
// ソース単位の失敗はそのソースを空として縮退させ、残りのデータでチャートを
// 構成します。両方失敗した場合は空のチャートになります（クラッシュしない）。
// エラーを返すのはリクエストがキャンセルされた場合のみです。
func (cu *chartUsecase) GetChart(ctx context.Context, symbol string) (Chart, error) {
	var (
		wg                   sync.WaitGroup
		historical, live     []entity.PricePoint
		histStale, liveStale bool
		histErr, liveErr     error
	)

	// 2つのフェッチに順序依存はなく、マージャーは両方の結果だけを必要とする
	wg.Add(2)
	go func() {
		defer wg.Done()
		if cu.sheetURL == "" {
			historical = []entity.PricePoint{}
			return
		}
		historical, histStale, histErr = cu.cache.Get(ctx, cu.sheetURL, HistoricalTTL, cu.historical.FetchSeries)
	}()
	go func() {
		defer wg.Done()
		live, liveStale, liveErr = cu.cache.Get(ctx, symbol, LiveTTL, func(ctx context.Context) ([]entity.PricePoint, error) {
			return cu.market.GetDailyCloses(ctx, symbol)
		})
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Chart{}, err
	}
	if histErr != nil {
		slog.Error("historical source unavailable, rendering without it", "error", histErr)
		historical = nil
	}
	if liveErr != nil {
		slog.Error("live source unavailable, rendering without it", "symbol", symbol, "error", liveErr)
		live = nil
	}

	merged := domain.Merge(historical, live)
	return Chart{
		Points:          domain.ForDisplay(merged),
		HistoricalStale: histStale,
		LiveStale:       liveStale,
	}, nil
}

// GetLatest はマージ済み系列の末尾2点から最新値と前回値の差分を導出します。
// 系列が空の場合は domain.ErrNoData を返します。1点しか無い場合の差分は0です。
func (cu *chartUsecase) GetLatest(ctx context.Context, symbol string) (Latest, error) {
	chart, err := cu.GetChart(ctx, symbol)
	if err != nil {
		return Latest{}, err
	}
	points := chart.Points
	if len(points) == 0 {
		return Latest{}, domain.ErrNoData
	}

	last := points[len(points)-1]
	previous := last.Close
	if len(points) > 1 {
		previous = points[len(points)-2].Close
	}
	return Latest{
		Date:     last.Date,
		Close:    last.Close,
		Previous: previous,
		Delta:    last.Close - previous,
	}, nil
}
