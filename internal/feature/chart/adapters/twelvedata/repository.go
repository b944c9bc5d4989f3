package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/adapters/twelvedata/dto"
	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/domain/entity"
	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/parse"
	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/usecase"
	"github.com/ikcerog/lenderdash-dev/internal/shared/ratelimiter"
)

// outputSize は1回のリクエストで取得する日足の件数です。
// マージ窓（180日）を営業日換算で十分に覆う件数にしています。
const outputSize = 200

// Market はTwelve Data外部APIから日足の終値を取得するMarketRepository実装です。
type Market struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// MarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*Market)(nil)

// NewMarket は指定された設定とHTTPクライアントでMarketの新しいインスタンスを生成します。
// limiter はnil可で、その場合レート制限なしで動作します。
func NewMarket(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Market {
	return &Market{cfg: cfg, client: client, limiter: limiter}
}

// GetDailyCloses はTwelve Data APIから日足の時系列を取得し、
// (日付, 終値) の系列として返します。行の解釈はパーサーに委譲されるため、
// 解釈できない行は致命的エラーではなく破棄されます。
func (m *Market) GetDailyCloses(ctx context.Context, symbol string) ([]entity.PricePoint, error) {
	if m.limiter != nil {
		m.limiter.WaitIfNeeded()
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1day")
	q.Set("outputsize", strconv.Itoa(outputSize))
	q.Set("apikey", m.cfg.APIKey)

	u := fmt.Sprintf("%s/time_series?%s", m.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	rows := make([]parse.RawRow, 0, len(body.Values))
	for _, v := range body.Values {
		rows = append(rows, parse.RawRow{Date: v.Datetime, Close: v.Close})
	}
	return parse.Rows(rows), nil
}
