// Package dto はチャートフィーチャーのHTTPレスポンスDTOを定義します。
package dto

// PricePointResponse は1営業日分の終値のレスポンスDTOです。
type PricePointResponse struct {
	Date  string  `json:"date"`  // 日付（YYYY-MM-DD）
	Close float64 `json:"close"` // 終値
}

// ChartResponse は描画用にマージ済みの系列のレスポンスDTOです。
type ChartResponse struct {
	Symbol          string               `json:"symbol"`
	Points          []PricePointResponse `json:"points"`
	HistoricalStale bool                 `json:"historical_stale"` // 履歴ソースが古い値で提供された
	LiveStale       bool                 `json:"live_stale"`       // ライブソースが古い値で提供された
}

// LatestResponse は最新値メトリクスのレスポンスDTOです。
type LatestResponse struct {
	Symbol   string  `json:"symbol"`
	Date     string  `json:"date"`
	Close    float64 `json:"close"`
	Previous float64 `json:"previous"`
	Delta    float64 `json:"delta"`
}

// ErrorResponse はエラーレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
