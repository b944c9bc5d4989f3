// Package handler はchartフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/domain"
	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/transport/http/dto"
	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/usecase"
)

// dateFormat はレスポンスの日付表現です。
const dateFormat = "2006-01-02"

// ChartUsecase はチャート系列操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ChartUsecase interface {
	GetChart(ctx context.Context, symbol string) (usecase.Chart, error)
	GetLatest(ctx context.Context, symbol string) (usecase.Latest, error)
}

// ChartHandler はチャート系列のHTTPリクエストを処理します。
type ChartHandler struct {
	uc ChartUsecase
}

// NewChartHandler は指定されたusecaseでChartHandlerの新しいインスタンスを生成します。
func NewChartHandler(uc ChartUsecase) *ChartHandler {
	return &ChartHandler{uc: uc}
}

// GetChartHandler は銘柄コードを受け取り、描画用のマージ済み系列をJSONで返します。
//
// エンドポイント例:
// GET /chart/:code
//
// データが全く得られない場合でも空の系列で200を返します（空のチャート）。
func (h *ChartHandler) GetChartHandler(c *gin.Context) {
	code := c.Param("code")

	chart, err := h.uc.GetChart(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	points := make([]dto.PricePointResponse, 0, len(chart.Points))
	for _, p := range chart.Points {
		points = append(points, dto.PricePointResponse{
			Date:  p.Date.UTC().Format(dateFormat),
			Close: p.Close,
		})
	}

	c.JSON(http.StatusOK, dto.ChartResponse{
		Symbol:          code,
		Points:          points,
		HistoricalStale: chart.HistoricalStale,
		LiveStale:       chart.LiveStale,
	})
}

// GetLatestHandler は銘柄コードを受け取り、最新値と前回値の差分をJSONで返します。
//
// エンドポイント例:
// GET /chart/:code/latest
func (h *ChartHandler) GetLatestHandler(c *gin.Context) {
	code := c.Param("code")

	latest, err := h.uc.GetLatest(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.LatestResponse{
		Symbol:   code,
		Date:     latest.Date.UTC().Format(dateFormat),
		Close:    latest.Close,
		Previous: latest.Previous,
		Delta:    latest.Delta,
	})
}
