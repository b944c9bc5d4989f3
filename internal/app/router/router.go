package router

import (
	"github.com/gin-gonic/gin"

	charthandler "github.com/ikcerog/lenderdash-dev/internal/feature/chart/transport/handler"
	newshandler "github.com/ikcerog/lenderdash-dev/internal/feature/news/transport/handler"
	platformhandler "github.com/ikcerog/lenderdash-dev/internal/platform/http/handler"
)

func NewRouter(chart *charthandler.ChartHandler, news *newshandler.NewsHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", platformhandler.Health)

	// チャート用のマージ済み系列と最新値メトリクス
	r.GET("/chart/:code", chart.GetChartHandler)
	r.GET("/chart/:code/latest", chart.GetLatestHandler)

	// ニュースフィード一覧
	r.GET("/news", news.GetNewsHandler)

	return r
}
