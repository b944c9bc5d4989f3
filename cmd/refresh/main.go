package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/adapters/sheet"
	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/adapters/twelvedata"
	chartentity "github.com/ikcerog/lenderdash-dev/internal/feature/chart/domain/entity"
	chartusecase "github.com/ikcerog/lenderdash-dev/internal/feature/chart/usecase"
	"github.com/ikcerog/lenderdash-dev/internal/platform/cache"
	"github.com/ikcerog/lenderdash-dev/internal/platform/config"
	platformhttp "github.com/ikcerog/lenderdash-dev/internal/platform/http"
	platformredis "github.com/ikcerog/lenderdash-dev/internal/platform/redis"
	"github.com/ikcerog/lenderdash-dev/internal/shared/ratelimiter"
)

// refresh は共有Redisキャッシュを1回だけ温めるワンショットコマンドです。
// cronなどから定期実行すると、サーバーのリクエストパスで外部フェッチが
// 発生しにくくなります。
func main() {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}

	rdb, err := platformredis.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password)
	if err != nil {
		log.Fatal("refresh requires Redis (the warmed cache must outlive this process):", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Println("[ERROR] Failed to close Redis client:", err)
		}
	}()

	client := platformhttp.NewHTTPClient(cfg.Market.Timeout)
	limiter := ratelimiter.NewRateLimiter(8, time.Minute)
	marketRepo := twelvedata.NewMarket(twelvedata.Config{
		APIKey:  cfg.Market.APIKey,
		BaseURL: cfg.Market.BaseURL,
	}, client, limiter)
	sheetRepo := sheet.NewFetcher(sheet.Config{ExportURL: cfg.Sheet.ExportURL}, client)
	seriesCache := cache.New[[]chartentity.PricePoint](rdb, "series")

	uc := chartusecase.NewChartUsecase(sheetRepo, marketRepo, seriesCache, cfg.Sheet.ExportURL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	chart, err := uc.GetChart(ctx, cfg.Market.Symbol)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("refresh ok: %s, %d points", cfg.Market.Symbol, len(chart.Points))
}
