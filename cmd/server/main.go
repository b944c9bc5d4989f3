package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"github.com/ikcerog/lenderdash-dev/internal/app/router"
	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/adapters/sheet"
	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/adapters/twelvedata"
	chartentity "github.com/ikcerog/lenderdash-dev/internal/feature/chart/domain/entity"
	charthandler "github.com/ikcerog/lenderdash-dev/internal/feature/chart/transport/handler"
	chartusecase "github.com/ikcerog/lenderdash-dev/internal/feature/chart/usecase"
	"github.com/ikcerog/lenderdash-dev/internal/feature/news/adapters/rss"
	newsentity "github.com/ikcerog/lenderdash-dev/internal/feature/news/domain/entity"
	newshandler "github.com/ikcerog/lenderdash-dev/internal/feature/news/transport/handler"
	newsusecase "github.com/ikcerog/lenderdash-dev/internal/feature/news/usecase"
	"github.com/ikcerog/lenderdash-dev/internal/platform/cache"
	"github.com/ikcerog/lenderdash-dev/internal/platform/config"
	platformhttp "github.com/ikcerog/lenderdash-dev/internal/platform/http"
	platformredis "github.com/ikcerog/lenderdash-dev/internal/platform/redis"
	"github.com/ikcerog/lenderdash-dev/internal/platform/scheduler"
	"github.com/ikcerog/lenderdash-dev/internal/shared/ratelimiter"
)

func main() {
	// .env は存在すれば読む（既存の環境変数を上書きしない）
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}

	// Redis（任意。未設定/接続不可ならプロセス内キャッシュのみで動作）
	var rdb *redisv9.Client
	if cfg.Redis.Host != "" {
		if tmp, err := platformredis.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password); err != nil {
			log.Println("[WARN] Redis unavailable. Running with in-process cache only.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	client := platformhttp.NewHTTPClient(cfg.Market.Timeout)

	// Repository
	limiter := ratelimiter.NewRateLimiter(8, time.Minute)
	marketRepo := twelvedata.NewMarket(twelvedata.Config{
		APIKey:  cfg.Market.APIKey,
		BaseURL: cfg.Market.BaseURL,
	}, client, limiter)
	sheetRepo := sheet.NewFetcher(sheet.Config{ExportURL: cfg.Sheet.ExportURL}, client)
	feedRepo := rss.NewFetcher(client, rss.DefaultHeadlineLimit)

	// ソース単位のTTLキャッシュ
	seriesCache := cache.New[[]chartentity.PricePoint](rdb, "series")
	feedCache := cache.New[newsentity.Feed](rdb, "news")

	// Usecase
	chartUC := chartusecase.NewChartUsecase(sheetRepo, marketRepo, seriesCache, cfg.Sheet.ExportURL)
	newsUC := newsusecase.NewNewsUsecase(cfg.News.FeedURLs, feedRepo, feedCache)

	// Handler
	chartH := charthandler.NewChartHandler(chartUC)
	newsH := newshandler.NewNewsHandler(newsUC)

	// ルータ生成
	router := router.NewRouter(chartH, newsH)

	// キャッシュの事前ウォーム（任意）
	if cfg.Schedule.WarmCron != "" {
		sched := scheduler.New()
		warm := func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Market.Timeout+time.Minute)
			defer cancel()
			if _, err := chartUC.GetChart(ctx, cfg.Market.Symbol); err != nil {
				slog.Error("cache warm failed", "symbol", cfg.Market.Symbol, "error", err)
			}
		}
		if err := sched.Register("chart warm", cfg.Schedule.WarmCron, warm); err != nil {
			log.Fatal(err)
		}
		sched.Start()
		defer sched.Stop()
	}

	if cfg.Market.APIKey == "" {
		log.Println("[WARN] TWELVE_DATA_API_KEY is not set. Live fetches will fail.")
	}

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatal(err)
	}
}
