// Package usecase はニュースフィード集約のビジネスロジックを実装します。
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ikcerog/lenderdash-dev/internal/feature/news/domain/entity"
)

// FeedTTL はフィード単位のキャッシュ有効期間です。
const FeedTTL = time.Hour

// FeedRepository はニュースフィードの取得を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type FeedRepository interface {
	FetchFeed(ctx context.Context, feedURL string) (entity.Feed, error)
}

// FeedCache はフィードURLごとのTTL付きメモ化を抽象化します。
type FeedCache interface {
	Get(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (entity.Feed, error)) (entity.Feed, bool, error)
}

// newsUsecase は設定されたフィード群をキャッシュ経由で集約します。
type newsUsecase struct {
	feedURLs []string
	repo     FeedRepository
	cache    FeedCache
}

// NewNewsUsecase はnewsUsecaseの新しいインスタンスを生成します。
func NewNewsUsecase(feedURLs []string, repo FeedRepository, cache FeedCache) *newsUsecase {
	return &newsUsecase{feedURLs: feedURLs, repo: repo, cache: cache}
}

// GetNews は設定された全フィードを取得して返します。
// 個々のフィードの失敗はそのフィードの欠落として縮退し、全体のエラーにはしません。
func (nu *newsUsecase) GetNews(ctx context.Context) ([]entity.Feed, error) {
	feeds := make([]entity.Feed, 0, len(nu.feedURLs))
	for _, feedURL := range nu.feedURLs {
		feed, _, err := nu.cache.Get(ctx, feedURL, FeedTTL, func(ctx context.Context) (entity.Feed, error) {
			return nu.repo.FetchFeed(ctx, feedURL)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// 1つのフィードが落ちていても残りは返す
			slog.Warn("news feed unavailable, skipping", "url", feedURL, "error", err)
			continue
		}
		feeds = append(feeds, feed)
	}
	return feeds, nil
}
