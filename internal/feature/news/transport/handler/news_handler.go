// Package handler はnewsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ikcerog/lenderdash-dev/internal/feature/news/domain/entity"
	"github.com/ikcerog/lenderdash-dev/internal/feature/news/transport/http/dto"
)

// NewsUsecase はニュース集約のユースケースインターフェースを定義します。
type NewsUsecase interface {
	GetNews(ctx context.Context) ([]entity.Feed, error)
}

// NewsHandler はニュース一覧のHTTPリクエストを処理します。
type NewsHandler struct {
	uc NewsUsecase
}

// NewNewsHandler は指定されたusecaseでNewsHandlerの新しいインスタンスを生成します。
func NewNewsHandler(uc NewsUsecase) *NewsHandler {
	return &NewsHandler{uc: uc}
}

// GetNewsHandler は設定済みフィードの最新記事一覧をJSONで返します。
//
// エンドポイント例:
// GET /news
func (h *NewsHandler) GetNewsHandler(c *gin.Context) {
	feeds, err := h.uc.GetNews(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.FeedResponse, 0, len(feeds))
	for _, f := range feeds {
		headlines := make([]dto.HeadlineResponse, 0, len(f.Headlines))
		for _, hl := range f.Headlines {
			headlines = append(headlines, dto.HeadlineResponse{
				Title:     hl.Title,
				Link:      hl.Link,
				Published: hl.Published,
			})
		}
		out = append(out, dto.FeedResponse{Title: f.Title, URL: f.URL, Headlines: headlines})
	}

	c.JSON(http.StatusOK, out)
}
