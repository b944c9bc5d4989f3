// Package dto はnewsフィーチャーのHTTPレスポンスDTOを定義します。
package dto

// HeadlineResponse は1記事のレスポンスDTOです。
type HeadlineResponse struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
}

// FeedResponse は1つのニュースソースのレスポンスDTOです。
type FeedResponse struct {
	Title     string             `json:"title"`
	URL       string             `json:"url"`
	Headlines []HeadlineResponse `json:"headlines"`
}
