// Package rss fetches and decodes RSS 2.0 news feeds.
package rss

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ikcerog/lenderdash-dev/internal/feature/news/domain/entity"
)

// DefaultHeadlineLimit is the number of entries kept per feed.
const DefaultHeadlineLimit = 5

// document mirrors the subset of the RSS 2.0 schema this service reads.
type document struct {
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title   string `xml:"title"`
			Link    string `xml:"link"`
			PubDate string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

// Fetcher retrieves news feeds over HTTP and maps them to domain entities.
type Fetcher struct {
	client *http.Client
	limit  int
}

// NewFetcher creates a Fetcher. A non-positive limit falls back to
// DefaultHeadlineLimit.
func NewFetcher(client *http.Client, limit int) *Fetcher {
	if limit <= 0 {
		limit = DefaultHeadlineLimit
	}
	return &Fetcher{client: client, limit: limit}
}

// FetchFeed downloads one feed URL and returns its top entries.
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) (entity.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return entity.Feed{}, err
	}

	res, err := f.client.Do(req)
	if err != nil {
		return entity.Feed{}, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return entity.Feed{}, fmt.Errorf("feed http %d", res.StatusCode)
	}

	var doc document
	if err := xml.NewDecoder(res.Body).Decode(&doc); err != nil {
		return entity.Feed{}, fmt.Errorf("decode feed: %w", err)
	}

	items := doc.Channel.Items
	if len(items) > f.limit {
		items = items[:f.limit]
	}
	headlines := make([]entity.Headline, 0, len(items))
	for _, it := range items {
		headlines = append(headlines, entity.Headline{
			Title:     it.Title,
			Link:      it.Link,
			Published: it.PubDate,
		})
	}

	return entity.Feed{
		Title:     doc.Channel.Title,
		URL:       feedURL,
		Headlines: headlines,
	}, nil
}
