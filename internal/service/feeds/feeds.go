// Package feeds turns Google News RSS and SEC EDGAR Atom feeds into news items.
package feeds

import (
	"bytes"
	"context"
	"net/http"
	"sort"
	"time"

	"DeBrief/internal/domain/models"
	"DeBrief/internal/domain/repository"
	xhttp "DeBrief/pkg/http"

	"github.com/mmcdole/gofeed"
)

// fetch downloads a feed and parses it with gofeed.
func fetch(ctx context.Context, client *xhttp.Client, name, url string, params map[string][]string) (*gofeed.Feed, error) {
	var body []byte
	err := client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         url,
		QueryParams: params,
		Headers:     map[string]string{"Accept": "application/rss+xml, application/atom+xml, application/xml"},
	}, &body)
	switch {
	case xhttp.IsStatus(err, http.StatusNotFound):
		return nil, repository.NotFound(name, err)
	case err != nil:
		return nil, repository.Unavailable(name, err)
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, repository.Malformed(name, err)
	}
	return feed, nil
}

func published(it *gofeed.Item) time.Time {
	switch {
	case it.PublishedParsed != nil:
		return it.PublishedParsed.UTC()
	case it.UpdatedParsed != nil:
		return it.UpdatedParsed.UTC()
	}
	return time.Time{}
}

// newestFirst sorts by publish time and keeps at most max items.
func newestFirst(items []models.NewsItem, max int) []models.NewsItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if max > 0 && len(items) > max {
		items = items[:max]
	}
	return items
}
