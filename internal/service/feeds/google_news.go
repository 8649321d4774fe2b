package feeds

import (
	"context"
	"fmt"
	"strings"

	"DeBrief/internal/domain/models"
	"DeBrief/internal/domain/repository"
	xhttp "DeBrief/pkg/http"
)

// GoogleNews searches Google News RSS for "<symbol> stock" over the last day.
type GoogleNews struct {
	client   *xhttp.Client
	url      string
	language string
	region   string
	maxItems int
}

func NewGoogleNews(client *xhttp.Client, url, language, region string, maxItems int) *GoogleNews {
	return &GoogleNews{client: client, url: url, language: language, region: region, maxItems: maxItems}
}

var _ repository.NewsProvider = (*GoogleNews)(nil)

func (g *GoogleNews) News(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	feed, err := fetch(ctx, g.client, "google-news", g.url, map[string][]string{
		"q":    {symbol + " stock when:1d"},
		"hl":   {g.language},
		"gl":   {g.region},
		"ceid": {fmt.Sprintf("%s:%s", g.region, g.language)},
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		headline, source := models.SplitSourceSuffix(it.Title)
		if headline == "" {
			continue
		}
		out = append(out, models.NewsItem{
			Symbol:      symbol,
			Title:       headline,
			Link:        strings.TrimSpace(it.Link),
			Source:      source,
			PublishedAt: published(it),
		})
	}
	return newestFirst(out, g.maxItems), nil
}
