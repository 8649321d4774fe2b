package feeds

import (
	"context"
	"fmt"
	"strings"

	"DeBrief/internal/domain/models"
	"DeBrief/internal/domain/repository"
	xhttp "DeBrief/pkg/http"
)

// Edgar reads the company filings Atom feed from SEC EDGAR. EDGAR rejects
// requests without a descriptive User-Agent, so the client must carry one.
type Edgar struct {
	client   *xhttp.Client
	url      string
	maxItems int
}

func NewEdgar(client *xhttp.Client, url string, maxItems int) *Edgar {
	return &Edgar{client: client, url: url, maxItems: maxItems}
}

var _ repository.FilingProvider = (*Edgar)(nil)

// Filings lists the latest filings. Form titles repeat ("8-K - Current
// report"), so the filing date is folded into the title to keep identities distinct.
func (e *Edgar) Filings(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	feed, err := fetch(ctx, e.client, "edgar", e.url, map[string][]string{
		"action": {"getcompany"},
		"CIK":    {symbol},
		"type":   {""},
		"dateb":  {""},
		"owner":  {"include"},
		"count":  {"10"},
		"output": {"atom"},
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		at := published(it)
		if !at.IsZero() {
			title = fmt.Sprintf("%s (%s)", title, at.Format("2006-01-02"))
		}
		out = append(out, models.NewsItem{
			Symbol:      symbol,
			Title:       title,
			Link:        strings.TrimSpace(it.Link),
			Source:      "SEC EDGAR",
			PublishedAt: at,
			IsFiling:    true,
		})
	}
	return newestFirst(out, e.maxItems), nil
}
