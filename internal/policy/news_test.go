package policy

import (
	"testing"
	"time"

	"DeBrief/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

func item(title string, age time.Duration) models.NewsItem {
	return models.NewsItem{Symbol: "TSLA", Title: title, Link: "https://x/" + title, PublishedAt: now.Add(-age)}
}

func seenSet(ids ...string) func(string) bool {
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return func(id string) bool { return set[id] }
}

func TestSelectNews_CapsNonBreakingToOne(t *testing.T) {
	items := []models.NewsItem{
		item("Older story", 5*time.Hour),
		item("Newest regular story", 2*time.Hour),
		item("Mid story", 3*time.Hour),
	}
	sel := SelectNews(DefaultNewsRule(), items, nil, now)

	require.Len(t, sel.Emit, 1)
	assert.Equal(t, "Newest regular story", sel.Emit[0].Title)
	assert.Equal(t, []string{"newest regular story"}, sel.Identities)
	assert.Equal(t, 3, sel.Fresh)
}

func TestSelectNews_BreakingBypassesCap(t *testing.T) {
	items := []models.NewsItem{
		item("Breaking two", 10*time.Minute),
		item("Regular", 3*time.Hour),
		item("Breaking one", 40*time.Minute),
		item("Another regular", 4*time.Hour),
	}
	sel := SelectNews(DefaultNewsRule(), items, nil, now)

	titles := make([]string, 0, len(sel.Emit))
	for _, it := range sel.Emit {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"Breaking one", "Breaking two", "Regular"}, titles)
}

func TestSelectNews_Filters(t *testing.T) {
	rule := DefaultNewsRule()
	rule.ExcludeKeywords = []string{"Bitcoin"}
	items := []models.NewsItem{
		item("Stale story", 25*time.Hour),
		item("bitcoin rallies", time.Hour*2),
		item("!!!", time.Hour*2),
		item("Already sent, story", 2*time.Hour),
	}
	sel := SelectNews(rule, items, seenSet("already sent story"), now)

	assert.Empty(t, sel.Emit)
	assert.Zero(t, sel.Fresh)
}

func TestSelectNews_DedupesMirrorsWithinBatch(t *testing.T) {
	items := []models.NewsItem{
		item("Tesla beats estimates", 20*time.Minute),
		item("Tesla beats estimates!", 15*time.Minute),
	}
	sel := SelectNews(DefaultNewsRule(), items, nil, now)
	require.Len(t, sel.Emit, 1)
	assert.Equal(t, "tesla beats estimates", sel.Identities[0])
}

func TestSelectNews_UndatedItemIsRegular(t *testing.T) {
	undated := models.NewsItem{Title: "No date"}
	sel := SelectNews(DefaultNewsRule(), []models.NewsItem{undated, item("Breaking", time.Minute)}, nil, now)
	require.Len(t, sel.Emit, 2)
	assert.Equal(t, "No date", sel.Emit[1].Title)
}

func TestSelectNews_SameItemAcrossTicksEmitsOnce(t *testing.T) {
	seen := map[string]bool{}
	items := []models.NewsItem{item("Recall announced", 3*time.Hour)}
	emitted := 0
	for i := 0; i < 3; i++ {
		sel := SelectNews(DefaultNewsRule(), items, func(id string) bool { return seen[id] }, now)
		for _, id := range sel.Identities {
			seen[id] = true
		}
		emitted += len(sel.Emit)
	}
	assert.Equal(t, 1, emitted)
}
