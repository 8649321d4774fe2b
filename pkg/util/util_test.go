package util

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBounds(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	// 23:30 UTC on the 1st is already the 2nd in Seoul
	start, end := DayBounds(time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC), kst)

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, kst), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("08:05")
	require.NoError(t, err)
	assert.Equal(t, 8, h)
	assert.Equal(t, 5, m)

	_, _, err = ParseClock("25:99")
	assert.Error(t, err)
}

func TestParseUnix(t *testing.T) {
	assert.True(t, ParseUnix(0).IsZero())
	assert.Equal(t, time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC), ParseUnix(1728555010))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", TruncateRunes("short", 10, "…"))
	assert.Equal(t, "가나…", TruncateRunes("가나다라", 3, "…"))

	long := strings.Repeat("x", 5000)
	assert.Len(t, []rune(TruncateRunes(long, 4096, "…")), 4096)
}
