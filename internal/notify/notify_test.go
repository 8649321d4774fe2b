package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"DeBrief/internal/domain/models"
	"DeBrief/internal/service/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeMessenger) SendMessage(_ context.Context, _ models.TelegramCredentials, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return f.err
}

func (f *fakeMessenger) GetUpdates(context.Context, string, int64, time.Duration) ([]models.ChatMessage, error) {
	return nil, nil
}

func (f *fakeMessenger) GetMe(context.Context, string) (string, error) { return "bot", nil }

type fakePublisher struct{ alerts []*models.Alert }

func (f *fakePublisher) PublishAlert(_ context.Context, a *models.Alert) error {
	f.alerts = append(f.alerts, a)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type countingMetrics struct {
	sent map[string]int
}

func (c *countingMetrics) RecordAlertSent(kind string, delivered bool) {
	if delivered {
		c.sent[kind]++
	} else {
		c.sent[kind+":failed"]++
	}
}
func (c *countingMetrics) RecordError(string) {}
func (c *countingMetrics) RecordLastPrice(string, float64) {}
func (c *countingMetrics) RecordLatency(string, float64) {}
func (c *countingMetrics) RecordTick(string, int) {}
func (c *countingMetrics) RecordStoreWrite(string, bool) {}

var creds = models.TelegramCredentials{BotToken: "t", ChatID: "1"}

func TestFormat(t *testing.T) {
	assert.Equal(t, "🚨 [BREAKING] TSLA\n📰 Recall\nhttps://n/1",
		Format(&models.Alert{Symbol: "TSLA", Kind: models.AlertNews, Title: "Recall", Link: "https://n/1", Breaking: true}))
	assert.Equal(t, "[TSLA] 📉 -3.25%\n$96.75",
		Format(&models.Alert{Symbol: "TSLA", Kind: models.AlertPriceMove, Value: -3.25, Body: "$96.75"}))
	assert.Equal(t, "[TSLA] 🔥 RSI overbought (72.4)",
		Format(&models.Alert{Symbol: "TSLA", Kind: models.AlertRSI, Title: "RSI overbought", Value: 72.4}))
	assert.Equal(t, "[TSLA] 📊 golden cross",
		Format(&models.Alert{Symbol: "TSLA", Kind: models.AlertMACross, Title: "golden cross"}))
	assert.Equal(t, "📄 [TSLA filing] 8-K",
		Format(&models.Alert{Symbol: "TSLA", Kind: models.AlertFiling, Title: "8-K"}))
}

func TestDispatch_Delivered(t *testing.T) {
	m := &fakeMessenger{}
	pub := &fakePublisher{}
	cm := &countingMetrics{sent: map[string]int{}}
	d := NewDispatcher(m, WithPublisher(pub), WithMetrics(cm))

	ok := d.Dispatch(context.Background(), creds, &models.Alert{Symbol: "TSLA", Kind: models.AlertNews, Title: "x"})
	assert.True(t, ok)
	assert.Len(t, m.texts, 1)
	require.Len(t, pub.alerts, 1)
	assert.False(t, pub.alerts[0].OccurredAt.IsZero())
	assert.Equal(t, 1, cm.sent["news"])
}

func TestDispatch_FailureIsSwallowedAndNotRetried(t *testing.T) {
	m := &fakeMessenger{err: errors.New("network down")}
	cm := &countingMetrics{sent: map[string]int{}}
	d := NewDispatcher(m, WithMetrics(cm))

	ok := d.Dispatch(context.Background(), creds, &models.Alert{Symbol: "TSLA", Kind: models.AlertRSI})
	assert.False(t, ok)
	assert.Len(t, m.texts, 1)
	assert.Equal(t, 1, cm.sent["rsi:failed"])
}

func TestSendText_WaitBoundedByTimeout(t *testing.T) {
	m := &fakeMessenger{}
	d := NewDispatcher(m, WithLimiter(ratelimit.New(0.01, 1), 20*time.Millisecond))

	require.NoError(t, d.SendText(context.Background(), creds, "first"))
	assert.Error(t, d.SendText(context.Background(), creds, "second"))
	assert.Equal(t, []string{"first"}, m.texts)
}
