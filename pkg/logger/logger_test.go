package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailReader_NewestFirst(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}

	lines, err := tailReader(strings.NewReader(b.String()), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 10", "line 9", "line 8"}, lines)
}

func TestTailReader_FewerLinesThanRequested(t *testing.T) {
	lines, err := tailReader(strings.NewReader("a\n\nb\n"), 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, lines)
}

func TestTail_MissingFile(t *testing.T) {
	lines, err := Tail(filepath.Join(t.TempDir(), "nope.log"), 10)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestNew_WritesJSONLinesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: "stderr", File: path})
	require.NoError(t, err)

	l.Info("tick complete", String("symbol", "TSLA"), Int("alerts", 2))
	l.Debug("hidden")
	require.NoError(t, l.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "tick complete", entry["message"])
	assert.Equal(t, "TSLA", entry["symbol"])
	assert.EqualValues(t, 2, entry["alerts"])
}

func TestWith_CarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf).With(String("actor", "monitor"))
	l.Warn("provider slow", Float64("seconds", 1.5))

	assert.Contains(t, buf.String(), `"actor":"monitor"`)
	assert.Contains(t, buf.String(), `"seconds":1.5`)
}

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batches)
}

func TestCollector_FoldsRepeatedErrors(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 10, Topic: "logs", Publisher: pub})
	defer c.Close()

	for i := 0; i < 5; i++ {
		c.AddLog("error", "quote failed", map[string]interface{}{"symbol": "TSLA"}, "monitor.go:10")
	}
	c.AddLog("error", "quote failed", map[string]interface{}{"symbol": "AAPL"}, "monitor.go:10")

	pending := c.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, 5, pending[0].Count)
	assert.Equal(t, 1, pending[1].Count)
}

func TestCollector_FlushesOnClose(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 10, Topic: "logs", Publisher: pub})

	c.AddLog("error", "store write failed", nil, "store.go:1")
	c.Close()

	assert.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "logs", pub.topic)
}

func TestLogger_ErrorFeedsCollector(t *testing.T) {
	pub := &capturePublisher{}
	l := NewWriter(&bytes.Buffer{})
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Publisher: pub})
	defer l.RemoveCollector()

	l.Error("send failed", Error(errors.New("boom")))
	l.Warn("not collected")

	pending := l.collector.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "send failed", pending[0].Message)
	assert.Equal(t, "boom", pending[0].Fields["error"])
}
