package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish_EncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "snappy")

	require.NoError(t, p.Publish(context.Background(), "alerts", []byte("TSLA"), map[string]string{"kind": "rsi"}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "alerts", w.msgs[0].Topic)
	assert.Equal(t, []byte("TSLA"), w.msgs[0].Key)
	assert.JSONEq(t, `{"kind":"rsi"}`, string(w.msgs[0].Value))
}

func TestPublishMessage_SplitsSlices(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "snappy")

	require.NoError(t, p.PublishMessage(context.Background(), "logs", []string{"a", "b"}))
	assert.Len(t, w.msgs, 2)

	require.NoError(t, p.PublishMessage(context.Background(), "logs", []byte("raw")))
	assert.Equal(t, []byte("raw"), w.msgs[2].Value)
}

func TestPublish_PropagatesWriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newProducer(w, "snappy")
	assert.Error(t, p.Publish(context.Background(), "alerts", nil, "x"))
	assert.NoError(t, p.PublishBatch(context.Background(), "alerts", nil))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)

	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithDelivery(-1, 5, "zstd"))
	require.NoError(t, err)
	assert.Equal(t, "zstd", p.comp)
	assert.NoError(t, p.Close())
}

func TestNewProducer_Topics(t *testing.T) {
	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}))
	require.NoError(t, err)
	assert.Equal(t, "debrief.alerts", p.AlertTopic())
	assert.Equal(t, "debrief.logs", p.LogTopic())

	p, err = NewProducer(WithBrokers([]string{"localhost:9092"}), WithTopics("alerts.v2", ""))
	require.NoError(t, err)
	assert.Equal(t, "alerts.v2", p.AlertTopic())
	assert.Equal(t, "debrief.logs", p.LogTopic())

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

func TestProducerConfig_Options(t *testing.T) {
	cfg := defaultProducerConfig()
	WithBatching(0, 2048, 0)(cfg)
	WithClientID("")(cfg)
	WithDelivery(0, 0, "")(cfg)

	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 2048, cfg.BatchBytes)
	assert.Equal(t, 200*time.Millisecond, cfg.Linger)
	assert.Equal(t, "debrief", cfg.ClientID)
	assert.Equal(t, 0, cfg.RequiredAcks)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, "snappy", cfg.Compression)

	cfg.Topics.Logs = ""
	cfg.Brokers = []string{"b:9092"}
	assert.Error(t, cfg.validate())
}
