package kafka

import (
	"errors"
	"time"
)

// ProducerOption configures Producer.
type ProducerOption func(*ProducerConfig)

// Topics names the streams DeBrief writes to.
type Topics struct {
	Alerts string
	Logs   string
}

// ProducerConfig holds producer configuration. Messages are always
// partitioned by key so alerts of one symbol stay ordered.
type ProducerConfig struct {
	Brokers      []string
	ClientID     string
	Topics       Topics
	RequiredAcks int
	Compression  string
	MaxAttempts  int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	BatchSize    int
	BatchBytes   int
	Linger       time.Duration
	Async        bool
}

func defaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		ClientID:     "debrief",
		Topics:       Topics{Alerts: "debrief.alerts", Logs: "debrief.logs"},
		RequiredAcks: 1,
		Compression:  "snappy",
		MaxAttempts:  3,
		WriteTimeout: 5 * time.Second,
		ReadTimeout:  5 * time.Second,
		BatchSize:    100,
		BatchBytes:   1 << 20,
		Linger:       200 * time.Millisecond,
	}
}

func (c *ProducerConfig) validate() error {
	switch {
	case len(c.Brokers) == 0:
		return errors.New("brokers are required")
	case c.Topics.Alerts == "" || c.Topics.Logs == "":
		return errors.New("alert and log topics are required")
	}
	return nil
}

func WithBrokers(brokers []string) ProducerOption {
	return func(c *ProducerConfig) {
		c.Brokers = brokers
	}
}

// WithClientID tags connections so broker logs show the producing service.
func WithClientID(id string) ProducerOption {
	return func(c *ProducerConfig) {
		if id != "" {
			c.ClientID = id
		}
	}
}

// WithTopics sets the alert stream and the aggregated-log topic. Empty names keep the defaults.
func WithTopics(alerts, logs string) ProducerOption {
	return func(c *ProducerConfig) {
		if alerts != "" {
			c.Topics.Alerts = alerts
		}
		if logs != "" {
			c.Topics.Logs = logs
		}
	}
}

// WithDelivery sets acknowledgements (-1 = all), writer retries and compression.
func WithDelivery(acks, maxAttempts int, compression string) ProducerOption {
	return func(c *ProducerConfig) {
		c.RequiredAcks = acks
		if maxAttempts > 0 {
			c.MaxAttempts = maxAttempts
		}
		if compression != "" {
			c.Compression = compression
		}
	}
}

// WithBatching bounds a batch by message count, bytes and linger time.
func WithBatching(size, bytes int, linger time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		if size > 0 {
			c.BatchSize = size
		}
		if bytes > 0 {
			c.BatchBytes = bytes
		}
		if linger > 0 {
			c.Linger = linger
		}
	}
}

func WithTimeouts(write, read time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		c.WriteTimeout = write
		c.ReadTimeout = read
	}
}

// WithAsync makes Publish return before the broker acknowledges.
func WithAsync(async bool) ProducerOption {
	return func(c *ProducerConfig) {
		c.Async = async
	}
}
