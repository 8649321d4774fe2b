package di

import (
	"testing"

	"DeBrief/internal/service/feeds"
	"DeBrief/internal/service/finnhub"
	"DeBrief/internal/service/yahoo"
	"DeBrief/pkg/config"
	"DeBrief/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvideMarketData_SelectsSource(t *testing.T) {
	cfg := config.Default()
	client := ProvideHTTPClient(cfg)
	y := ProvideYahoo(client, cfg)
	f := ProvideFinnhub(client, cfg)

	cfg.Monitor.QuoteSource = "yahoo"
	assert.IsType(t, &yahoo.Client{}, ProvideMarketData(cfg, y, f))

	cfg.Monitor.QuoteSource = "finnhub"
	assert.IsType(t, &finnhub.Client{}, ProvideMarketData(cfg, y, f))
}

func TestProvideNewsProvider_SelectsSource(t *testing.T) {
	cfg := config.Default()
	client := ProvideHTTPClient(cfg)
	g := ProvideGoogleNews(client, cfg)
	f := ProvideFinnhub(client, cfg)

	cfg.Monitor.NewsSource = "google"
	assert.IsType(t, &feeds.GoogleNews{}, ProvideNewsProvider(cfg, g, f))

	cfg.Monitor.NewsSource = "finnhub"
	assert.IsType(t, &finnhub.Client{}, ProvideNewsProvider(cfg, g, f))
}

func TestProvideRules_FromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Monitor.Price.Threshold = 5
	cfg.Monitor.Price.RearmStep = 1.5
	cfg.Monitor.RSI.Overbought = 80

	r := ProvideRules(cfg)
	assert.Equal(t, 5.0, r.Price.Threshold)
	assert.Equal(t, 1.5, r.Price.RearmStep)
	assert.Equal(t, 80.0, r.RSI.Overbought)
	assert.Equal(t, cfg.Monitor.ProviderTimeout, r.ProviderTimeout)
}

func TestOptionalComponentsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Kafka.Enabled = false
	cfg.Server.Enabled = false
	cfg.Digest.Enabled = false

	producer, cleanup, err := ProvideKafkaProducer(cfg)
	require.NoError(t, err)
	cleanup()
	assert.Nil(t, producer)
	assert.Nil(t, ProvideAlertPublisher(producer))

	assert.Nil(t, ProvideHTTPServer(cfg, nil, logger.Nop()))
	assert.Nil(t, ProvideDigestScheduler(cfg, nil, logger.Nop()))
}

func TestProvideQuoteCache_MemoryByDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Redis.Enabled = false

	c, cleanup, err := ProvideQuoteCache(cfg, logger.Nop())
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, c)
}
