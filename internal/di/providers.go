package di

import (
	"fmt"
	"time"

	"DeBrief/internal/configstore"
	"DeBrief/internal/domain/models"
	"DeBrief/internal/domain/repository"
	"DeBrief/internal/handler/api"
	"DeBrief/internal/ledger"
	"DeBrief/internal/notify"
	internalrepo "DeBrief/internal/repository"
	"DeBrief/internal/service/feeds"
	"DeBrief/internal/service/finnhub"
	"DeBrief/internal/service/ratelimit"
	"DeBrief/internal/service/telegram"
	"DeBrief/internal/service/yahoo"
	"DeBrief/internal/usecase"
	"DeBrief/pkg/cache"
	"DeBrief/pkg/config"
	xhttp "DeBrief/pkg/http"
	pkgkafka "DeBrief/pkg/kafka"
	"DeBrief/pkg/logger"
	"DeBrief/pkg/metrics"
	"DeBrief/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithClientID("debrief-"+cfg.Environment),
		pkgkafka.WithTopics(cfg.Kafka.AlertTopic, cfg.Kafka.LogTopic),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts, cfg.Kafka.Compression),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger builds the application logger. With a producer and the
// collector enabled, repeated errors are aggregated onto the log topic.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*logger.Logger, func(), error) {
	l, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		File:       cfg.Log.File,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Log.Collector.Enabled && producer != nil {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   cfg.Log.Collector.FlushInterval,
			CountThreshold: cfg.Log.Collector.CountThreshold,
			Topic:          producer.LogTopic(),
			Publisher:      producer,
		})
	}
	return l, func() { _ = l.Close() }, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideAlertPublisher mirrors alerts to Kafka; nil without a producer.
// The producer's own cleanup closes it.
func ProvideAlertPublisher(producer *pkgkafka.Producer) repository.AlertPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaAlertPublisher(producer, producer.AlertTopic())
}

// ProvideConfigStore builds the configuration store with its optional remote
// document and the secrets overlay.
func ProvideConfigStore(cfg *config.Config, l *logger.Logger, m repository.Metrics) (*configstore.Store, func(), error) {
	opts := []configstore.Option{
		configstore.WithSecrets(configstore.NewSecrets(cfg.Store.SecretsFile)),
		configstore.WithTimeout(cfg.Store.Timeout),
		configstore.WithHistoryCap(cfg.Monitor.News.HistoryCap),
		configstore.WithLogger(l),
		configstore.WithMetrics(m),
	}
	cleanup := func() {}

	switch cfg.Store.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		opts = append(opts, configstore.WithRemote(configstore.NewRedisDocument(client, cfg.Store.Redis.Key)))
		cleanup = func() { _ = client.Close() }
	case "http":
		client := xhttp.NewClient(xhttp.WithTimeout(cfg.Store.Timeout))
		opts = append(opts, configstore.WithRemote(configstore.NewHTTPDocument(client, cfg.Store.HTTP.URL, cfg.Store.HTTP.Token)))
	}

	return configstore.New(cfg.Store.LocalPath, opts...), cleanup, nil
}

// ProvideHTTPClient is the shared client for market data and feeds.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Monitor.ProviderTimeout),
		xhttp.WithUserAgent(cfg.Feeds.UserAgent),
	)
}

// ProvideTelegram builds the Bot API client on its own HTTP client whose
// timeout outlasts a long poll.
func ProvideTelegram(cfg *config.Config) *telegram.Client {
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Telegram.PollTimeout + 10*time.Second))
	return telegram.New(client, cfg.Telegram.APIURL, cfg.Telegram.Timeout)
}

func ProvideYahoo(client *xhttp.Client, cfg *config.Config) *yahoo.Client {
	return yahoo.New(client, cfg.Yahoo.BaseURL, nil)
}

func ProvideFinnhub(client *xhttp.Client, cfg *config.Config) *finnhub.Client {
	return finnhub.New(client, cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL, ratelimit.PerMinute(cfg.Finnhub.RatePerMinute))
}

func ProvideGoogleNews(client *xhttp.Client, cfg *config.Config) *feeds.GoogleNews {
	return feeds.NewGoogleNews(client, cfg.Feeds.GoogleNewsURL, cfg.Feeds.Language, cfg.Feeds.Region, cfg.Feeds.MaxItems)
}

func ProvideEdgar(client *xhttp.Client, cfg *config.Config) *feeds.Edgar {
	return feeds.NewEdgar(client, cfg.Feeds.EdgarURL, cfg.Feeds.MaxItems)
}

// ProvideMarketData selects the quote source.
func ProvideMarketData(cfg *config.Config, y *yahoo.Client, f *finnhub.Client) repository.MarketData {
	if cfg.Monitor.QuoteSource == "finnhub" {
		return f
	}
	return y
}

// ProvideNewsProvider selects the headline source.
func ProvideNewsProvider(cfg *config.Config, g *feeds.GoogleNews, f *finnhub.Client) repository.NewsProvider {
	if cfg.Monitor.NewsSource == "finnhub" {
		return f
	}
	return g
}

// ProvideDispatcher builds the alert dispatcher with a per-chat limiter.
func ProvideDispatcher(
	cfg *config.Config,
	messenger repository.Messenger,
	pub repository.AlertPublisher,
	m repository.Metrics,
	l *logger.Logger,
) *notify.Dispatcher {
	opts := []notify.Option{
		notify.WithLimiter(ratelimit.New(cfg.Telegram.RatePerSecond, cfg.Telegram.Burst), cfg.Telegram.Timeout),
		notify.WithMetrics(m),
		notify.WithLogger(l.With(logger.String("component", "dispatcher"))),
	}
	if pub != nil {
		opts = append(opts, notify.WithPublisher(pub))
	}
	return notify.NewDispatcher(messenger, opts...)
}

func ProvideLedger() *ledger.Ledger {
	return ledger.New()
}

// ProvideRules maps monitor settings onto the policy parameters.
func ProvideRules(cfg *config.Config) usecase.Rules {
	r := usecase.DefaultRules()
	r.Price.Threshold = cfg.Monitor.Price.Threshold
	r.Price.RearmStep = cfg.Monitor.Price.RearmStep
	r.News.MaxAge = cfg.Monitor.News.MaxAge
	r.News.BreakingWindow = cfg.Monitor.News.BreakingWindow
	r.News.ExcludeKeywords = cfg.Monitor.News.ExcludeKeywords
	r.RSI.Period = cfg.Monitor.RSI.Period
	r.RSI.Overbought = cfg.Monitor.RSI.Overbought
	r.RSI.Oversold = cfg.Monitor.RSI.Oversold
	r.RSI.ResetLow = cfg.Monitor.RSI.ResetLow
	r.RSI.ResetHigh = cfg.Monitor.RSI.ResetHigh
	r.HistoryBars = cfg.Monitor.HistoryBars
	r.ProviderTimeout = cfg.Monitor.ProviderTimeout
	return r
}

func ProvideEvaluator(
	market repository.MarketData,
	news repository.NewsProvider,
	filings repository.FilingProvider,
	rules usecase.Rules,
	l *ledger.Ledger,
	d *notify.Dispatcher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.SymbolEvaluator {
	src := usecase.Sources{Market: market, News: news, Filings: filings}
	return usecase.NewSymbolEvaluator(src, rules, l, d, m, log.With(logger.String("component", "evaluator")))
}

func ProvideMonitor(
	cfg *config.Config,
	store *configstore.Store,
	eval *usecase.SymbolEvaluator,
	l *ledger.Ledger,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.Monitor {
	return usecase.NewMonitor(store, eval, l, m, log.With(logger.String("component", "monitor")),
		cfg.Monitor.Interval, cfg.Monitor.Workers, store.HistoryCap())
}

func ProvideDigest(
	cfg *config.Config,
	store repository.ConfigStore,
	calendar repository.CalendarProvider,
	market repository.MarketData,
	d *notify.Dispatcher,
	log *logger.Logger,
) *usecase.Digest {
	return usecase.NewDigest(store, calendar, market, d, usecase.DigestOptions{
		Location:  cfg.Location(),
		Countries: cfg.Digest.Countries,
		MinImpact: models.Impact(cfg.Digest.MinImpact),
		Timeout:   cfg.Monitor.ProviderTimeout,
	}, log.With(logger.String("component", "digest")))
}

// ProvideDigestScheduler returns nil when the daily digest is disabled.
func ProvideDigestScheduler(cfg *config.Config, d *usecase.Digest, log *logger.Logger) *usecase.DigestScheduler {
	if !cfg.Digest.Enabled {
		return nil
	}
	return usecase.NewDigestScheduler(d, cfg.Digest.At, log)
}

func ProvideCommands(
	cfg *config.Config,
	store repository.ConfigStore,
	market repository.MarketData,
	news repository.NewsProvider,
	digest *usecase.Digest,
) *usecase.Commands {
	return usecase.NewCommands(store, market, news, digest, cfg.Monitor.ProviderTimeout)
}

func ProvideListener(
	cfg *config.Config,
	store repository.ConfigStore,
	messenger repository.Messenger,
	commands *usecase.Commands,
	d *notify.Dispatcher,
	log *logger.Logger,
) *usecase.Listener {
	return usecase.NewListener(store, messenger, commands, d,
		log.With(logger.String("component", "listener")), cfg.Telegram.PollTimeout)
}

// ProvideSupervisor keeps the monitor and, when enabled, the command listener alive.
func ProvideSupervisor(cfg *config.Config, mon *usecase.Monitor, lis *usecase.Listener, log *logger.Logger) *usecase.Supervisor {
	actors := []usecase.Actor{mon}
	if cfg.Telegram.ListenerEnabled {
		actors = append(actors, lis)
	}
	return usecase.NewSupervisor(cfg.Monitor.RestartBackoff, log, actors...)
}

// ProvideQuoteCache is memory-only, or memory in front of Redis when configured.
func ProvideQuoteCache(cfg *config.Config, log *logger.Logger) (cache.Service, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(64))
		return mc, func() { _ = mc.Close() }, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix("debrief:cache"),
	)
	if err != nil {
		log.Warn("redis cache unavailable, using memory only", logger.Error(err))
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(64))
		return mc, func() { _ = mc.Close() }, nil
	}
	lc := cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(64), cache.WithLayeredL1TTL(cfg.Cache.QuoteTTL/3))
	return lc, func() { _ = lc.Close() }, nil
}

func ProvideControlHandler(
	cfg *config.Config,
	log *logger.Logger,
	store repository.ConfigStore,
	messenger repository.Messenger,
	market repository.MarketData,
	c cache.Service,
) *api.ControlEchoHandler {
	return api.NewControlEchoHandler(log.With(logger.String("component", "api")), store, messenger, market, c, api.ControlOptions{
		LogFile:      cfg.Log.File,
		QuoteTTL:     cfg.Cache.QuoteTTL,
		QuoteTimeout: cfg.Monitor.ProviderTimeout,
	})
}

// ProvideHTTPServer returns nil when the control API is disabled.
func ProvideHTTPServer(cfg *config.Config, h *api.ControlEchoHandler, log *logger.Logger) *xhttp.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithServerLogger(log.With(logger.String("component", "http"))),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	sup *usecase.Supervisor,
	digest *usecase.DigestScheduler,
	srv *xhttp.Server,
) *server.App {
	return server.New(cfg, log, sup, digest, srv)
}
