//go:build wireinject
// +build wireinject

package di

import (
	"DeBrief/internal/configstore"
	"DeBrief/internal/domain/repository"
	"DeBrief/internal/service/feeds"
	"DeBrief/internal/service/finnhub"
	"DeBrief/internal/service/telegram"
	"DeBrief/pkg/config"
	"DeBrief/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Infrastructure
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideAlertPublisher,
		ProvideConfigStore,
		wire.Bind(new(repository.ConfigStore), new(*configstore.Store)),

		// Providers
		ProvideHTTPClient,
		ProvideTelegram,
		wire.Bind(new(repository.Messenger), new(*telegram.Client)),
		ProvideYahoo,
		ProvideFinnhub,
		ProvideGoogleNews,
		ProvideEdgar,
		ProvideMarketData,
		ProvideNewsProvider,
		wire.Bind(new(repository.FilingProvider), new(*feeds.Edgar)),
		wire.Bind(new(repository.CalendarProvider), new(*finnhub.Client)),

		// Use cases
		ProvideDispatcher,
		ProvideLedger,
		ProvideRules,
		ProvideEvaluator,
		ProvideMonitor,
		ProvideDigest,
		ProvideDigestScheduler,
		ProvideCommands,
		ProvideListener,
		ProvideSupervisor,

		// Control API
		ProvideQuoteCache,
		ProvideControlHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}
