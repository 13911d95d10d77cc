//go:build wireinject
// +build wireinject

package di

import (
	"RiskPulse/pkg/config"
	"RiskPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires the full application graph from configuration.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideInfra,
		ProvideGridStore,
		ProvideStateStore,
		ProvideHistoryStore,
		ProvideLocker,
		ProvideSignalPublisher,
		ProvidePriceProcessor,
		ProvidePriceCollector,
		ProvidePoller,
		ProvideAnalyzer,
		ProvideDailyUpdater,
		ProvideHistoryUseCase,
		ProvideKafkaConsumer,
		ProvideKafkaPricesHandler,
		ProvideQueue,
		ProvideScheduler,
		ProvideHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil
}
