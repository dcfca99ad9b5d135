//go:build wireinject
// +build wireinject

package di

import (
	"BitSight/pkg/config"
	"BitSight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideCollector,
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCacheService,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideSnapshotStore,
		ProvideDatasetArchive,
		ProvideEventPublisher,

		// Upstream providers
		ProvideMarketProvider,
		ProvideIndexProvider,
		ProvidePredictor,

		// Use cases
		ProvideLiveQuotes,
		ProvideDatasetBuilder,
		ProvideSnapshotService,
		ProvidePredictionService,

		// HTTP surface and application server
		ProvideHandler,
		ProvideStream,
		ProvideApp,
	)
	return &server.App{}, nil
}
