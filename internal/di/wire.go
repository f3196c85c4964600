//go:build wireinject
// +build wireinject

package di

import (
	"FinLiquidity/pkg/config"
	"FinLiquidity/pkg/logger"
	"FinLiquidity/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config, l *logger.Logger) (*server.App, func(), error) {
	wire.Build(
		// Observability
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure
		ProvideCacheStore,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories and sources
		ProvideCatalog,
		ProvideSeriesSource,
		ProvidePriceSource,
		ProvidePublisher,
		ProvideInvalidator,

		// Use cases
		ProvideEngine,
		ProvideDashboard,
		ProvideRefreshHandler,

		// Transport
		ProvideLiquidityHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
