//go:build wireinject
// +build wireinject

package di

import (
	"CorrScope/pkg/config"
	"CorrScope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideSeriesCache,

		// Infrastructure clients
		ProvideClickHouseClient,

		// Repositories
		ProvideFredMDSource,
		ProvideSeriesLoader,
		ProvideMetadataStore,
		ProvideResultStore,
		ProvideEventPublisher,
		ProvideRunRecorder,

		// Use cases and transport
		ProvideHub,
		ProvideUseCase,
		ProvideRefresher,
		ProvideHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
