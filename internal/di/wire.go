//go:build wireinject
// +build wireinject

package di

import (
	"EquityScout/pkg/config"
	"EquityScout/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,

		// Repositories
		ProvideBarStore,
		ProvideUniverse,
		ProvideResultStore,

		// Use cases
		ProvideRegistry,
		ProvideScreener,
		ProvideHistoryBrowser,

		// Delivery
		ProvideHTTPHandler,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
