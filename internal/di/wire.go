//go:build wireinject
// +build wireinject

package di

import (
	"TelescopeStatus/pkg/config"
	"TelescopeStatus/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegisterer,
		ProvideMetrics,
		ProvideFigureMetrics,

		// Infrastructure
		ProvideArchive,
		ProvideTableStore,
		ProvideCache,

		// Use cases
		ProvideMissionCatalog,
		ProvideRefreshHub,
		ProvideRegistry,

		// Transport
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
