//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"kgraph/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideGraphStore,
	ProvideInferrer,
	ProvideEnrichmentCoordinator,
	ProvideNodeBuilder,
	ProvideGraphBuildService,
	ProvideQueryService,
	ProvideLimitsWatcher,
	ProvideLimitsProvider,
	ProvideJWTValidator,
	ProvideGraphHandler,
	ProvideQueryHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
