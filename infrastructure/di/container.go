package di

import (
	"go.uber.org/zap"

	"kgraph/application/ports"
	"kgraph/application/queries"
	"kgraph/application/services"
	"kgraph/infrastructure/config"
	"kgraph/interfaces/http/rest"
	"kgraph/pkg/observability"
)

// Container holds the wired application
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Store         ports.GraphStore
	BuildService  *services.GraphBuildService
	QueryService  *queries.QueryService
	LimitsWatcher *config.LimitsWatcher
	Router        *rest.Router
}

// Close releases the container's background resources
func (c *Container) Close() {
	if c.LimitsWatcher != nil {
		c.LimitsWatcher.Stop()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
