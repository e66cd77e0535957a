package di

import (
	"context"
	"fmt"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kgraph/application/ports"
	"kgraph/application/queries"
	"kgraph/application/services"
	"kgraph/infrastructure/config"
	"kgraph/infrastructure/inference"
	"kgraph/infrastructure/persistence/dynamodb"
	"kgraph/infrastructure/persistence/snapshot"
	"kgraph/interfaces/http/rest"
	"kgraph/interfaces/http/rest/handlers"
	"kgraph/pkg/auth"
	"kgraph/pkg/observability"
)

// ProvideLogger creates the application logger from the configured
// environment and level.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideMetrics creates the metrics registry, or nil when metrics
// are disabled.
func ProvideMetrics(cfg *config.Config) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewMetrics()
}

// ProvideGraphStore creates the snapshot store for the configured
// backend, wrapped in a read-through cache when a TTL is set.
func ProvideGraphStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (ports.GraphStore, error) {
	var store ports.GraphStore

	switch cfg.StoreBackend {
	case config.StoreBackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWSRegion),
		)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		store = dynamodb.NewGraphStore(awsdynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, logger, metrics)

	default:
		fileStore, err := snapshot.NewFileStore(cfg.SnapshotDir, logger, metrics)
		if err != nil {
			return nil, err
		}
		store = fileStore
	}

	return snapshot.NewCachedStore(store, cfg.SnapshotCacheTTL), nil
}

// ProvideInferrer creates the relationship inference client behind a
// circuit breaker, or nil when no inference URL is configured.
func ProvideInferrer(cfg *config.Config, logger *zap.Logger) ports.RelationshipInferrer {
	if cfg.InferenceURL == "" {
		return nil
	}

	client := inference.NewHTTPClient(cfg.InferenceURL, cfg.InferenceTimeout, logger)

	breakerCfg := inference.DefaultBreakerConfig()
	breakerCfg.MaxFailures = cfg.BreakerMaxFailures
	breakerCfg.Timeout = cfg.BreakerTimeout

	return inference.NewBreakerInferrer(client, breakerCfg, logger)
}

// ProvideEnrichmentCoordinator creates the batch enrichment
// coordinator. Nil when no inferrer is configured; builds then run
// node-only.
func ProvideEnrichmentCoordinator(inferrer ports.RelationshipInferrer, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) *services.EnrichmentCoordinator {
	if inferrer == nil {
		return nil
	}
	return services.NewEnrichmentCoordinator(inferrer, cfg.BatchSize, cfg.BatchConcurrency, logger, metrics)
}

// ProvideNodeBuilder creates the node builder
func ProvideNodeBuilder(logger *zap.Logger) *services.NodeBuilder {
	return services.NewNodeBuilder(logger)
}

// ProvideGraphBuildService creates the build service
func ProvideGraphBuildService(builder *services.NodeBuilder, coordinator *services.EnrichmentCoordinator, logger *zap.Logger, metrics *observability.Metrics) *services.GraphBuildService {
	return services.NewGraphBuildService(builder, coordinator, logger, metrics)
}

// ProvideQueryService creates the query service
func ProvideQueryService(logger *zap.Logger, metrics *observability.Metrics) *queries.QueryService {
	return queries.NewQueryService(logger, metrics)
}

// ProvideLimitsWatcher creates the hot-reloading limits watcher, or
// nil when no limits file is configured.
func ProvideLimitsWatcher(cfg *config.Config, logger *zap.Logger) (*config.LimitsWatcher, error) {
	if cfg.LimitsFile == "" {
		return nil, nil
	}
	watcher, err := config.NewLimitsWatcher(cfg.LimitsFile, logger)
	if err != nil {
		return nil, err
	}
	watcher.Start()
	return watcher, nil
}

// ProvideLimitsProvider exposes request limits to the query handler,
// falling back to static defaults without a watcher.
func ProvideLimitsProvider(watcher *config.LimitsWatcher) handlers.LimitsProvider {
	if watcher == nil {
		return handlers.StaticLimits{Limits: config.DefaultLimits()}
	}
	return watcher
}

// ProvideJWTValidator creates the token validator, or nil when auth
// is disabled.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if !cfg.EnableAuth {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideGraphHandler creates the graph lifecycle handler
func ProvideGraphHandler(builder *services.GraphBuildService, store ports.GraphStore, logger *zap.Logger) *handlers.GraphHandler {
	return handlers.NewGraphHandler(builder, store, logger)
}

// ProvideQueryHandler creates the query handler
func ProvideQueryHandler(store ports.GraphStore, qs *queries.QueryService, limits handlers.LimitsProvider, logger *zap.Logger) *handlers.QueryHandler {
	return handlers.NewQueryHandler(store, qs, limits, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(graphHandler *handlers.GraphHandler, queryHandler *handlers.QueryHandler, metrics *observability.Metrics, validator *auth.JWTValidator, cfg *config.Config, logger *zap.Logger) *rest.Router {
	var metricsHandler http.Handler
	if metrics != nil {
		metricsHandler = metrics.Handler()
	}
	return rest.NewRouter(graphHandler, queryHandler, metricsHandler, validator, cfg.EnableCORS, logger)
}
