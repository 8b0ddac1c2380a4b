package di

import (
	"context"
	"fmt"
	"net/http"

	"reminer-backend/internal/analysis"
	"reminer-backend/internal/catalog"
	"reminer-backend/internal/config"
	"reminer-backend/internal/domain"
	"reminer-backend/internal/handlers"
	"reminer-backend/internal/messaging"
	"reminer-backend/internal/repository"
	"reminer-backend/internal/repository/ddb"
	"reminer-backend/internal/repository/memory"
	"reminer-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("environment", cfg.Environment))
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// ProvideAWSConfig creates AWS configuration. With tracing enabled every SDK
// call is recorded as an X-Ray subsegment.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.EnableTracing {
		observability.InstrumentAWS(&awsCfg)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideStore selects the catalog store backend.
func ProvideStore(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) repository.Store {
	if cfg.StoreBackend == config.StoreMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore()
	}
	return ddb.NewStore(client, cfg.UsersTable, logger)
}

// ProvideEventPublisher publishes to EventBridge when a bus is configured.
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) domain.EventPublisher {
	if cfg.EventBusName == "" {
		return messaging.NoopPublisher{}
	}
	return messaging.NewEventBridgePublisher(client, cfg.EventBusName, messaging.DefaultSource, logger)
}

// ProvideCollector creates the Prometheus collector. It always records so the
// local server can expose /metrics.
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(metricsPrefix(cfg.MetricsNamespace))
}

// ProvideCloudWatchRecorder returns nil unless metrics are enabled.
func ProvideCloudWatchRecorder(cfg *config.Config, client *awscloudwatch.Client, logger *zap.Logger) *observability.CloudWatchRecorder {
	if !cfg.EnableMetrics {
		return nil
	}
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	return observability.NewCloudWatchRecorder(client, namespace, logger)
}

// ProvideRecorder combines the enabled recorders.
func ProvideRecorder(collector *observability.Collector, cw *observability.CloudWatchRecorder) observability.Recorder {
	recorders := observability.MultiRecorder{collector}
	if cw != nil {
		recorders = append(recorders, cw)
	}
	return recorders
}

// ProvideCatalogService creates the catalog service
func ProvideCatalogService(store repository.Store, events domain.EventPublisher, metrics observability.Recorder, logger *zap.Logger) catalog.Service {
	return catalog.NewService(store, events, metrics, logger)
}

// ProvideAnalysisClient creates the analysis endpoint client.
func ProvideAnalysisClient(cfg *config.Config, metrics observability.Recorder, logger *zap.Logger) *analysis.Client {
	httpClient := &http.Client{}
	if cfg.EnableTracing {
		httpClient = observability.TraceHTTPClient(httpClient)
	}
	return analysis.NewClient(
		analysis.DefaultClientConfig(cfg.AnalysisBaseURL, cfg.AnalysisTimeout),
		httpClient, metrics, logger,
	)
}

// ProvideOrchestrator creates the analysis orchestrator
func ProvideOrchestrator(svc catalog.Service, client *analysis.Client, events domain.EventPublisher, logger *zap.Logger) *analysis.Orchestrator {
	return analysis.NewOrchestrator(svc, client, events, logger)
}

// ProvideAppHandler creates the /apps handler
func ProvideAppHandler(cfg *config.Config, svc catalog.Service, logger *zap.Logger) *handlers.AppHandler {
	return handlers.NewAppHandler(svc, cfg.AppsPageSize, logger)
}

// ProvideReviewHandler creates the /reviews handler
func ProvideReviewHandler(cfg *config.Config, svc catalog.Service, orchestrator *analysis.Orchestrator, logger *zap.Logger) *handlers.ReviewHandler {
	return handlers.NewReviewHandler(svc, orchestrator, cfg.ReviewsPageSize, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(cfg *config.Config, apps *handlers.AppHandler, reviews *handlers.ReviewHandler, metrics observability.Recorder, logger *zap.Logger) *chi.Mux {
	return handlers.NewRouter(apps, reviews, metrics, handlers.RouterConfig{AllowedOrigins: cfg.AllowedOrigins}, logger)
}

// metricsPrefix turns a CloudWatch namespace into a valid Prometheus prefix.
func metricsPrefix(namespace string) string {
	out := make([]rune, 0, len(namespace))
	for _, r := range namespace {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
