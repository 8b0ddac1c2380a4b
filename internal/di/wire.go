//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"reminer-backend/internal/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideStore,
	ProvideEventPublisher,
	ProvideCollector,
	ProvideCloudWatchRecorder,
	ProvideRecorder,
	ProvideCatalogService,
	ProvideAnalysisClient,
	ProvideOrchestrator,
	ProvideAppHandler,
	ProvideReviewHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
