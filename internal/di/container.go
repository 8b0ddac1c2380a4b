// Package di wires the application's dependencies.
package di

import (
	"context"

	"reminer-backend/internal/analysis"
	"reminer-backend/internal/catalog"
	"reminer-backend/internal/config"
	"reminer-backend/internal/domain"
	"reminer-backend/internal/repository"
	"reminer-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        repository.Store
	Events       domain.EventPublisher
	Collector    *observability.Collector
	CloudWatch   *observability.CloudWatchRecorder
	Metrics      observability.Recorder
	Catalog      catalog.Service
	Orchestrator *analysis.Orchestrator
	Router       *chi.Mux
}

// Flush pushes buffered CloudWatch metrics and syncs the logger. Failures are
// logged only.
func (c *Container) Flush(ctx context.Context) {
	if c.CloudWatch != nil {
		if err := c.CloudWatch.Flush(ctx); err != nil {
			c.Logger.Warn("failed to flush metrics", zap.Error(err))
		}
	}
	_ = c.Logger.Sync()
}
