package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reminer-backend/internal/catalog"
	"reminer-backend/internal/config"
	"reminer-backend/internal/messaging"
	"reminer-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:      "test",
		AllowedOrigins:   []string{"*"},
		AWSRegion:        "us-east-1",
		UsersTable:       "users-test",
		StoreBackend:     config.StoreMemory,
		AnalysisBaseURL:  "http://localhost:3000",
		AnalysisTimeout:  time.Second,
		AppsPageSize:     4,
		ReviewsPageSize:  8,
		LogLevel:         "error",
		MetricsNamespace: "ReMiner",
	}
}

func TestInitializeContainer(t *testing.T) {
	ctx := context.Background()
	c, err := InitializeContainer(ctx, testConfig())
	require.NoError(t, err)

	assert.IsType(t, &memory.Store{}, c.Store)
	assert.IsType(t, messaging.NoopPublisher{}, c.Events)
	assert.Nil(t, c.CloudWatch)

	_, err = c.Catalog.RegisterUser(ctx, catalog.NewUser{UserID: "u1"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/apps/names?user_id=u1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	metrics := httptest.NewRecorder()
	c.Collector.Handler().ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metrics.Body.String(), `reminer_http_requests_total{method="GET",route="/apps/names",status="200"} 1`)

	assert.NotPanics(t, func() { c.Flush(ctx) })
}

func TestProvideLogger(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "loud"
	_, err := ProvideLogger(cfg)
	assert.Error(t, err)

	cfg.LogLevel = "debug"
	cfg.Environment = "production"
	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestProvideCloudWatchRecorder(t *testing.T) {
	cfg := testConfig()
	assert.Nil(t, ProvideCloudWatchRecorder(cfg, nil, nil))

	cfg.EnableMetrics = true
	assert.NotNil(t, ProvideCloudWatchRecorder(cfg, nil, nil))
	assert.Len(t, ProvideRecorder(ProvideCollector(cfg), ProvideCloudWatchRecorder(cfg, nil, nil)), 2)
}

func TestMetricsPrefix(t *testing.T) {
	assert.Equal(t, "reminer", metricsPrefix("ReMiner"))
	assert.Equal(t, "re_miner_v2", metricsPrefix("Re-Miner/v2"))
}
