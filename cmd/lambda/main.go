package main

import (
	"context"
	"log"
	"time"

	"reminer-backend/internal/config"
	"reminer-backend/internal/di"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"
)

var (
	// chiLambda wraps the Chi router for AWS Lambda integration
	chiLambda *chiadapter.ChiLambda

	container *di.Container

	coldStart = true
)

// init runs during cold start
func init() {
	coldStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	chiLambda = chiadapter.New(container.Router)

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
		zap.String("store", cfg.StoreBackend),
	)
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if coldStart {
		container.Logger.Info("first invocation after cold start",
			zap.String("request_id", req.RequestContext.RequestID))
		coldStart = false
	}

	resp, err := chiLambda.ProxyWithContext(ctx, req)

	// Metrics are buffered per invocation; the execution environment may be
	// frozen as soon as the handler returns.
	container.Flush(ctx)
	return resp, err
}

func main() {
	lambda.Start(Handler)
}
