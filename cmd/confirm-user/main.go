// Command confirm-user is the Cognito post-confirmation trigger. It creates
// the user's catalog record the first time the user confirms sign-up.
package main

import (
	"context"
	"log"
	"time"

	"reminer-backend/internal/catalog"
	"reminer-backend/internal/config"
	"reminer-backend/internal/di"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var container *di.Container

func init() {
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
}

// newUser maps the Cognito user attributes onto a catalog user.
func newUser(event events.CognitoEventUserPoolsPostConfirmation) catalog.NewUser {
	attrs := event.Request.UserAttributes
	userID := attrs["sub"]
	if userID == "" {
		userID = event.UserName
	}
	return catalog.NewUser{
		UserID:     userID,
		Email:      attrs["email"],
		Name:       attrs["name"],
		FamilyName: attrs["family_name"],
	}
}

// Handler registers the user and hands the event back to Cognito unchanged.
// An error here blocks the confirmation, so the record is guaranteed to exist
// once sign-up completes.
func Handler(ctx context.Context, event events.CognitoEventUserPoolsPostConfirmation) (events.CognitoEventUserPoolsPostConfirmation, error) {
	defer container.Flush(ctx)

	user := newUser(event)
	created, err := container.Catalog.RegisterUser(ctx, user)
	if err != nil {
		container.Logger.Error("failed to register user",
			zap.String("user_id", user.UserID),
			zap.String("trigger", event.TriggerSource),
			zap.Error(err))
		return event, err
	}

	container.Logger.Info("user confirmed",
		zap.String("user_id", user.UserID),
		zap.Bool("created", created))
	return event, nil
}

func main() {
	lambda.Start(Handler)
}
