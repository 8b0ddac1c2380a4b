package domain

import (
	"context"
	"time"
)

// EventType names a catalog change that other systems may react to.
type EventType string

const (
	EventAppsCreated     EventType = "AppsCreated"
	EventAppUpdated      EventType = "AppUpdated"
	EventAppDeleted      EventType = "AppDeleted"
	EventReviewsCreated  EventType = "ReviewsCreated"
	EventReviewUpdated   EventType = "ReviewUpdated"
	EventReviewDeleted   EventType = "ReviewDeleted"
	EventReviewsAnalyzed EventType = "ReviewsAnalyzed"
	EventUserRegistered  EventType = "UserRegistered"
)

// Event describes a committed change to one user's catalog.
type Event struct {
	Type       EventType      `json:"event_type"`
	UserID     string         `json:"user_id"`
	Detail     map[string]any `json:"detail,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(t EventType, userID string, detail map[string]any) Event {
	return Event{Type: t, UserID: userID, Detail: detail, OccurredAt: time.Now().UTC()}
}

// EventPublisher publishes catalog events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
