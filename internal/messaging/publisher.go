// Package messaging publishes catalog events to EventBridge.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"reminer-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

const (
	// DefaultSource is the EventBridge source of every catalog event.
	DefaultSource = "reminer.catalog"
	// EventBridge accepts at most 10 entries per PutEvents call.
	maxBatchSize = 10
)

// EventBridgeAPI is the subset of the EventBridge client the publisher uses.
type EventBridgeAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgePublisher implements domain.EventPublisher using AWS EventBridge.
type EventBridgePublisher struct {
	client   EventBridgeAPI
	eventBus string
	source   string
	logger   *zap.Logger
}

// NewEventBridgePublisher creates a publisher for eventBus.
func NewEventBridgePublisher(client EventBridgeAPI, eventBus, source string, logger *zap.Logger) *EventBridgePublisher {
	if source == "" {
		source = DefaultSource
	}
	return &EventBridgePublisher{client: client, eventBus: eventBus, source: source, logger: logger}
}

// Publish sends events in batches.
func (p *EventBridgePublisher) Publish(ctx context.Context, events ...domain.Event) error {
	for i := 0; i < len(events); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(events) {
			end = len(events)
		}
		if err := p.publishBatch(ctx, events[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *EventBridgePublisher) publishBatch(ctx context.Context, events []domain.Event) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(events))
	for _, event := range events {
		detail, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
		}
		entries = append(entries, types.PutEventsRequestEntry{
			Source:       aws.String(p.source),
			DetailType:   aws.String(string(event.Type)),
			Detail:       aws.String(string(detail)),
			EventBusName: aws.String(p.eventBus),
			Time:         aws.Time(event.OccurredAt),
		})
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to put events: %w", err)
	}
	if out.FailedEntryCount > 0 {
		for i, entry := range out.Entries {
			if entry.ErrorCode != nil {
				p.logger.Warn("event rejected",
					zap.Int("index", i),
					zap.String("code", aws.ToString(entry.ErrorCode)),
					zap.String("message", aws.ToString(entry.ErrorMessage)))
			}
		}
		return fmt.Errorf("%d events failed to publish", out.FailedEntryCount)
	}

	p.logger.Debug("events published", zap.Int("count", len(entries)), zap.String("bus", p.eventBus))
	return nil
}

// NoopPublisher drops every event. Used when no event bus is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...domain.Event) error { return nil }

// RecordingPublisher keeps published events in memory for tests and local
// runs without an event bus.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []domain.Event
	Err    error
}

func (r *RecordingPublisher) Publish(_ context.Context, events ...domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, events...)
	return nil
}

// Types returns the types of the recorded events in order.
func (r *RecordingPublisher) Types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
