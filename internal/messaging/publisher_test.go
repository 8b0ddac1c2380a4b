package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"reminer-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEventBridge struct {
	inputs []*eventbridge.PutEventsInput
	out    *eventbridge.PutEventsOutput
	err    error
}

func (f *fakeEventBridge) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return &eventbridge.PutEventsOutput{}, nil
}

func TestEventBridgePublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("batches entries by ten", func(t *testing.T) {
		fake := &fakeEventBridge{}
		p := NewEventBridgePublisher(fake, "catalog-bus", "", zap.NewNop())

		events := make([]domain.Event, 23)
		for i := range events {
			events[i] = domain.NewEvent(domain.EventReviewsCreated, "u1", nil)
		}
		require.NoError(t, p.Publish(ctx, events...))

		require.Len(t, fake.inputs, 3)
		assert.Len(t, fake.inputs[0].Entries, 10)
		assert.Len(t, fake.inputs[2].Entries, 3)

		entry := fake.inputs[0].Entries[0]
		assert.Equal(t, DefaultSource, aws.ToString(entry.Source))
		assert.Equal(t, "ReviewsCreated", aws.ToString(entry.DetailType))
		assert.Equal(t, "catalog-bus", aws.ToString(entry.EventBusName))

		var detail map[string]any
		require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
		assert.Equal(t, "u1", detail["user_id"])
	})

	t.Run("reports failed entries", func(t *testing.T) {
		fake := &fakeEventBridge{out: &eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}},
		}}
		p := NewEventBridgePublisher(fake, "bus", "", zap.NewNop())
		err := p.Publish(ctx, domain.NewEvent(domain.EventAppDeleted, "u1", nil))
		assert.Error(t, err)
	})

	t.Run("propagates transport errors", func(t *testing.T) {
		p := NewEventBridgePublisher(&fakeEventBridge{err: errors.New("down")}, "bus", "", zap.NewNop())
		assert.Error(t, p.Publish(ctx, domain.NewEvent(domain.EventAppDeleted, "u1", nil)))
	})

	t.Run("no events is a no-op", func(t *testing.T) {
		fake := &fakeEventBridge{}
		p := NewEventBridgePublisher(fake, "bus", "", zap.NewNop())
		require.NoError(t, p.Publish(ctx))
		assert.Empty(t, fake.inputs)
	})
}
