package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"reminer-backend/internal/catalog"
	"reminer-backend/internal/domain"
	"reminer-backend/internal/messaging"
	"reminer-backend/internal/repository/memory"
	appErrors "reminer-backend/pkg/errors"
	"reminer-backend/pkg/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, sentence string, models Models) (Result, error) {
	args := m.Called(ctx, sentence, models)
	return args.Get(0).(Result), args.Error(1)
}

type fixture struct {
	svc      catalog.Service
	analyzer *MockAnalyzer
	events   *messaging.RecordingPublisher
	orch     *Orchestrator
	appID    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	events := &messaging.RecordingPublisher{}
	svc := catalog.NewService(memory.NewStore(), events, observability.NopRecorder{}, zap.NewNop(),
		catalog.WithRetryPolicy(3, time.Millisecond))

	_, err := svc.RegisterUser(ctx, catalog.NewUser{UserID: "u1"})
	require.NoError(t, err)
	appIDs, err := svc.CreateApps(ctx, "u1", []catalog.AppFields{{AppName: "Notes"}})
	require.NoError(t, err)
	_, err = svc.CreateReviews(ctx, "u1", appIDs[0], []catalog.ReviewFields{
		{ID: "r1", Review: "Great app. Crashes on login!"},
		{ID: "r2", Review: "Fine."},
	})
	require.NoError(t, err)

	analyzer := &MockAnalyzer{}
	return &fixture{
		svc:      svc,
		analyzer: analyzer,
		events:   events,
		orch:     NewOrchestrator(svc, analyzer, events, zap.NewNop()),
		appID:    appIDs[0],
	}
}

func TestRequestValidate(t *testing.T) {
	reviews := []ReviewInput{{ID: "r1"}}
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"nothing selected", Request{Reviews: reviews}, true},
		{"feature without model", Request{FeatureExtraction: true, Reviews: reviews}, true},
		{"sentiment without model", Request{SentimentExtraction: true, Reviews: reviews}, true},
		{"no reviews", Request{SentimentExtraction: true, SentimentModel: "GPT"}, true},
		{"review without id", Request{SentimentExtraction: true, SentimentModel: "GPT", Reviews: []ReviewInput{{}}}, true},
		{"sentiment only", Request{SentimentExtraction: true, SentimentModel: "GPT", Reviews: reviews}, false},
		{"both", Request{FeatureExtraction: true, FeatureModel: "t-frex", SentimentExtraction: true, SentimentModel: "GPT", Reviews: reviews}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.True(t, appErrors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("unselected model is not sent", func(t *testing.T) {
		req := Request{FeatureModel: "t-frex", SentimentExtraction: true, SentimentModel: "GPT"}
		assert.Equal(t, Models{SentimentModel: "GPT"}, req.Models())
	})
}

func TestAnalyzeFanOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	models := Models{FeatureModel: "t-frex", SentimentModel: "GPT"}

	f.analyzer.On("Analyze", mock.Anything, "Great app.", models).
		Return(Result{Emotions: []string{"joy", "trust"}, Features: []string{"design"}}, nil)
	f.analyzer.On("Analyze", mock.Anything, "Crashes on login!", models).
		Return(Result{Emotions: []string{}, Features: []string{"login"}}, nil)

	res, err := f.orch.Analyze(ctx, "u1", Request{
		FeatureExtraction: true, FeatureModel: "t-frex",
		SentimentExtraction: true, SentimentModel: "GPT",
		Reviews: []ReviewInput{{ReviewID: "r1"}},
	})
	require.NoError(t, err)
	assert.False(t, res.Degraded())
	require.Len(t, res.Reviews, 1)

	stored, err := f.svc.GetReview(ctx, "u1", "r1")
	require.NoError(t, err)
	assert.True(t, stored.Analyzed)
	assert.Equal(t, []string{"design", "login"}, stored.Features)
	assert.Equal(t, []domain.SentimentEntry{
		{Sentence: "Great app.", Sentiment: "joy"},
		{Sentence: "Great app.", Sentiment: "trust"},
		{Sentence: "Crashes on login!", Sentiment: domain.NotRelevant},
	}, stored.Sentiments)

	f.analyzer.AssertNumberOfCalls(t, "Analyze", 2)
	assert.Contains(t, f.events.Types(), domain.EventReviewsAnalyzed)
}

func TestAnalyzeAbsorbsFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	models := Models{SentimentModel: "GPT"}

	f.analyzer.On("Analyze", mock.Anything, "Great app.", models).
		Return(Result{}, errors.New("analysis service returned status 502"))
	f.analyzer.On("Analyze", mock.Anything, "Crashes on login!", models).
		Return(Result{Emotions: []string{"anger"}}, nil)

	res, err := f.orch.Analyze(ctx, "u1", Request{
		SentimentExtraction: true, SentimentModel: "GPT",
		Reviews: []ReviewInput{{ID: "r1"}, {ID: "gone"}},
	})
	require.NoError(t, err)
	assert.True(t, res.Degraded())
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "Great app.", res.Failures[0].Sentence)
	assert.Equal(t, []string{"gone"}, res.Missing)

	stored, err := f.svc.GetReview(ctx, "u1", "r1")
	require.NoError(t, err)
	assert.True(t, stored.Analyzed)
	assert.Equal(t, []domain.SentimentEntry{{Sentence: "Crashes on login!", Sentiment: "anger"}}, stored.Sentiments)
}

func TestAnalyzeUsesRequestSentences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	models := Models{SentimentModel: "GPT"}

	f.analyzer.On("Analyze", mock.Anything, "Fine.", models).Return(Result{Emotions: []string{"joy"}}, nil)

	_, err := f.orch.Analyze(ctx, "u1", Request{
		SentimentExtraction: true, SentimentModel: "GPT",
		Reviews: []ReviewInput{{ID: "r2", Sentiments: []domain.SentimentEntry{
			{Sentence: "Fine.", Sentiment: domain.NotRelevant},
		}}},
	})
	require.NoError(t, err)
	f.analyzer.AssertExpectations(t)
}

func TestAnalyzeUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Analyze(context.Background(), "ghost", Request{
		SentimentExtraction: true, SentimentModel: "GPT",
		Reviews: []ReviewInput{{ID: "r1"}},
	})
	assert.True(t, appErrors.IsNotFound(err))
	f.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	f.analyzer.On("Analyze", mock.Anything, "Great app.", Models{SentimentModel: "GPT"}).
		Run(func(mock.Arguments) { cancel() }).
		Return(Result{Emotions: []string{"joy"}}, nil)

	_, err := f.orch.Analyze(ctx, "u1", Request{
		SentimentExtraction: true, SentimentModel: "GPT",
		Reviews: []ReviewInput{{ID: "r1"}},
	})
	assert.ErrorIs(t, err, context.Canceled)
	f.analyzer.AssertNumberOfCalls(t, "Analyze", 1)
}
