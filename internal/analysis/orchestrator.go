package analysis

import (
	"context"

	"reminer-backend/internal/catalog"
	"reminer-backend/internal/domain"
	appErrors "reminer-backend/pkg/errors"

	"go.uber.org/zap"
)

// Request is the body of an analyze call.
type Request struct {
	FeatureExtraction   bool          `json:"featureExtraction"`
	FeatureModel        string        `json:"featureModel"`
	SentimentExtraction bool          `json:"sentimentExtraction"`
	SentimentModel      string        `json:"sentimentModel"`
	Reviews             []ReviewInput `json:"reviews"`
}

// ReviewInput identifies a review to analyze. When Sentiments is empty the
// stored review's sentences are used.
type ReviewInput struct {
	ReviewID   string                  `json:"reviewId"`
	ID         string                  `json:"id"`
	Sentiments []domain.SentimentEntry `json:"sentiments"`
}

// Key returns the review id, whichever field carried it.
func (r ReviewInput) Key() string {
	if r.ReviewID != "" {
		return r.ReviewID
	}
	return r.ID
}

// Validate checks the extraction selection and review ids.
func (r Request) Validate() error {
	if !r.FeatureExtraction && !r.SentimentExtraction {
		return appErrors.NewValidation("select feature extraction, sentiment extraction or both")
	}
	if r.FeatureExtraction && r.FeatureModel == "" {
		return appErrors.NewValidation("featureModel is required when featureExtraction is set")
	}
	if r.SentimentExtraction && r.SentimentModel == "" {
		return appErrors.NewValidation("sentimentModel is required when sentimentExtraction is set")
	}
	if len(r.Reviews) == 0 {
		return appErrors.NewValidation("at least one review is required")
	}
	for i, review := range r.Reviews {
		if review.Key() == "" {
			return appErrors.NewValidationf("review %d has no id", i)
		}
	}
	return nil
}

// Models returns the model names for the selected extractions.
func (r Request) Models() Models {
	var m Models
	if r.FeatureExtraction {
		m.FeatureModel = r.FeatureModel
	}
	if r.SentimentExtraction {
		m.SentimentModel = r.SentimentModel
	}
	return m
}

// SentenceFailure records a sentence whose analysis call failed. The
// sentence contributed nothing to its review.
type SentenceFailure struct {
	ReviewID string `json:"review_id"`
	Sentence string `json:"sentence"`
	Reason   string `json:"reason"`
}

// PartialResult is the outcome of an analyze call. Reviews holds every
// review that was persisted, even if some of its sentences failed.
type PartialResult struct {
	Reviews  []catalog.ReviewView `json:"reviews"`
	Failures []SentenceFailure    `json:"failures"`
	Missing  []string             `json:"missing"`
}

// Degraded reports whether anything was skipped.
func (p *PartialResult) Degraded() bool {
	return len(p.Failures) > 0 || len(p.Missing) > 0
}

// Orchestrator analyzes reviews sentence by sentence and stores the result.
type Orchestrator struct {
	catalog  catalog.Service
	analyzer Analyzer
	events   domain.EventPublisher
	logger   *zap.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(svc catalog.Service, analyzer Analyzer, events domain.EventPublisher, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{catalog: svc, analyzer: analyzer, events: events, logger: logger}
}

// Analyze runs every sentence of every requested review through the
// analyzer, sequentially, and replaces each review's features and
// sentiments with the aggregate. Failed sentences and reviews that no longer
// exist are reported in the result, not as an error.
func (o *Orchestrator) Analyze(ctx context.Context, userID string, req Request) (*PartialResult, error) {
	if userID == "" {
		return nil, appErrors.NewValidation("user_id is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	models := req.Models()

	// One load up front: fails for an unknown user and gives the stored
	// sentences of reviews the request does not carry sentences for.
	stored, err := o.catalog.DetailedReviews(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]catalog.ReviewView, len(stored))
	for _, r := range stored {
		if _, dup := byID[r.ID]; !dup {
			byID[r.ID] = r
		}
	}

	result := &PartialResult{
		Reviews:  []catalog.ReviewView{},
		Failures: []SentenceFailure{},
		Missing:  []string{},
	}

	for _, input := range req.Reviews {
		reviewID := input.Key()

		current, ok := byID[reviewID]
		if !ok {
			result.Missing = append(result.Missing, reviewID)
			continue
		}
		sentences := sentencesFor(input, current)

		features := []string{}
		sentiments := []domain.SentimentEntry{}
		for _, sentence := range sentences {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			res, err := o.analyzer.Analyze(ctx, sentence, models)
			if err != nil {
				o.logger.Warn("sentence analysis failed",
					zap.String("user_id", userID),
					zap.String("review_id", reviewID),
					zap.Error(err))
				result.Failures = append(result.Failures, SentenceFailure{ReviewID: reviewID, Sentence: sentence, Reason: err.Error()})
				continue
			}

			features = append(features, res.Features...)
			if len(res.Emotions) == 0 {
				sentiments = append(sentiments, domain.SentimentEntry{Sentence: sentence, Sentiment: domain.NotRelevant})
				continue
			}
			for _, emotion := range res.Emotions {
				sentiments = append(sentiments, domain.SentimentEntry{Sentence: sentence, Sentiment: emotion})
			}
		}

		view, err := o.catalog.SaveAnalysis(ctx, userID, reviewID, features, sentiments)
		if appErrors.IsNotFound(err) {
			o.logger.Info("review removed during analysis", zap.String("user_id", userID), zap.String("review_id", reviewID))
			result.Missing = append(result.Missing, reviewID)
			continue
		}
		if err != nil {
			return nil, err
		}
		result.Reviews = append(result.Reviews, *view)
	}

	o.logger.Info("reviews analyzed",
		zap.String("user_id", userID),
		zap.Int("analyzed", len(result.Reviews)),
		zap.Int("failed_sentences", len(result.Failures)),
		zap.Int("missing", len(result.Missing)))

	if len(result.Reviews) > 0 {
		ids := make([]string, 0, len(result.Reviews))
		for _, r := range result.Reviews {
			ids = append(ids, r.ID)
		}
		event := domain.NewEvent(domain.EventReviewsAnalyzed, userID, map[string]any{
			"review_ids":       ids,
			"failed_sentences": len(result.Failures),
		})
		if err := o.events.Publish(ctx, event); err != nil {
			o.logger.Warn("failed to publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return result, nil
}

// sentencesFor returns the sentences to analyze: those carried in the
// request, else those recorded on the stored review.
func sentencesFor(input ReviewInput, stored catalog.ReviewView) []string {
	if len(input.Sentiments) > 0 {
		return catalog.Sentences(domain.ReviewRecord{Review: stored.Review, Sentiments: input.Sentiments})
	}
	return catalog.Sentences(domain.ReviewRecord{Review: stored.Review, Sentiments: stored.Sentiments})
}
