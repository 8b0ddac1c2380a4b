// Package analysis runs review sentences through the external feature and
// sentiment model service and folds the labels back into stored reviews.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"reminer-backend/pkg/observability"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Models selects the model for each extraction. An empty name skips it.
type Models struct {
	FeatureModel   string
	SentimentModel string
}

// Result is the labels detected in one sentence.
type Result struct {
	Emotions []string
	Features []string
}

// Analyzer analyzes one sentence.
type Analyzer interface {
	Analyze(ctx context.Context, sentence string, models Models) (Result, error)
}

// ClientConfig configures the HTTP analyzer.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration

	// Circuit breaker
	FailureThreshold float64
	MinRequests      uint32
	OpenTimeout      time.Duration
}

// DefaultClientConfig returns the default configuration for baseURL.
func DefaultClientConfig(baseURL string, timeout time.Duration) ClientConfig {
	return ClientConfig{
		BaseURL:          baseURL,
		Timeout:          timeout,
		FailureThreshold: 0.8,
		MinRequests:      5,
		OpenTimeout:      60 * time.Second,
	}
}

// Client calls the analysis service over HTTP, one request per sentence.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	metrics observability.Recorder
	logger  *zap.Logger
}

// NewClient creates a Client. httpClient may be nil; its timeout is replaced
// by cfg.Timeout either way.
func NewClient(cfg ClientConfig, httpClient *http.Client, metrics observability.Recorder, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = cfg.Timeout

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "analysis",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL: cfg.BaseURL,
		http:    httpClient,
		breaker: breaker,
		metrics: metrics,
		logger:  logger,
	}
}

type analyzeRequest struct {
	Text []analyzeText `json:"text"`
}

type analyzeText struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type analyzeResponse struct {
	AnalyzedReviews []struct {
		ID        string `json:"id"`
		Sentences []struct {
			FeatureData *struct {
				Feature string `json:"feature"`
			} `json:"featureData"`
			SentimentData *struct {
				Sentiment string `json:"sentiment"`
			} `json:"sentimentData"`
		} `json:"sentences"`
	} `json:"analyzed_reviews"`
}

// Analyze posts sentence to the service. Anything but a 200 with a decodable
// body is an error.
func (c *Client) Analyze(ctx context.Context, sentence string, models Models) (Result, error) {
	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.call(ctx, sentence, models)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.RecordAnalysisCall(observability.OutcomeRejected, 0)
		return Result{}, fmt.Errorf("analysis service unavailable: %w", err)
	case err != nil:
		c.metrics.RecordAnalysisCall(observability.OutcomeFailure, time.Since(start))
		return Result{}, err
	}
	c.metrics.RecordAnalysisCall(observability.OutcomeSuccess, time.Since(start))
	return out.(Result), nil
}

func (c *Client) call(ctx context.Context, sentence string, models Models) (Result, error) {
	endpoint, err := c.endpoint(models)
	if err != nil {
		return Result{}, err
	}
	body, err := json.Marshal(analyzeRequest{Text: []analyzeText{{ID: "1", Text: sentence}}})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Result{}, fmt.Errorf("analysis service returned status %d", resp.StatusCode)
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return decoded.result(), nil
}

func (c *Client) endpoint(models Models) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid analysis base url: %w", err)
	}
	q := u.Query()
	if models.FeatureModel != "" {
		q.Set("feature_model", models.FeatureModel)
	}
	if models.SentimentModel != "" {
		q.Set("sentiment_model", models.SentimentModel)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r analyzeResponse) result() Result {
	res := Result{Emotions: []string{}, Features: []string{}}
	for _, review := range r.AnalyzedReviews {
		for _, s := range review.Sentences {
			if s.SentimentData != nil && s.SentimentData.Sentiment != "" {
				res.Emotions = append(res.Emotions, s.SentimentData.Sentiment)
			}
			if s.FeatureData != nil && s.FeatureData.Feature != "" {
				res.Features = append(res.Features, s.FeatureData.Feature)
			}
		}
	}
	return res
}
