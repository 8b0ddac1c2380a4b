package catalog

import (
	"context"
	"fmt"
	"time"

	"reminer-backend/internal/domain"
	"reminer-backend/internal/pagination"
	"reminer-backend/internal/repository"
	appErrors "reminer-backend/pkg/errors"
	"reminer-backend/pkg/observability"
	"reminer-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewUser is the profile captured when a user confirms sign-up.
type NewUser struct {
	UserID     string `validate:"required"`
	Email      string `validate:"omitempty,email"`
	Name       string
	FamilyName string
}

// Service manages a user's apps and reviews.
type Service interface {
	RegisterUser(ctx context.Context, user NewUser) (bool, error)

	CreateApps(ctx context.Context, userID string, apps []AppFields) ([]string, error)
	ListApps(ctx context.Context, userID string, page pagination.Params) (pagination.Page[AppView], error)
	ListAppNames(ctx context.Context, userID string) ([]AppName, error)
	UpdateApp(ctx context.Context, userID, appID string, fields AppFields) (*AppView, error)
	DeleteApp(ctx context.Context, userID, appID string) error

	CreateReviews(ctx context.Context, userID, appID string, reviews []ReviewFields) ([]string, error)
	UpdateReview(ctx context.Context, userID, appID, reviewID string, fields ReviewFields) (*ReviewView, error)
	DeleteReview(ctx context.Context, userID, appID, reviewID string) error
	ListReviews(ctx context.Context, userID string, page pagination.Params) (pagination.Page[ReviewView], error)
	DetailedReviews(ctx context.Context, userID string) ([]ReviewView, error)
	DetailedAppReviews(ctx context.Context, userID, appID string) ([]ReviewView, error)
	GetReview(ctx context.Context, userID, reviewID string) (*ReviewView, error)
	SaveAnalysis(ctx context.Context, userID, reviewID string, features []string, sentiments []domain.SentimentEntry) (*ReviewView, error)
}

// Option customises a service.
type Option func(*service)

// WithRetryPolicy sets how many optimistic attempts a write gets and the
// first backoff delay, which doubles per attempt.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) Option {
	return func(s *service) {
		if maxRetries > 0 {
			s.maxRetries = maxRetries
		}
		s.baseDelay = baseDelay
	}
}

// WithIDGenerator replaces uuid generation, for deterministic tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *service) { s.newID = fn }
}

type service struct {
	store   repository.Store
	events  domain.EventPublisher
	metrics observability.Recorder
	logger  *zap.Logger

	newID      func() string
	maxRetries int
	baseDelay  time.Duration
}

// NewService creates a catalog Service.
func NewService(store repository.Store, events domain.EventPublisher, metrics observability.Recorder, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		store:      store,
		events:     events,
		metrics:    metrics,
		logger:     logger,
		newID:      func() string { return uuid.New().String() },
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) publish(ctx context.Context, t domain.EventType, userID string, detail map[string]any) {
	if err := s.events.Publish(ctx, domain.NewEvent(t, userID, detail)); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event_type", string(t)),
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// RegisterUser creates an empty catalog for a user. It reports false when a
// record already existed, which is left untouched.
func (s *service) RegisterUser(ctx context.Context, user NewUser) (bool, error) {
	if err := utils.ValidateStruct(user); err != nil {
		return false, appErrors.NewValidation(err.Error())
	}

	err := s.store.Save(ctx, &domain.UserRecord{
		UserID:     user.UserID,
		Email:      user.Email,
		Name:       user.Name,
		FamilyName: user.FamilyName,
		Apps:       []domain.AppRecord{},
	})
	if repository.IsConflict(err) {
		s.logger.Info("user already registered", zap.String("user_id", user.UserID))
		return false, nil
	}
	if err != nil {
		return false, s.storeError(err, "register user")
	}

	s.publish(ctx, domain.EventUserRegistered, user.UserID, nil)
	return true, nil
}

// Apps

func (s *service) CreateApps(ctx context.Context, userID string, apps []AppFields) ([]string, error) {
	if len(apps) == 0 {
		return nil, appErrors.NewValidation("at least one app is required")
	}
	for i := range apps {
		if err := utils.ValidateStruct(apps[i]); err != nil {
			return nil, appErrors.NewValidationf("app %d: %v", i, err)
		}
	}

	var ids []string
	err := s.withRetry(ctx, "CreateApps", userID, func(rec *domain.UserRecord) error {
		taken := make(map[string]bool, len(rec.Apps)+len(apps))
		for _, app := range rec.Apps {
			taken[app.ID] = true
		}

		ids = ids[:0]
		records := make([]domain.AppRecord, 0, len(apps))
		for _, fields := range apps {
			id := s.newID()
			for taken[id] {
				id = s.newID()
			}
			taken[id] = true
			ids = append(ids, id)
			records = append(records, NewApp(id, fields))
		}
		return s.store.AppendChild(ctx, userID, repository.AppsPath(), records, rec.Version)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("apps created", zap.String("user_id", userID), zap.Int("count", len(ids)))
	s.publish(ctx, domain.EventAppsCreated, userID, map[string]any{"app_ids": ids})
	return ids, nil
}

func (s *service) ListApps(ctx context.Context, userID string, page pagination.Params) (pagination.Page[AppView], error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return pagination.Page[AppView]{}, err
	}
	return pagination.Paginate(AppViews(rec), page), nil
}

func (s *service) ListAppNames(ctx context.Context, userID string) ([]AppName, error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]AppName, 0, len(rec.Apps))
	for _, app := range rec.Apps {
		names = append(names, AppName{ID: app.ID, AppName: app.AppName})
	}
	return names, nil
}

func (s *service) UpdateApp(ctx context.Context, userID, appID string, fields AppFields) (*AppView, error) {
	if appID == "" {
		return nil, appErrors.NewValidation("app_id is required")
	}
	if err := utils.ValidateStruct(fields); err != nil {
		return nil, appErrors.NewValidation(err.Error())
	}

	var updated domain.AppRecord
	err := s.withRetry(ctx, "UpdateApp", userID, func(rec *domain.UserRecord) error {
		idx, ok := FindAppIndex(rec, appID)
		if !ok {
			return appErrors.NewNotFound(fmt.Sprintf("app %s not found", appID))
		}
		updated = ApplyAppFields(rec.Apps[idx], fields)
		return s.store.ReplaceAt(ctx, userID, repository.AppsPath(), idx, updated, rec.Version)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventAppUpdated, userID, map[string]any{"app_id": appID})
	view := toAppView(updated)
	return &view, nil
}

func (s *service) DeleteApp(ctx context.Context, userID, appID string) error {
	if appID == "" {
		return appErrors.NewValidation("app_id is required")
	}

	err := s.withRetry(ctx, "DeleteApp", userID, func(rec *domain.UserRecord) error {
		remaining, removed := WithoutApp(rec.Apps, appID)
		if !removed {
			return appErrors.NewNotFound(fmt.Sprintf("app %s not found", appID))
		}
		return s.store.ReplaceList(ctx, userID, repository.AppsPath(), remaining, rec.Version)
	})
	if err != nil {
		return err
	}

	s.logger.Info("app deleted", zap.String("user_id", userID), zap.String("app_id", appID))
	s.publish(ctx, domain.EventAppDeleted, userID, map[string]any{"app_id": appID})
	return nil
}

// Reviews

func (s *service) CreateReviews(ctx context.Context, userID, appID string, reviews []ReviewFields) ([]string, error) {
	if appID == "" {
		return nil, appErrors.NewValidation("app_id is required")
	}
	if len(reviews) == 0 {
		return nil, appErrors.NewValidation("at least one review is required")
	}

	// Ids are fixed before the first attempt so retries write the same reviews.
	ids := make([]string, len(reviews))
	inBatch := make(map[string]bool, len(reviews))
	for i := range reviews {
		if err := utils.ValidateStruct(reviews[i]); err != nil {
			return nil, appErrors.NewValidationf("review %d: %v", i, err)
		}
		id := reviews[i].ID
		if id == "" {
			id = s.newID()
		}
		if inBatch[id] {
			return nil, appErrors.NewValidationf("review id %s is repeated in the request", id)
		}
		inBatch[id] = true
		ids[i] = id
	}

	err := s.withRetry(ctx, "CreateReviews", userID, func(rec *domain.UserRecord) error {
		idx, ok := FindAppIndex(rec, appID)
		if !ok {
			return appErrors.NewNotFound(fmt.Sprintf("app %s not found", appID))
		}
		records := make([]domain.ReviewRecord, 0, len(reviews))
		for i, fields := range reviews {
			if HasReviewID(rec.Apps[idx], ids[i]) {
				return appErrors.NewValidationf("review %s already exists in app %s", ids[i], appID)
			}
			records = append(records, NewReview(ids[i], fields))
		}
		return s.store.AppendChild(ctx, userID, repository.ReviewsPath(idx), records, rec.Version)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reviews created",
		zap.String("user_id", userID),
		zap.String("app_id", appID),
		zap.Int("count", len(ids)))
	s.publish(ctx, domain.EventReviewsCreated, userID, map[string]any{"app_id": appID, "review_ids": ids})
	return ids, nil
}

// UpdateReview finds the review by id alone. A caller supplied appID that
// disagrees with the review's actual app is logged and otherwise ignored.
func (s *service) UpdateReview(ctx context.Context, userID, appID, reviewID string, fields ReviewFields) (*ReviewView, error) {
	if reviewID == "" {
		return nil, appErrors.NewValidation("review_id is required")
	}
	if err := utils.ValidateStruct(fields); err != nil {
		return nil, appErrors.NewValidation(err.Error())
	}

	var view ReviewView
	err := s.withRetry(ctx, "UpdateReview", userID, func(rec *domain.UserRecord) error {
		loc, ok := FindReviewLocation(rec, reviewID)
		if !ok {
			return appErrors.NewNotFound(fmt.Sprintf("review %s not found", reviewID))
		}
		app := rec.Apps[loc.AppIndex]
		if appID != "" && app.ID != appID {
			s.logger.Warn("review belongs to a different app than requested",
				zap.String("user_id", userID),
				zap.String("review_id", reviewID),
				zap.String("requested_app_id", appID),
				zap.String("actual_app_id", app.ID))
		}

		merged := MergeReview(app.Reviews[loc.ReviewIndex], fields)
		view = toReviewView(app, merged)
		return s.store.ReplaceAt(ctx, userID, repository.ReviewsPath(loc.AppIndex), loc.ReviewIndex, merged, rec.Version)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventReviewUpdated, userID, map[string]any{"app_id": view.AppID, "review_id": reviewID})
	return &view, nil
}

func (s *service) DeleteReview(ctx context.Context, userID, appID, reviewID string) error {
	if appID == "" || reviewID == "" {
		return appErrors.NewValidation("app_id and review_id are required")
	}

	err := s.withRetry(ctx, "DeleteReview", userID, func(rec *domain.UserRecord) error {
		idx, ok := FindAppIndex(rec, appID)
		if !ok {
			return appErrors.NewNotFound(fmt.Sprintf("app %s not found", appID))
		}
		remaining, removed := WithoutReview(rec.Apps[idx].Reviews, reviewID)
		if !removed {
			return appErrors.NewNotFound(fmt.Sprintf("review %s not found in app %s", reviewID, appID))
		}
		return s.store.ReplaceList(ctx, userID, repository.ReviewsPath(idx), remaining, rec.Version)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, domain.EventReviewDeleted, userID, map[string]any{"app_id": appID, "review_id": reviewID})
	return nil
}

func (s *service) ListReviews(ctx context.Context, userID string, page pagination.Params) (pagination.Page[ReviewView], error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return pagination.Page[ReviewView]{}, err
	}
	return pagination.Paginate(FlattenReviews(rec), page), nil
}

func (s *service) DetailedReviews(ctx context.Context, userID string) ([]ReviewView, error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FlattenReviews(rec), nil
}

func (s *service) DetailedAppReviews(ctx context.Context, userID, appID string) ([]ReviewView, error) {
	if appID == "" {
		return nil, appErrors.NewValidation("app_id is required")
	}
	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx, ok := FindAppIndex(rec, appID)
	if !ok {
		return nil, appErrors.NewNotFound(fmt.Sprintf("app %s not found", appID))
	}
	app := rec.Apps[idx]
	out := make([]ReviewView, 0, len(app.Reviews))
	for _, r := range app.Reviews {
		out = append(out, toReviewView(app, r))
	}
	return out, nil
}

func (s *service) GetReview(ctx context.Context, userID, reviewID string) (*ReviewView, error) {
	if reviewID == "" {
		return nil, appErrors.NewValidation("review_id is required")
	}
	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc, ok := FindReviewLocation(rec, reviewID)
	if !ok {
		return nil, appErrors.NewNotFound(fmt.Sprintf("review %s not found", reviewID))
	}
	app := rec.Apps[loc.AppIndex]
	view := toReviewView(app, app.Reviews[loc.ReviewIndex])
	return &view, nil
}

// SaveAnalysis replaces a review's features and sentiments and marks it
// analyzed. The review is located afresh on every attempt.
func (s *service) SaveAnalysis(ctx context.Context, userID, reviewID string, features []string, sentiments []domain.SentimentEntry) (*ReviewView, error) {
	var view ReviewView
	err := s.withRetry(ctx, "SaveAnalysis", userID, func(rec *domain.UserRecord) error {
		loc, ok := FindReviewLocation(rec, reviewID)
		if !ok {
			return appErrors.NewNotFound(fmt.Sprintf("review %s not found", reviewID))
		}
		app := rec.Apps[loc.AppIndex]
		analyzed := ApplyAnalysis(app.Reviews[loc.ReviewIndex], features, sentiments)
		view = toReviewView(app, analyzed)
		return s.store.ReplaceAt(ctx, userID, repository.ReviewsPath(loc.AppIndex), loc.ReviewIndex, analyzed, rec.Version)
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}
