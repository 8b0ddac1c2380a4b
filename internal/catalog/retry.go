package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reminer-backend/internal/domain"
	"reminer-backend/internal/repository"
	appErrors "reminer-backend/pkg/errors"

	"go.uber.org/zap"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 50 * time.Millisecond
)

// withRetry runs one optimistic unit of work: load the user record, let fn
// resolve its target and issue a write conditional on rec.Version, and start
// over from a fresh load when the write loses to a concurrent writer.
func (s *service) withRetry(ctx context.Context, op, userID string, fn func(rec *domain.UserRecord) error) error {
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		rec, err := s.load(ctx, userID)
		if err != nil {
			return err
		}

		err = fn(rec)
		if err == nil {
			return nil
		}
		if !repository.IsConflict(err) {
			return s.storeError(err, op)
		}

		lastErr = err
		s.metrics.RecordConflictRetry(op)
		s.logger.Debug("write conflict, retrying",
			zap.String("operation", op),
			zap.String("user_id", userID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if attempt < s.maxRetries-1 {
			delay := s.baseDelay * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	s.logger.Warn("giving up after repeated write conflicts",
		zap.String("operation", op),
		zap.String("user_id", userID),
		zap.Int("attempts", s.maxRetries))
	return appErrors.NewConflict(fmt.Sprintf("%s: record for user %s changed concurrently", op, userID), lastErr)
}

func (s *service) load(ctx context.Context, userID string) (*domain.UserRecord, error) {
	if userID == "" {
		return nil, appErrors.NewValidation("user_id is required")
	}
	rec, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, s.storeError(err, "load user")
	}
	return rec, nil
}

// storeError maps repository errors onto service errors. Service errors
// pass through unchanged.
func (s *service) storeError(err error, op string) error {
	var appErr *appErrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case repository.IsNotFound(err):
		return appErrors.NewNotFound(err.Error())
	case repository.IsConflict(err):
		return appErrors.NewConflict(op, err)
	default:
		return appErrors.Wrap(err, op)
	}
}
