// Package memory is an in-process repository.Store with the same conditional
// write semantics as the DynamoDB store. Used by tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"reminer-backend/internal/domain"
	"reminer-backend/internal/repository"
)

// Store keeps user records in a map guarded by a mutex.
type Store struct {
	mu      sync.RWMutex
	records map[string]*domain.UserRecord
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[string]*domain.UserRecord)}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Load(ctx context.Context, userID string) (*domain.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, repository.ErrNotFound{Resource: "user", ID: userID}
	}
	return rec.Clone(), nil
}

func (s *Store) Save(ctx context.Context, record *domain.UserRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record == nil || record.UserID == "" {
		return fmt.Errorf("memory store: record must have a user id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.UserID]; exists {
		return repository.ErrConflict{Resource: "user", ID: record.UserID, Reason: "already exists"}
	}
	rec := record.Clone()
	if rec.Apps == nil {
		rec.Apps = []domain.AppRecord{}
	}
	rec.Version = 1
	s.records[rec.UserID] = rec
	return nil
}

func (s *Store) AppendChild(ctx context.Context, userID string, path repository.Path, item any, expectedVersion int64) error {
	return s.mutate(ctx, userID, expectedVersion, func(rec *domain.UserRecord) error {
		if path.IsApps() {
			apps, err := toApps(item)
			if err != nil {
				return err
			}
			rec.Apps = append(rec.Apps, apps...)
			return nil
		}
		if err := checkAppIndex(rec, path); err != nil {
			return err
		}
		reviews, err := toReviews(item)
		if err != nil {
			return err
		}
		app := &rec.Apps[path.AppIndex]
		app.Reviews = append(app.Reviews, reviews...)
		return nil
	})
}

func (s *Store) ReplaceAt(ctx context.Context, userID string, path repository.Path, index int, item any, expectedVersion int64) error {
	return s.mutate(ctx, userID, expectedVersion, func(rec *domain.UserRecord) error {
		if path.IsApps() {
			app, ok := item.(domain.AppRecord)
			if !ok {
				return fmt.Errorf("memory store: %s expects domain.AppRecord, got %T", path, item)
			}
			if index < 0 || index >= len(rec.Apps) {
				return outOfRange(userID, path, index)
			}
			rec.Apps[index] = app.Clone()
			return nil
		}
		if err := checkAppIndex(rec, path); err != nil {
			return err
		}
		review, ok := item.(domain.ReviewRecord)
		if !ok {
			return fmt.Errorf("memory store: %s expects domain.ReviewRecord, got %T", path, item)
		}
		reviews := rec.Apps[path.AppIndex].Reviews
		if index < 0 || index >= len(reviews) {
			return outOfRange(userID, path, index)
		}
		reviews[index] = review.Clone()
		return nil
	})
}

func (s *Store) ReplaceList(ctx context.Context, userID string, path repository.Path, items any, expectedVersion int64) error {
	return s.mutate(ctx, userID, expectedVersion, func(rec *domain.UserRecord) error {
		if path.IsApps() {
			apps, err := toApps(items)
			if err != nil {
				return err
			}
			rec.Apps = apps
			return nil
		}
		if err := checkAppIndex(rec, path); err != nil {
			return err
		}
		reviews, err := toReviews(items)
		if err != nil {
			return err
		}
		rec.Apps[path.AppIndex].Reviews = reviews
		return nil
	})
}

// mutate applies fn to a private copy and swaps it in only when fn succeeds,
// so a failed write never leaves a partial change behind.
func (s *Store) mutate(ctx context.Context, userID string, expectedVersion int64, fn func(*domain.UserRecord) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[userID]
	if !ok {
		return repository.ErrNotFound{Resource: "user", ID: userID}
	}
	if current.Version != expectedVersion {
		return repository.NewVersionConflict(userID, expectedVersion)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.Version = current.Version + 1
	s.records[userID] = next
	return nil
}

func checkAppIndex(rec *domain.UserRecord, path repository.Path) error {
	if path.AppIndex >= len(rec.Apps) {
		return repository.ErrConflict{Resource: "user", ID: rec.UserID, Reason: fmt.Sprintf("path %s does not exist", path)}
	}
	return nil
}

func outOfRange(userID string, path repository.Path, index int) error {
	return repository.ErrConflict{Resource: "user", ID: userID, Reason: fmt.Sprintf("%s[%d] does not exist", path, index)}
}

func toApps(v any) ([]domain.AppRecord, error) {
	switch t := v.(type) {
	case domain.AppRecord:
		return []domain.AppRecord{t.Clone()}, nil
	case []domain.AppRecord:
		out := make([]domain.AppRecord, len(t))
		for i, a := range t {
			out[i] = a.Clone()
		}
		return out, nil
	default:
		return nil, fmt.Errorf("memory store: expected apps, got %T", v)
	}
}

func toReviews(v any) ([]domain.ReviewRecord, error) {
	switch t := v.(type) {
	case domain.ReviewRecord:
		return []domain.ReviewRecord{t.Clone()}, nil
	case []domain.ReviewRecord:
		out := make([]domain.ReviewRecord, len(t))
		for i, r := range t {
			out[i] = r.Clone()
		}
		return out, nil
	default:
		return nil, fmt.Errorf("memory store: expected reviews, got %T", v)
	}
}
