// Package repository defines the record store contract for user catalog rows.
package repository

import (
	"context"
	"fmt"

	"reminer-backend/internal/domain"
)

// Store persists one UserRecord per user. Mutations address a nested list by
// Path and are conditional on the record version the caller last read; a
// stale version fails with ErrConflict and bumps nothing.
type Store interface {
	// Load returns ErrNotFound when no record exists for userID.
	Load(ctx context.Context, userID string) (*domain.UserRecord, error)

	// Save creates the record if it does not exist yet. An existing record is
	// left untouched and ErrConflict is returned.
	Save(ctx context.Context, record *domain.UserRecord) error

	// AppendChild appends item to the list at path, creating the list when it
	// does not exist.
	AppendChild(ctx context.Context, userID string, path Path, item any, expectedVersion int64) error

	// ReplaceAt overwrites the element at index of the list at path. The index
	// must already exist.
	ReplaceAt(ctx context.Context, userID string, path Path, index int, item any, expectedVersion int64) error

	// ReplaceList overwrites the whole list at path.
	ReplaceList(ctx context.Context, userID string, path Path, items any, expectedVersion int64) error
}

// Path addresses a nested list inside a UserRecord.
type Path struct {
	// AppIndex is -1 for the top level apps list.
	AppIndex int
}

// AppsPath addresses the user's apps list.
func AppsPath() Path { return Path{AppIndex: -1} }

// ReviewsPath addresses the reviews list of the app at appIndex.
func ReviewsPath(appIndex int) Path { return Path{AppIndex: appIndex} }

// IsApps reports whether p addresses the apps list.
func (p Path) IsApps() bool { return p.AppIndex < 0 }

// String renders p as a document path, e.g. "apps[2].reviews".
func (p Path) String() string {
	if p.IsApps() {
		return "apps"
	}
	return fmt.Sprintf("apps[%d].reviews", p.AppIndex)
}
