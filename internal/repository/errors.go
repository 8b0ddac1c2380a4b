package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound represents a resource not found error in the repository layer.
type ErrNotFound struct {
	Resource string // "user", "app", "review"
	ID       string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}

// IsNotFound checks if an error is a repository not found error.
func IsNotFound(err error) bool {
	var target ErrNotFound
	return errors.As(err, &target)
}

// ErrConflict is returned when a conditional write loses: the record version
// moved, a slot index no longer exists, or a create raced another create.
type ErrConflict struct {
	Resource string
	ID       string
	Reason   string
}

func (e ErrConflict) Error() string {
	return fmt.Sprintf("conflict with %s '%s': %s", e.Resource, e.ID, e.Reason)
}

// IsConflict checks if an error is a repository conflict error.
func IsConflict(err error) bool {
	var target ErrConflict
	return errors.As(err, &target)
}

// NewVersionConflict is the conflict every store reports for a stale version.
func NewVersionConflict(userID string, expected int64) error {
	return ErrConflict{Resource: "user", ID: userID, Reason: fmt.Sprintf("record version %d is stale", expected)}
}
