package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathString(t *testing.T) {
	assert.Equal(t, "apps", AppsPath().String())
	assert.Equal(t, "apps[0].reviews", ReviewsPath(0).String())
	assert.Equal(t, "apps[12].reviews", ReviewsPath(12).String())
	assert.True(t, AppsPath().IsApps())
	assert.False(t, ReviewsPath(3).IsApps())
}

func TestErrorPredicates(t *testing.T) {
	nf := fmt.Errorf("load: %w", ErrNotFound{Resource: "user", ID: "u1"})
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsConflict(nf))

	c := NewVersionConflict("u1", 3)
	assert.True(t, IsConflict(c))
	assert.Contains(t, c.Error(), "record version 3")
}
