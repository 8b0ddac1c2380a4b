package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	AppName string `validate:"required"`
	Email   string `validate:"omitempty,email"`
	Version string `validate:"max=3"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(sample{AppName: "Notes"}))

	err := ValidateStruct(sample{Email: "nope", Version: "12345"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "app_name is required")
		assert.Contains(t, err.Error(), "email must be a valid email")
		assert.Contains(t, err.Error(), "version must be at most 3 characters")
	}
}
