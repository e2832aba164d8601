package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(0, 5, false))
	assert.True(t, ShouldRetry(0, 5, true))
	assert.True(t, ShouldRetry(5, 5, true))
	assert.False(t, ShouldRetry(6, 5, true))
}

func TestIsRetryableError_Classification(t *testing.T) {
	retryable, errType := IsRetryableError(errors.New("connection refused"))
	assert.True(t, retryable)
	assert.Equal(t, "db_connection_error", errType)

	retryable, errType = IsRetryableError(errors.New("duplicate key value violates unique constraint"))
	assert.False(t, retryable)
	assert.Equal(t, "duplicate_key", errType)
}
