package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindUnwrapsWrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("get article: %w", ErrNotFound)
	assert.Equal(t, ErrNotFound, Kind(wrapped))
	assert.Equal(t, ErrBadRequest, Kind(BadRequest("page size %d", 0)))
	assert.Equal(t, ErrInternal, Kind(errors.New("boom")))
}

func TestNotFoundAsForbidden(t *testing.T) {
	err := NotFoundAsForbidden(fmt.Errorf("article: %w", ErrNotFound))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)

	other := errors.New("db down")
	assert.Same(t, other, NotFoundAsForbidden(other))
}

func TestKindRecognisesRateLimitAndNotFoundHelper(t *testing.T) {
	assert.Equal(t, ErrRateLimited, Kind(fmt.Errorf("send message: %w", ErrRateLimited)))
	assert.Equal(t, ErrNotFound, Kind(NotFound("thread %s", "abc")))
}
