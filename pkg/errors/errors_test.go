package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_TypesMapToHTTPStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{NewValidationError("bad input"), http.StatusBadRequest},
		{NewNotFoundError("link"), http.StatusNotFound},
		{NewConflictError("already there"), http.StatusConflict},
		{NewConcurrencyError("busy"), http.StatusConflict},
		{NewInternalError("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus)
	}
}

func TestAppError_ErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError("save failed").WithCause(cause)

	assert.Contains(t, err.Error(), "save failed")
	assert.Contains(t, err.Error(), "disk full")
	assert.ErrorIs(t, err, cause)
}

func TestGetAppError_UnwrapsChains(t *testing.T) {
	inner := NewValidationError("invalid").WithCode("SOME_CODE")
	wrapped := fmt.Errorf("handling request: %w", inner)

	extracted := GetAppError(wrapped)
	require.NotNil(t, extracted)
	assert.Equal(t, "SOME_CODE", extracted.Code)

	assert.Nil(t, GetAppError(errors.New("plain")))
	assert.Nil(t, GetAppError(nil))
}

func TestDomainErrorConstructors(t *testing.T) {
	t.Run("invalid endpoints", func(t *testing.T) {
		err := NewInvalidEndpoints("a", "a")
		assert.True(t, IsCode(err, CodeInvalidEndpoints))
		assert.True(t, IsValidation(err))
	})

	t.Run("invalid weight carries the value", func(t *testing.T) {
		err := NewInvalidWeight(1.5)
		assert.True(t, IsCode(err, CodeInvalidWeight))
		assert.Equal(t, 1.5, err.Details["strength"])
	})

	t.Run("duplicate link is a conflict", func(t *testing.T) {
		err := NewDuplicateLink("a", "b", "reference")
		assert.True(t, IsCode(err, CodeDuplicateLink))
		assert.True(t, IsConflict(err))
	})

	t.Run("link not found", func(t *testing.T) {
		err := NewLinkNotFound("a-b-reference")
		assert.True(t, IsCode(err, CodeLinkNotFound))
		assert.True(t, IsNotFound(err))
	})

	t.Run("unsupported algorithm names the kind", func(t *testing.T) {
		err := NewUnsupportedAlgorithm("layout", "spiral")
		assert.True(t, IsCode(err, CodeUnsupportedAlgorithm))
		assert.Contains(t, err.Error(), "spiral")
	})

	t.Run("transition in progress maps to conflict status", func(t *testing.T) {
		err := NewTransitionInProgress()
		assert.True(t, IsCode(err, CodeTransitionInProgress))
		assert.Equal(t, http.StatusConflict, err.HTTPStatus)
	})
}
