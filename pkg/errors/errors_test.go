package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	require.NotNil(t, err)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.EqualError(t, err.Unwrap(), "boom")
}

func TestCloneKeepsIdentity(t *testing.T) {
	cloned := Clone(ErrConflict, "asset already disposed")
	assert.Equal(t, "asset already disposed", cloned.Message)
	assert.Equal(t, "conflict", ErrConflict.Message)
	assert.ErrorIs(t, fmt.Errorf("wrap: %w", cloned), ErrConflict)
	assert.NotErrorIs(t, cloned, ErrNotFound)
}

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrValidation, "Row 2 missing Device"))
	err := FromError(wrapped)
	assert.Equal(t, ErrValidation.Code, err.Code)
	assert.Equal(t, "Row 2 missing Device", err.Message)
}

func TestInternalAndInvalidKeepCause(t *testing.T) {
	cause := fmt.Errorf("pq: connection refused")

	internal := Internal(cause, "failed to list assets")
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.ErrorIs(t, internal, ErrInternal)
	assert.ErrorIs(t, internal, cause)
	assert.Equal(t, "failed to list assets: pq: connection refused", internal.Error())

	invalid := Invalid(cause, "invalid payload")
	assert.Equal(t, ErrValidation.Code, invalid.Code)
	assert.Equal(t, http.StatusBadRequest, invalid.Status)
}
