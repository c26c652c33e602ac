package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ibor-valuation/internal/types"
)

func TestCategorizeFindsWrappedErrors(t *testing.T) {
	base := NewNotFoundError("portfolio", "P-ALPHA", "2025-01-02")
	wrapped := fmt.Errorf("resolve position: %w", base)

	got := Categorize(wrapped)
	assert.Same(t, base, got)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsUnknownReference(wrapped))
	assert.Equal(t, http.StatusNotFound, got.StatusCode)
}

func TestNotFoundAndUnknownReferenceAreDistinct(t *testing.T) {
	notFound := NewNotFoundError("instrument", "EQ-IBM", "1999-01-01")
	unknown := NewUnknownReferenceError("instrument", "EQ-NOPE")

	assert.Equal(t, "NOT_FOUND", notFound.Code)
	assert.Equal(t, "UNKNOWN_REFERENCE", unknown.Code)
	assert.True(t, IsUnknownReference(unknown))
	assert.False(t, IsNotFound(unknown))
	assert.True(t, IsUserError(unknown))
}

func TestInvalidParameter(t *testing.T) {
	err := NewInvalidParameterError("asOf", "expected YYYY-MM-DD")

	assert.True(t, IsInvalidInput(err))
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "asOf", err.Details["parameter"])
}

func TestCategorizeUnknownErrorIsInternal(t *testing.T) {
	got := Categorize(fmt.Errorf("boom"))

	assert.Equal(t, CategorySystem, got.Category)
	assert.True(t, IsSystemError(got))
	assert.Nil(t, Categorize(nil))
}

func TestCategorizeServiceError(t *testing.T) {
	got := Categorize(&types.ServiceError{Code: "UNKNOWN_REFERENCE", Message: "unknown portfolio"})

	assert.Equal(t, CategoryUnknownReference, got.Category)
	assert.Equal(t, http.StatusNotFound, got.StatusCode)
}

func TestToServiceErrorDropsCause(t *testing.T) {
	err := NewInvalidParameterError("page", "expected an integer")
	err.Cause = fmt.Errorf("strconv.Atoi: parsing \"x\": invalid syntax")

	svcErr := err.ToServiceError()
	assert.Equal(t, "INVALID_INPUT", svcErr.Code)
	assert.Equal(t, err.Message, svcErr.Message)
	assert.Equal(t, "page", svcErr.Details["parameter"])
	assert.NotContains(t, svcErr.Error(), "strconv")
}

func TestCacheErrorIsSystemError(t *testing.T) {
	err := NewCacheError("read ibor:portfolio:P-ALPHA", fmt.Errorf("dial tcp: connection refused"))

	assert.Equal(t, CategoryCache, err.Category)
	assert.True(t, IsSystemError(fmt.Errorf("lookup: %w", err)))
	assert.False(t, IsUserError(err))
}

func TestDatabaseErrorUnwraps(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := NewDatabaseError("find prices", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "find prices")
}
