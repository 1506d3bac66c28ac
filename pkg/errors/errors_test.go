package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidFeature, "record has no usable price")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeInvalidFeature, err.Code)
	assert.Equal(t, "[FEAT_001] record has no usable price", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestError_WithDetail(t *testing.T) {
	err := New(ErrCodeInvalidGeoPoint, "latitude out of range").WithDetail("lat=123.4")
	assert.Equal(t, "[GEO_001] latitude out of range: lat=123.4", err.Error())

	var nilErr *AppError
	assert.Nil(t, nilErr.WithDetail("ignored"))
}

func TestWrap(t *testing.T) {
	t.Run("NilIsNil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, ErrCodeDatabaseError, "query failed"))
	})

	t.Run("PreservesChain", func(t *testing.T) {
		cause := stderrors.New("connection refused")
		err := Wrap(cause, ErrCodeDatabaseError, "district rollup query failed")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, ErrCodeDatabaseError, err.Code)
	})

	t.Run("UnknownCodePreservesOriginal", func(t *testing.T) {
		inner := New(ErrCodeInvalidFeature, "bad record")
		err := Wrap(inner, ErrCodeUnknown, "while normalizing batch")
		assert.Equal(t, ErrCodeInvalidFeature, err.Code)
	})
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodePriceBelowFloor, "rent below sanity floor")
	wrapped := fmt.Errorf("outer: %w", inner)

	assert.True(t, IsCode(wrapped, ErrCodePriceBelowFloor))
	assert.False(t, IsCode(wrapped, ErrCodeCacheError))
	assert.False(t, IsCode(nil, ErrCodePriceBelowFloor))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(InvalidFeature("missing area")))
	assert.True(t, IsValidation(InvalidGeoPoint("lng out of range")))
	assert.False(t, IsValidation(Internal("boom")))
	assert.False(t, IsValidation(stderrors.New("plain")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeInvalidK, GetCode(New(ErrCodeInvalidK, "k must be positive")))
}

func TestCacheComputeFailure(t *testing.T) {
	assert.Nil(t, CacheComputeFailure(nil))

	cause := stderrors.New("store timeout")
	err := CacheComputeFailure(cause)
	assert.Equal(t, ErrCodeCacheComputeFailure, err.Code)
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeInvalidFeature, http.StatusBadRequest},
		{ErrCodeInvalidGeoPoint, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeStoreUnavailable, http.StatusServiceUnavailable},
		{ErrCodeCacheComputeFailure, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), "code: %s", tt.code)
	}
}
