package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "Invalid request", ErrBadRequest.Error())

	wrapped := ErrBadRequest.WithError(errors.New("missing field"))
	assert.Equal(t, "Invalid request: missing field", wrapped.Error())
}

func TestAppError_WithErrorKeepsSentinelClean(t *testing.T) {
	wrapped := ErrInvalidImage.WithError(errors.New("truncated file"))

	// The sentinel itself is never mutated.
	assert.Nil(t, ErrInvalidImage.Err)
	assert.Equal(t, ErrInvalidImage.Code, wrapped.Code)
	assert.Equal(t, ErrInvalidImage.StatusCode, wrapped.StatusCode)
	assert.NotNil(t, wrapped.Err)
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := ErrInternal.WithError(cause)

	assert.ErrorIs(t, wrapped, cause)
}

func TestAppError_SurvivesFmtWrapping(t *testing.T) {
	err := fmt.Errorf("recognize: %w", ErrNoFaceDetected)

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrNoFaceDetected.Code, appErr.Code)
	assert.Equal(t, 422, appErr.StatusCode)
}

func TestPredefinedErrorStatusCodes(t *testing.T) {
	tests := []struct {
		err        *AppError
		statusCode int
	}{
		{ErrInternal, 500},
		{ErrBadRequest, 400},
		{ErrValidationFailed, 422},
		{ErrInvalidImage, 422},
		{ErrNoFaceDetected, 422},
		{ErrMalformedStoreEntry, 422},
		{ErrDescriptorLengthMismatch, 422},
		{ErrInvalidThreshold, 422},
		{ErrDetectorNotReady, 503},
		{ErrDetectorUnavailable, 502},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.statusCode, tt.err.StatusCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
