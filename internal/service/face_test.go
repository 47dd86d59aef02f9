package service

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/veriface/veriface/internal/domain"
)

type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) DetectSingleFace(ctx context.Context, img image.Image) (*domain.Detection, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Detection), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T, label string, vec []float64) []json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{"label": label, "descriptor": vec})
	require.NoError(t, err)
	return []json.RawMessage{raw}
}

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 10, 10))
}

func TestFaceService_Recognize(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockDetector)
		store       []json.RawMessage
		threshold   *float64
		wantErr     error
		wantMatched bool
	}{
		{
			name: "successful recognition",
			setupMock: func(d *MockDetector) {
				d.On("DetectSingleFace", mock.Anything, mock.Anything).Return(&domain.Detection{
					Confidence: 0.99,
					Descriptor: domain.Descriptor{0.1, 0.2},
				}, nil)
			},
			store:       nil, // filled below
			wantMatched: true,
		},
		{
			name: "no face detected",
			setupMock: func(d *MockDetector) {
				d.On("DetectSingleFace", mock.Anything, mock.Anything).Return(nil, nil)
			},
			wantErr: domain.ErrNoFaceDetected,
		},
		{
			name: "detector failure propagates",
			setupMock: func(d *MockDetector) {
				d.On("DetectSingleFace", mock.Anything, mock.Anything).Return(nil, errors.New("backend down"))
			},
			wantErr: errors.New("backend down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := new(MockDetector)
			tt.setupMock(det)

			svc := NewFaceService(det, testLogger())

			store := tt.store
			if store == nil {
				store = testStore(t, "jane", []float64{0.1, 0.2})
			}

			result, err := svc.Recognize(context.Background(), testImage(), store, tt.threshold)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr.Error())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantMatched, result.Matched)
			det.AssertExpectations(t)
		})
	}
}

func TestFaceService_MatchDescriptor_DefaultThreshold(t *testing.T) {
	svc := NewFaceService(new(MockDetector), testLogger())

	// Distance 0.4 is inside the 0.5 best-match default.
	result, err := svc.MatchDescriptor(context.Background(),
		domain.Descriptor{0, 0},
		testStore(t, "jane", []float64{0.4, 0}),
		nil,
	)
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.InDelta(t, 0.6, result.Similarity, 1e-9)
}

func TestFaceService_MatchDescriptor_ExplicitThreshold(t *testing.T) {
	svc := NewFaceService(new(MockDetector), testLogger())

	threshold := 0.3
	result, err := svc.MatchDescriptor(context.Background(),
		domain.Descriptor{0, 0},
		testStore(t, "jane", []float64{0.4, 0}),
		&threshold,
	)
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestFaceService_InvalidThreshold(t *testing.T) {
	svc := NewFaceService(new(MockDetector), testLogger())

	for _, bad := range []float64{-0.1, 1.5} {
		threshold := bad
		_, err := svc.MatchDescriptor(context.Background(),
			domain.Descriptor{1}, testStore(t, "jane", []float64{1}), &threshold)
		require.Error(t, err)

		var appErr *domain.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, domain.ErrInvalidThreshold.Code, appErr.Code)
	}
}

func TestFaceService_Rank_UsesRankedDefault(t *testing.T) {
	svc := NewFaceService(new(MockDetector), testLogger())

	// Similarity 0.55: below the 0.6 ranked default, above nothing else.
	entries := testStore(t, "jane", []float64{0.55, 0.8352245219})

	matches, err := svc.Rank(context.Background(), domain.Descriptor{1, 0}, entries, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)

	threshold := 0.5
	matches, err = svc.Rank(context.Background(), domain.Descriptor{1, 0}, entries, &threshold)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestFaceService_WithThresholds(t *testing.T) {
	svc := NewFaceService(new(MockDetector), testLogger()).WithThresholds(0.2, 0.9)

	// Distance 0.4 exceeds the configured 0.2 default.
	result, err := svc.MatchDescriptor(context.Background(),
		domain.Descriptor{0, 0},
		testStore(t, "jane", []float64{0.4, 0}),
		nil,
	)
	require.NoError(t, err)
	assert.False(t, result.Matched)
}
