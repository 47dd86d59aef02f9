package service

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"

	"github.com/veriface/veriface/internal/detector"
	"github.com/veriface/veriface/internal/domain"
	"github.com/veriface/veriface/internal/gate"
	"github.com/veriface/veriface/internal/matcher"
)

// FaceService orchestrates the quality gate and the matching policies over
// one shared detector. It holds no mutable state between calls: the
// reference store arrives fresh on every call and is never cached.
type FaceService struct {
	detector       detector.Detector
	gate           *gate.Gate
	logger         *slog.Logger
	matchThreshold float64
	rankThreshold  float64
}

func NewFaceService(det detector.Detector, logger *slog.Logger) *FaceService {
	return &FaceService{
		detector:       det,
		gate:           gate.New(det, logger),
		logger:         logger,
		matchThreshold: matcher.DefaultBestThreshold,
		rankThreshold:  matcher.DefaultRankedThreshold,
	}
}

// WithThresholds overrides the per-policy default thresholds.
func (s *FaceService) WithThresholds(match, rank float64) *FaceService {
	s.matchThreshold = match
	s.rankThreshold = rank
	return s
}

// Validate runs the enrollment quality gate over one frame.
func (s *FaceService) Validate(ctx context.Context, img image.Image) domain.ValidationResult {
	return s.gate.Validate(ctx, img)
}

// ValidateFrame is Validate with explicit frame dimension hints; zero values
// fall back to the image bounds.
func (s *FaceService) ValidateFrame(ctx context.Context, img image.Image, frameWidth, frameHeight int) domain.ValidationResult {
	return s.gate.ValidateWithOptions(ctx, img, gate.Options{
		FrameWidth:  frameWidth,
		FrameHeight: frameHeight,
	})
}

// Recognize detects the face in the frame and classifies its descriptor
// against the store with the best-match policy.
func (s *FaceService) Recognize(ctx context.Context, img image.Image, entries []json.RawMessage, threshold *float64) (*domain.MatchResult, error) {
	detection, err := s.detector.DetectSingleFace(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	if detection == nil {
		return nil, domain.ErrNoFaceDetected
	}

	return s.MatchDescriptor(ctx, detection.Descriptor, entries, threshold)
}

// MatchDescriptor classifies a caller-supplied descriptor against the store
// with the best-match policy.
func (s *FaceService) MatchDescriptor(ctx context.Context, query domain.Descriptor, entries []json.RawMessage, threshold *float64) (*domain.MatchResult, error) {
	t, err := s.resolveThreshold(threshold, s.matchThreshold)
	if err != nil {
		return nil, err
	}

	result, err := matcher.NewBestMatcher().WithThreshold(t).Match(query, entries)
	if err != nil {
		return nil, fmt.Errorf("match descriptor: %w", err)
	}

	s.logger.Debug("descriptor matched",
		slog.Bool("matched", result.Matched),
		slog.Float64("threshold", t),
		slog.Int("store_size", len(entries)),
	)

	return result, nil
}

// Rank scores the store against a caller-supplied descriptor with the ranked
// policy.
func (s *FaceService) Rank(ctx context.Context, query domain.Descriptor, entries []json.RawMessage, threshold *float64) ([]domain.RankedMatch, error) {
	t, err := s.resolveThreshold(threshold, s.rankThreshold)
	if err != nil {
		return nil, err
	}

	matches, err := matcher.NewRankedMatcher().WithThreshold(t).Match(query, entries)
	if err != nil {
		return nil, fmt.Errorf("rank descriptors: %w", err)
	}

	return matches, nil
}

// resolveThreshold applies the per-policy default when the caller omitted a
// threshold and rejects values outside [0, 1].
func (s *FaceService) resolveThreshold(requested *float64, fallback float64) (float64, error) {
	if requested == nil {
		return fallback, nil
	}
	if *requested < 0 || *requested > 1 {
		return 0, domain.ErrInvalidThreshold
	}
	return *requested, nil
}
