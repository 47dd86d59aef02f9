// Package gate implements the enrollment quality gate: one detection run
// followed by a fixed battery of heuristics over the detected box and the
// frame pixels. All checks always run so a single call reports every defect
// at once.
package gate

import (
	"context"
	"image"
	"log/slog"

	"golang.org/x/image/draw"

	"github.com/veriface/veriface/internal/detector"
	"github.com/veriface/veriface/internal/domain"
)

// Violation reasons reported in ValidationResult.Reasons.
const (
	ReasonNoFace        = "no face detected"
	ReasonLowConfidence = "detection confidence too low"
	ReasonTooFar        = "face too far from camera"
	ReasonTooClose      = "face too close to camera"
	ReasonNotCentered   = "face not centered"
	ReasonTooDark       = "image too dark"
	ReasonTooBright     = "image too bright"
	ReasonProcessing    = "failed to process image"
)

// Heuristic thresholds. Face area ratio and center offset are relative to
// the frame; brightness is mean 8-bit perceived luminance.
const (
	minConfidence        = 0.9
	minFaceAreaRatio     = 0.10
	maxFaceAreaRatio     = 0.60
	maxCenterOffsetRatio = 0.25
	minBrightness        = 60.0
	maxBrightness        = 200.0
)

// luminanceSampleEdge bounds the cost of the brightness check: frames are
// downscaled so their longest edge is at most this many pixels before the
// luminance mean is taken.
const luminanceSampleEdge = 64

// Options carries the optional frame dimension hints. When zero, the frame
// dimensions come from the image bounds. Hints matter when the detector ran
// over a crop or a scaled variant of the transported frame.
type Options struct {
	FrameWidth  int
	FrameHeight int
}

// Gate evaluates whether a frame is a usable biometric sample.
type Gate struct {
	detector detector.Detector
	logger   *slog.Logger
}

func New(det detector.Detector, logger *slog.Logger) *Gate {
	return &Gate{
		detector: det,
		logger:   logger,
	}
}

// Validate runs detection once and applies every quality heuristic.
func (g *Gate) Validate(ctx context.Context, img image.Image) domain.ValidationResult {
	return g.ValidateWithOptions(ctx, img, Options{})
}

// ValidateWithOptions is Validate with explicit frame dimension hints.
//
// Detector failures never escape this boundary: they come back as an invalid
// result with a single generic reason. When a face was detected, the
// descriptor, confidence and box are populated regardless of the verdict.
func (g *Gate) ValidateWithOptions(ctx context.Context, img image.Image, opts Options) domain.ValidationResult {
	detection, err := g.detector.DetectSingleFace(ctx, img)
	if err != nil {
		g.logger.Warn("quality gate: detection failed", slog.Any("error", err))
		return domain.ValidationResult{
			IsValid: false,
			Reasons: []string{ReasonProcessing},
		}
	}

	if detection == nil {
		return domain.ValidationResult{
			IsValid: false,
			Reasons: []string{ReasonNoFace},
		}
	}

	frameWidth := float64(img.Bounds().Dx())
	frameHeight := float64(img.Bounds().Dy())
	if opts.FrameWidth > 0 {
		frameWidth = float64(opts.FrameWidth)
	}
	if opts.FrameHeight > 0 {
		frameHeight = float64(opts.FrameHeight)
	}

	var reasons []string

	if detection.Confidence < minConfidence {
		reasons = append(reasons, ReasonLowConfidence)
	}

	frameArea := frameWidth * frameHeight
	if frameArea > 0 {
		switch ratio := detection.Box.Area() / frameArea; {
		case ratio < minFaceAreaRatio:
			reasons = append(reasons, ReasonTooFar)
		case ratio > maxFaceAreaRatio:
			reasons = append(reasons, ReasonTooClose)
		}
	}

	if frameWidth > 0 {
		offset := detection.Box.CenterX() - frameWidth/2
		if offset < 0 {
			offset = -offset
		}
		if offset > frameWidth*maxCenterOffsetRatio {
			reasons = append(reasons, ReasonNotCentered)
		}
	}

	switch brightness := meanLuminance(img); {
	case brightness < minBrightness:
		reasons = append(reasons, ReasonTooDark)
	case brightness > maxBrightness:
		reasons = append(reasons, ReasonTooBright)
	}

	confidence := detection.Confidence
	box := detection.Box

	return domain.ValidationResult{
		IsValid:    len(reasons) == 0,
		Reasons:    reasons,
		Descriptor: detection.Descriptor,
		Confidence: &confidence,
		Box:        &box,
	}
}

// meanLuminance computes the mean perceived luminance (0.299R + 0.587G +
// 0.114B over 8-bit channels) of the frame, sampling from a bounded
// downscale so the check stays cheap on large frames.
func meanLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0
	}

	if width > luminanceSampleEdge || height > luminanceSampleEdge {
		scale := luminanceSampleEdge
		dstW, dstH := width, height
		if width >= height {
			dstW = scale
			dstH = height * scale / width
		} else {
			dstH = scale
			dstW = width * scale / height
		}
		if dstW < 1 {
			dstW = 1
		}
		if dstH < 1 {
			dstH = 1
		}

		scaled := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, bounds, draw.Src, nil)
		img = scaled
		bounds = scaled.Bounds()
	}

	var sum float64
	var count float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA channels are 16-bit; scale down to 8-bit.
			sum += 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			count++
		}
	}

	return sum / count
}
