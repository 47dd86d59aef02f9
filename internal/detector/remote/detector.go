// Package remote implements the detector capability on top of an external
// embedding service reached over HTTP. The service owns the model; this
// package owns the lifecycle: a detector is constructed, warmed up once, and
// only then serves detection calls.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"sync/atomic"

	"github.com/veriface/veriface/internal/detector"
	"github.com/veriface/veriface/internal/domain"
)

// Detector implements detector.Detector against a remote embedding service.
type Detector struct {
	client *Client
	ready  atomic.Bool
}

// NewDetector creates a detector for the given service configuration. The
// detector is not ready until Warmup succeeds.
func NewDetector(config Config) *Detector {
	return &Detector{
		client: NewClient(config),
	}
}

// Warmup probes the service health endpoint and flips the detector into the
// ready state. Call it once during process startup; detection calls before a
// successful warmup fail with domain.ErrDetectorNotReady.
func (d *Detector) Warmup(ctx context.Context) error {
	if err := d.client.Health(ctx); err != nil {
		return fmt.Errorf("warmup embedding service: %w", err)
	}
	d.ready.Store(true)
	return nil
}

// DetectSingleFace encodes the frame as JPEG, sends it to the service and
// maps the response to a single detection. When the service reports several
// faces the highest-confidence one wins; the pipeline is single-face only.
func (d *Detector) DetectSingleFace(ctx context.Context, img image.Image) (*domain.Detection, error) {
	if !d.ready.Load() {
		return nil, domain.ErrDetectorNotReady
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	resp, err := d.client.Detect(ctx, base64.StdEncoding.EncodeToString(buf.Bytes()))
	if err != nil {
		return nil, domain.ErrDetectorUnavailable.WithError(err)
	}

	if len(resp.Faces) == 0 {
		return nil, nil
	}

	best := resp.Faces[0]
	for _, face := range resp.Faces[1:] {
		if face.Confidence > best.Confidence {
			best = face
		}
	}

	return &domain.Detection{
		Box: domain.BoundingBox{
			X:      best.Box.X,
			Y:      best.Box.Y,
			Width:  best.Box.Width,
			Height: best.Box.Height,
		},
		Confidence: best.Confidence,
		Descriptor: domain.Descriptor(best.Descriptor),
	}, nil
}

var _ detector.Detector = (*Detector)(nil)
