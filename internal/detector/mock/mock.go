package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"image"
	"math"

	"github.com/veriface/veriface/internal/detector"
	"github.com/veriface/veriface/internal/domain"
)

const descriptorDimension = 128

// Detector implements detector.Detector for tests and development. The
// descriptor is derived from a hash of the pixel data, so the same image
// always yields the same embedding, and distinct images almost never collide.
type Detector struct {
	// MinFrameSize is the smallest frame edge (in pixels) that counts as a
	// detectable face. Frames below it report no face, letting tests drive
	// the no-face path with tiny images.
	MinFrameSize int
}

// New creates a mock detector with the default minimum frame size.
func New() *Detector {
	return &Detector{MinFrameSize: 32}
}

// DetectSingleFace reports one face covering the center half of the frame
// with a fixed high confidence, plus a deterministic unit-length descriptor.
func (d *Detector) DetectSingleFace(ctx context.Context, img image.Image) (*domain.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := float64(bounds.Dx())
	height := float64(bounds.Dy())

	if bounds.Dx() < d.MinFrameSize || bounds.Dy() < d.MinFrameSize {
		return nil, nil
	}

	return &domain.Detection{
		Box: domain.BoundingBox{
			X:      width * 0.25,
			Y:      height * 0.25,
			Width:  width * 0.5,
			Height: height * 0.5,
		},
		Confidence: 0.99,
		Descriptor: generateDescriptor(img),
	}, nil
}

// generateDescriptor hashes a fixed grid of pixel samples into a normalized
// 128-dimensional vector.
func generateDescriptor(img image.Image) domain.Descriptor {
	bounds := img.Bounds()
	hasher := sha256.New()

	// 16x16 sample grid keeps hashing cost independent of frame size.
	var buf [8]byte
	for gy := 0; gy < 16; gy++ {
		for gx := 0; gx < 16; gx++ {
			x := bounds.Min.X + gx*bounds.Dx()/16
			y := bounds.Min.Y + gy*bounds.Dy()/16
			r, g, b, _ := img.At(x, y).RGBA()
			binary.BigEndian.PutUint16(buf[0:2], uint16(r))
			binary.BigEndian.PutUint16(buf[2:4], uint16(g))
			binary.BigEndian.PutUint16(buf[4:6], uint16(b))
			hasher.Write(buf[:6])
		}
	}

	hash := hasher.Sum(nil)
	desc := make(domain.Descriptor, descriptorDimension)
	for i := range desc {
		desc[i] = (float64(hash[i%len(hash)])/255.0)*2 - 1
	}

	var norm float64
	for _, v := range desc {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range desc {
		desc[i] /= norm
	}

	return desc
}

var _ detector.Detector = (*Detector)(nil)
