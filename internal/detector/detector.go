// Package detector defines the face detection capability consumed by the
// quality gate and the recognition pipeline. The embedding model behind an
// implementation is loaded once at construction and reused read-only across
// concurrent calls.
package detector

import (
	"context"
	"image"

	"github.com/veriface/veriface/internal/domain"
)

// Detector localizes at most one face in a decoded image and extracts its
// embedding. A (nil, nil) return means the image was processed but no face
// was found; errors are reserved for decode and backend failures.
//
// For a given decoded image and model version the result is deterministic.
// Implementations must be safe for concurrent use.
type Detector interface {
	DetectSingleFace(ctx context.Context, img image.Image) (*domain.Detection, error)
}
