// Package descriptor implements the distance and similarity kernel shared by
// the matching policies. Both metrics refuse to compare descriptors of
// different lengths: a mismatch means store corruption or embedding-model
// version skew and must fail loudly, never silently truncate.
package descriptor

import (
	"fmt"
	"math"

	"github.com/veriface/veriface/internal/domain"
)

// EuclideanDistance returns sqrt(Σ(aᵢ-bᵢ)²) over raw descriptor coordinates.
func EuclideanDistance(a, b domain.Descriptor) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.ErrDescriptorLengthMismatch.WithError(
			fmt.Errorf("got %d and %d", len(a), len(b)))
	}

	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}

	return math.Sqrt(sum), nil
}

// CosineSimilarity returns dot(a,b) / (‖a‖·‖b‖). When either vector has zero
// norm the similarity is exactly 0, guarding the division without raising.
func CosineSimilarity(a, b domain.Descriptor) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.ErrDescriptorLengthMismatch.WithError(
			fmt.Errorf("got %d and %d", len(a), len(b)))
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Normalize returns a copy of the descriptor scaled to unit length. Zero
// vectors are returned unchanged.
func Normalize(d domain.Descriptor) domain.Descriptor {
	var norm float64
	for _, v := range d {
		norm += v * v
	}

	if norm == 0 {
		return d
	}

	norm = math.Sqrt(norm)
	normalized := make(domain.Descriptor, len(d))
	for i, v := range d {
		normalized[i] = v / norm
	}

	return normalized
}
