// Package matcher implements the two nearest-neighbor matching policies over
// a caller-supplied reference store. The policies are deliberately separate:
// BestMatcher decides on Euclidean distance with a 0.5 default threshold,
// RankedMatcher decides on cosine similarity with a 0.6 default. The two
// decision rules are not interchangeable and their defaults must never be
// conflated.
package matcher

import (
	"encoding/json"

	"github.com/veriface/veriface/internal/domain"
	"github.com/veriface/veriface/internal/store"
)

// Per-policy default thresholds.
const (
	DefaultBestThreshold   = 0.5
	DefaultRankedThreshold = 0.6
)

// Non-match reasons reported by BestMatcher.
const (
	ReasonEmptyStore        = "no usable reference descriptors"
	ReasonAboveThreshold    = "best distance above threshold"
	ReasonExplicitlyUnknown = "nearest reference is explicitly unknown"
)

// normalizeStore runs the label codec over the raw store, dropping malformed
// entries. Per-entry malformations never abort a match: the store is
// externally sourced and may hold stale or partial records.
func normalizeStore(entries []json.RawMessage) []domain.LabeledDescriptor {
	normalized, _ := store.NormalizeAll(entries)
	return normalized
}
