package matcher

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/veriface/veriface/internal/descriptor"
	"github.com/veriface/veriface/internal/domain"
)

// RankedMatcher scores every reference vector against the query with both
// metrics, keeps those whose cosine similarity reaches the threshold, and
// returns them ordered best-first. Entries tied on similarity stay in store
// order.
type RankedMatcher struct {
	threshold float64
}

// NewRankedMatcher creates a matcher with the policy default threshold.
func NewRankedMatcher() *RankedMatcher {
	return &RankedMatcher{threshold: DefaultRankedThreshold}
}

// WithThreshold overrides the acceptance threshold on cosine similarity.
func (m *RankedMatcher) WithThreshold(threshold float64) *RankedMatcher {
	m.threshold = threshold
	return m
}

// Match ranks the store against the query. Malformed entries are skipped; an
// empty result is a valid answer, not an error. Length mismatches fail the
// whole call.
func (m *RankedMatcher) Match(query domain.Descriptor, entries []json.RawMessage) ([]domain.RankedMatch, error) {
	normalized := normalizeStore(entries)

	matches := make([]domain.RankedMatch, 0, len(normalized))
	for _, entry := range normalized {
		for _, vec := range entry.Descriptors {
			dist, err := descriptor.EuclideanDistance(query, vec)
			if err != nil {
				return nil, fmt.Errorf("label %q: %w", entry.Label, err)
			}
			sim, err := descriptor.CosineSimilarity(query, vec)
			if err != nil {
				return nil, fmt.Errorf("label %q: %w", entry.Label, err)
			}

			if sim < m.threshold {
				continue
			}

			matches = append(matches, domain.RankedMatch{
				Label:      entry.Label,
				Distance:   dist,
				Similarity: sim,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	return matches, nil
}
