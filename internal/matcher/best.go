package matcher

import (
	"encoding/json"
	"fmt"

	"github.com/veriface/veriface/internal/descriptor"
	"github.com/veriface/veriface/internal/domain"
	"github.com/veriface/veriface/internal/store"
)

// BestMatcher is the nearest-label classifier: entries are grouped by label,
// each label scores the minimum Euclidean distance from the query to any of
// its vectors, and the globally nearest label wins. Ties break toward the
// label encountered first in store order.
type BestMatcher struct {
	threshold float64
}

// NewBestMatcher creates a matcher with the policy default threshold.
func NewBestMatcher() *BestMatcher {
	return &BestMatcher{threshold: DefaultBestThreshold}
}

// WithThreshold overrides the acceptance threshold on distance.
func (m *BestMatcher) WithThreshold(threshold float64) *BestMatcher {
	m.threshold = threshold
	return m
}

// labelGroup collects every reference vector owned by one label, preserving
// first-encounter order across groups.
type labelGroup struct {
	label   string
	vectors []domain.Descriptor
}

// Match classifies the query against the store. Malformed entries are
// skipped; an empty or fully malformed store yields a NotMatched result, not
// an error. A length mismatch between the query and any reference vector is
// a contract violation and fails the whole call.
func (m *BestMatcher) Match(query domain.Descriptor, entries []json.RawMessage) (*domain.MatchResult, error) {
	groups := groupByLabel(normalizeStore(entries))
	if len(groups) == 0 {
		return &domain.MatchResult{
			Matched: false,
			Reason:  ReasonEmptyStore,
		}, nil
	}

	bestIdx := -1
	var bestDistance float64

	for i, group := range groups {
		for _, vec := range group.vectors {
			dist, err := descriptor.EuclideanDistance(query, vec)
			if err != nil {
				return nil, fmt.Errorf("label %q: %w", group.label, err)
			}
			// Strict less-than keeps the first-encountered label on ties.
			if bestIdx == -1 || dist < bestDistance {
				bestIdx = i
				bestDistance = dist
			}
		}
	}

	winner := groups[bestIdx]

	if winner.label == domain.UnknownLabel {
		return &domain.MatchResult{
			Matched:  false,
			Distance: &bestDistance,
			Reason:   ReasonExplicitlyUnknown,
		}, nil
	}

	if bestDistance > m.threshold {
		return &domain.MatchResult{
			Matched:  false,
			Distance: &bestDistance,
			Reason:   ReasonAboveThreshold,
		}, nil
	}

	label, identity := store.DecodeLabel(winner.label)

	return &domain.MatchResult{
		Matched:    true,
		Label:      label,
		Identity:   identity,
		Distance:   &bestDistance,
		Similarity: 1 - bestDistance,
	}, nil
}

// groupByLabel merges normalized entries sharing a label into one group,
// keeping the store's first-encounter order.
func groupByLabel(entries []domain.LabeledDescriptor) []labelGroup {
	var groups []labelGroup
	index := make(map[string]int, len(entries))

	for _, entry := range entries {
		if i, ok := index[entry.Label]; ok {
			groups[i].vectors = append(groups[i].vectors, entry.Descriptors...)
			continue
		}
		index[entry.Label] = len(groups)
		groups = append(groups, labelGroup{
			label:   entry.Label,
			vectors: entry.Descriptors,
		})
	}

	return groups
}
