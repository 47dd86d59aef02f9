package matcher

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriface/veriface/internal/domain"
)

// vectorWithSimilarity builds a unit vector whose cosine similarity against
// the unit query [1, 0] is exactly sim.
func vectorWithSimilarity(sim float64) []float64 {
	return []float64{sim, math.Sqrt(1 - sim*sim)}
}

func TestRankedMatcher_ThresholdAndOrdering(t *testing.T) {
	query := domain.Descriptor{1, 0}
	entries := []json.RawMessage{
		entry(t, map[string]interface{}{"label": "a", "descriptor": vectorWithSimilarity(0.9)}),
		entry(t, map[string]interface{}{"label": "b", "descriptor": vectorWithSimilarity(0.4)}),
		entry(t, map[string]interface{}{"label": "c", "descriptor": vectorWithSimilarity(0.7)}),
	}

	matches, err := NewRankedMatcher().WithThreshold(0.6).Match(query, entries)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].Label)
	assert.InDelta(t, 0.9, matches[0].Similarity, 1e-9)
	assert.Equal(t, "c", matches[1].Label)
	assert.InDelta(t, 0.7, matches[1].Similarity, 1e-9)
	// Both metrics are reported.
	assert.Greater(t, matches[1].Distance, matches[0].Distance)
}

func TestRankedMatcher_StableOrderOnTies(t *testing.T) {
	query := domain.Descriptor{1, 0}
	same := vectorWithSimilarity(0.8)
	entries := []json.RawMessage{
		entry(t, map[string]interface{}{"label": "first", "descriptor": same}),
		entry(t, map[string]interface{}{"label": "second", "descriptor": same}),
	}

	matches, err := NewRankedMatcher().Match(query, entries)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "first", matches[0].Label)
	assert.Equal(t, "second", matches[1].Label)
}

func TestRankedMatcher_EmptyResultIsNotAnError(t *testing.T) {
	query := domain.Descriptor{1, 0}
	entries := []json.RawMessage{
		entry(t, map[string]interface{}{"label": "far", "descriptor": vectorWithSimilarity(0.1)}),
	}

	matches, err := NewRankedMatcher().Match(query, entries)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = NewRankedMatcher().Match(query, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRankedMatcher_SkipsMalformedEntries(t *testing.T) {
	query := domain.Descriptor{1, 0}
	entries := []json.RawMessage{
		json.RawMessage(`{"label":"broken","descriptor":"oops"}`),
		entry(t, map[string]interface{}{"label": "good", "descriptor": vectorWithSimilarity(0.95)}),
	}

	matches, err := NewRankedMatcher().Match(query, entries)
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "good", matches[0].Label)
}

func TestRankedMatcher_MultiVectorEntries(t *testing.T) {
	query := domain.Descriptor{1, 0}
	entries := []json.RawMessage{
		entry(t, map[string]interface{}{"label": "jane", "descriptors": [][]float64{
			vectorWithSimilarity(0.9),
			vectorWithSimilarity(0.65),
		}}),
	}

	matches, err := NewRankedMatcher().Match(query, entries)
	require.NoError(t, err)

	// Every qualifying vector ranks on its own.
	require.Len(t, matches, 2)
	assert.Equal(t, "jane", matches[0].Label)
	assert.InDelta(t, 0.9, matches[0].Similarity, 1e-9)
	assert.InDelta(t, 0.65, matches[1].Similarity, 1e-9)
}

func TestRankedMatcher_LengthMismatchFails(t *testing.T) {
	query := domain.Descriptor{1, 0, 0}
	entries := []json.RawMessage{
		entry(t, map[string]interface{}{"label": "jane", "descriptor": []float64{1, 0}}),
	}

	_, err := NewRankedMatcher().Match(query, entries)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrDescriptorLengthMismatch.Message)
}
