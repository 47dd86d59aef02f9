package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriface/veriface/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantLabel   string
		wantVectors []domain.Descriptor
		wantErr     bool
	}{
		{
			name:        "labeled descriptor",
			raw:         `{"label":"jane","descriptor":[0.1,0.2,0.3]}`,
			wantLabel:   "jane",
			wantVectors: []domain.Descriptor{{0.1, 0.2, 0.3}},
		},
		{
			name:        "labeled multi-vector entry",
			raw:         `{"label":"jane","descriptors":[[0.1,0.2],[0.3,0.4]]}`,
			wantLabel:   "jane",
			wantVectors: []domain.Descriptor{{0.1, 0.2}, {0.3, 0.4}},
		},
		{
			name:        "identity record with array face",
			raw:         `{"name":"jane","code":"42","face":[0.5,0.6]}`,
			wantLabel:   `{"name":"jane","code":"42"}`,
			wantVectors: []domain.Descriptor{{0.5, 0.6}},
		},
		{
			name:        "identity record with string-encoded face",
			raw:         `{"name":"jane","code":"42","face":"[0.5,0.6]"}`,
			wantLabel:   `{"name":"jane","code":"42"}`,
			wantVectors: []domain.Descriptor{{0.5, 0.6}},
		},
		{
			name:        "identity record with numeric code",
			raw:         `{"name":"jane","code":7,"face":[1]}`,
			wantLabel:   `{"name":"jane","code":7}`,
			wantVectors: []domain.Descriptor{{1}},
		},
		{
			name:        "bare descriptor falls back to unknown",
			raw:         `{"descriptor":[0.9,0.8]}`,
			wantLabel:   domain.UnknownLabel,
			wantVectors: []domain.Descriptor{{0.9, 0.8}},
		},
		{
			name:        "bare descriptor with partial metadata",
			raw:         `{"descriptor":[0.9],"name":"jane"}`,
			wantLabel:   `{"name":"jane","code":"unknown"}`,
			wantVectors: []domain.Descriptor{{0.9}},
		},
		{
			name:        "bare numeric array",
			raw:         `[0.1,0.2,0.3]`,
			wantLabel:   domain.UnknownLabel,
			wantVectors: []domain.Descriptor{{0.1, 0.2, 0.3}},
		},
		{
			name:        "label takes priority over identity fields",
			raw:         `{"label":"x","descriptor":[1],"name":"jane","code":"1","face":[2]}`,
			wantLabel:   "x",
			wantVectors: []domain.Descriptor{{1}},
		},
		{
			name:    "unparseable descriptor string",
			raw:     `{"label":"jane","descriptor":"not json"}`,
			wantErr: true,
		},
		{
			name:    "descriptor of wrong type",
			raw:     `{"label":"jane","descriptor":{"x":1}}`,
			wantErr: true,
		},
		{
			name:    "empty descriptor",
			raw:     `{"label":"jane","descriptor":[]}`,
			wantErr: true,
		},
		{
			name:    "no recognizable shape",
			raw:     `{"foo":"bar"}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			raw:     `{"label":`,
			wantErr: true,
		},
		{
			name:    "scalar entry",
			raw:     `42`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorContains(t, err, domain.ErrMalformedStoreEntry.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, tt.wantVectors, got.Descriptors)
		})
	}
}

func TestNormalizeAll(t *testing.T) {
	entries := []json.RawMessage{
		json.RawMessage(`{"label":"a","descriptor":[1,2]}`),
		json.RawMessage(`{"broken":`),
		json.RawMessage(`{"label":"b","descriptor":"garbage"}`),
		json.RawMessage(`[3,4]`),
	}

	normalized, errs := NormalizeAll(entries)

	require.Len(t, normalized, 2)
	assert.Equal(t, "a", normalized[0].Label)
	assert.Equal(t, domain.UnknownLabel, normalized[1].Label)
	assert.Len(t, errs, 2)
}

func TestNormalizeAll_Empty(t *testing.T) {
	normalized, errs := NormalizeAll(nil)
	assert.Empty(t, normalized)
	assert.Empty(t, errs)
}

func TestDecodeLabel(t *testing.T) {
	label, identity := DecodeLabel(`{"name":"jane","code":"42"}`)
	assert.Equal(t, `{"name":"jane","code":"42"}`, label)
	require.NotNil(t, identity)
	assert.Equal(t, "jane", identity["name"])

	label, identity = DecodeLabel("opaque-id")
	assert.Equal(t, "opaque-id", label)
	assert.Nil(t, identity)
}
