// Package store normalizes heterogeneous reference-store entries into
// canonical labeled descriptors. Producers of stored descriptors (enrollment
// API, external databases, ad-hoc imports) disagree on shape; this codec is
// the single seam where that heterogeneity is resolved so the matchers stay
// shape-agnostic.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/veriface/veriface/internal/domain"
)

var errNoKnownShape = errors.New("entry matches no known shape")

// rawEntry is the decode probe for every accepted object shape. Which shape
// an entry has is decided once, here, by dedicated decode paths in priority
// order; call sites never inspect field presence themselves.
type rawEntry struct {
	Label       *string           `json:"label"`
	Descriptor  json.RawMessage   `json:"descriptor"`
	Descriptors []json.RawMessage `json:"descriptors"`
	Name        *string           `json:"name"`
	Code        json.RawMessage   `json:"code"`
	Face        json.RawMessage   `json:"face"`
}

// identityLabel is the synthesized label payload for entries that carry
// name/code metadata instead of a preformatted label. Missing fields default
// to the unknown sentinel only here, never elsewhere.
type identityLabel struct {
	Name string      `json:"name"`
	Code interface{} `json:"code"`
}

// Normalize decodes one raw store entry into its canonical form.
//
// Accepted shapes, in priority order:
//  1. {label, descriptor} or {label, descriptors}
//  2. {name, code, face} — face is a numeric array or a JSON string of one;
//     the label becomes the compact JSON of {name, code}
//  3. {descriptor} with optional name/code, defaulting to "unknown"
//  4. a bare numeric array, accepted as an unlabeled vector
//
// Anything else is an error wrapping domain.ErrMalformedStoreEntry; callers
// skip such entries rather than aborting the whole match.
func Normalize(raw json.RawMessage) (*domain.LabeledDescriptor, error) {
	// Shape 4 first: a bare array is not an object and fails the probe.
	if vec, err := decodeVector(raw); err == nil {
		return &domain.LabeledDescriptor{
			Label:       domain.UnknownLabel,
			Descriptors: []domain.Descriptor{vec},
		}, nil
	}

	var entry rawEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, domain.ErrMalformedStoreEntry.WithError(err)
	}

	switch {
	case entry.Label != nil:
		return decodeLabeled(entry)
	case entry.Face != nil:
		return decodeIdentity(entry)
	case entry.Descriptor != nil:
		return decodeBareDescriptor(entry)
	default:
		return nil, domain.ErrMalformedStoreEntry.WithError(errNoKnownShape)
	}
}

// NormalizeAll normalizes a whole store, skipping malformed entries. The
// returned errors are diagnostics, one per skipped entry; an empty store or a
// fully malformed store yields an empty slice, never a failure.
func NormalizeAll(entries []json.RawMessage) ([]domain.LabeledDescriptor, []error) {
	normalized := make([]domain.LabeledDescriptor, 0, len(entries))
	var errs []error

	for i, raw := range entries {
		ld, err := Normalize(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		normalized = append(normalized, *ld)
	}

	return normalized, errs
}

func decodeLabeled(entry rawEntry) (*domain.LabeledDescriptor, error) {
	vectors, err := collectVectors(entry)
	if err != nil {
		return nil, err
	}

	return &domain.LabeledDescriptor{
		Label:       *entry.Label,
		Descriptors: vectors,
	}, nil
}

func decodeIdentity(entry rawEntry) (*domain.LabeledDescriptor, error) {
	vec, err := decodeVector(entry.Face)
	if err != nil {
		return nil, domain.ErrMalformedStoreEntry.WithError(err)
	}

	label, err := synthesizeLabel(entry)
	if err != nil {
		return nil, err
	}

	return &domain.LabeledDescriptor{
		Label:       label,
		Descriptors: []domain.Descriptor{vec},
	}, nil
}

func decodeBareDescriptor(entry rawEntry) (*domain.LabeledDescriptor, error) {
	vectors, err := collectVectors(entry)
	if err != nil {
		return nil, err
	}

	label := domain.UnknownLabel
	if entry.Name != nil || entry.Code != nil {
		var synthErr error
		label, synthErr = synthesizeLabel(entry)
		if synthErr != nil {
			return nil, synthErr
		}
	}

	return &domain.LabeledDescriptor{
		Label:       label,
		Descriptors: vectors,
	}, nil
}

// collectVectors gathers the descriptor payload of an entry, honoring both
// the singular and plural field.
func collectVectors(entry rawEntry) ([]domain.Descriptor, error) {
	if len(entry.Descriptors) > 0 {
		vectors := make([]domain.Descriptor, 0, len(entry.Descriptors))
		for _, raw := range entry.Descriptors {
			vec, err := decodeVector(raw)
			if err != nil {
				return nil, domain.ErrMalformedStoreEntry.WithError(err)
			}
			vectors = append(vectors, vec)
		}
		return vectors, nil
	}

	if entry.Descriptor == nil {
		return nil, domain.ErrMalformedStoreEntry.WithError(errNoKnownShape)
	}

	vec, err := decodeVector(entry.Descriptor)
	if err != nil {
		return nil, domain.ErrMalformedStoreEntry.WithError(err)
	}

	return []domain.Descriptor{vec}, nil
}

// synthesizeLabel builds the canonical JSON identity label from name/code
// metadata. The payload round-trips through DecodeLabel on the match side.
func synthesizeLabel(entry rawEntry) (string, error) {
	identity := identityLabel{
		Name: domain.UnknownLabel,
		Code: domain.UnknownLabel,
	}

	if entry.Name != nil {
		identity.Name = *entry.Name
	}
	if entry.Code != nil {
		var code interface{}
		if err := json.Unmarshal(entry.Code, &code); err != nil {
			return "", domain.ErrMalformedStoreEntry.WithError(err)
		}
		identity.Code = code
	}

	encoded, err := json.Marshal(identity)
	if err != nil {
		return "", domain.ErrMalformedStoreEntry.WithError(err)
	}

	return string(encoded), nil
}

// decodeVector accepts a numeric array or a JSON string encoding one. An
// empty vector is malformed: descriptors always have model-defined length.
func decodeVector(raw json.RawMessage) (domain.Descriptor, error) {
	var vec domain.Descriptor
	if err := json.Unmarshal(raw, &vec); err == nil {
		if len(vec) == 0 {
			return nil, errors.New("empty descriptor")
		}
		return vec, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, errors.New("descriptor is neither an array nor a string")
	}

	if err := json.Unmarshal([]byte(encoded), &vec); err != nil {
		return nil, fmt.Errorf("descriptor string is not a JSON array: %w", err)
	}
	if len(vec) == 0 {
		return nil, errors.New("empty descriptor")
	}

	return vec, nil
}

// DecodeLabel parses a label payload as a JSON object when possible; opaque
// labels are returned as-is with a nil identity map.
func DecodeLabel(label string) (string, map[string]interface{}) {
	var identity map[string]interface{}
	if err := json.Unmarshal([]byte(label), &identity); err != nil {
		return label, nil
	}
	return label, identity
}
