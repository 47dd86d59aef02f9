package domain

// UnknownLabel is the reserved sentinel meaning "no sufficiently close
// reference identity". It is never a real identity: a store entry carrying
// this label can win the nearest-neighbor search and still be reported as a
// non-match.
const UnknownLabel = "unknown"

// Descriptor is a fixed-length face embedding produced by the detector
// capability. Its length is decided by the embedding model (128 for the
// bundled detectors) and is immutable once produced.
type Descriptor []float64

// BoundingBox is the face area in the image, in pixels.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the box area in pixels².
func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

// CenterX returns the horizontal center of the box.
func (b BoundingBox) CenterX() float64 {
	return b.X + b.Width/2
}

// Detection is one run of face localization + embedding extraction over an
// image. It lives only within a single validate/recognize call and is never
// persisted.
type Detection struct {
	Box        BoundingBox `json:"box"`
	Confidence float64     `json:"confidence"`
	Descriptor Descriptor  `json:"descriptor"`
}

// LabeledDescriptor is the canonical form of a reference store entry: one
// opaque label (often a serialized identity record) owning one or more
// reference descriptors, e.g. several enrollment photos of the same person.
type LabeledDescriptor struct {
	Label       string       `json:"label"`
	Descriptors []Descriptor `json:"descriptors"`
}

// ValidationResult is the quality gate verdict. Descriptor, Confidence and
// Box are populated whenever a face was detected, regardless of validity, so
// callers can show feedback or retry without re-running detection. Callers
// must check IsValid before treating the descriptor as enrollable.
type ValidationResult struct {
	IsValid    bool         `json:"is_valid"`
	Reasons    []string     `json:"reasons,omitempty"`
	Descriptor Descriptor   `json:"descriptor,omitempty"`
	Confidence *float64     `json:"confidence,omitempty"`
	Box        *BoundingBox `json:"box,omitempty"`
}

// MatchResult is the best-match verdict for one query descriptor. When
// Matched is false, Reason distinguishes "distance too high" from "winning
// label is explicitly unknown" and Distance still carries the measured value
// when one was computed.
type MatchResult struct {
	Matched    bool                   `json:"matched"`
	Label      string                 `json:"label,omitempty"`
	Identity   map[string]interface{} `json:"identity,omitempty"`
	Distance   *float64               `json:"distance,omitempty"`
	Similarity float64                `json:"similarity"`
	Reason     string                 `json:"reason,omitempty"`
}

// RankedMatch is one entry of the ranked matcher output: both metrics are
// reported for every surviving store entry.
type RankedMatch struct {
	Label      string  `json:"label"`
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
}
