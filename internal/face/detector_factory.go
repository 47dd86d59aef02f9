// Package face wires detector implementations to configuration.
package face

import (
	"fmt"
	"time"

	"github.com/veriface/veriface/internal/config"
	"github.com/veriface/veriface/internal/detector"
	"github.com/veriface/veriface/internal/detector/mock"
	"github.com/veriface/veriface/internal/detector/remote"
)

// DetectorType defines the supported detector backends.
type DetectorType string

const (
	// DetectorTypeMock is the deterministic in-process detector (dev/test).
	DetectorTypeMock DetectorType = "mock"
	// DetectorTypeRemote is the HTTP embedding service detector (prod).
	DetectorTypeRemote DetectorType = "remote"
)

// NewDetector creates a detector instance based on configuration.
//
// Remote detectors are returned un-warmed: the caller owns the lifecycle and
// must call Warmup before serving traffic.
//
// Environment variables:
//   - DETECTOR_TYPE: "mock" or "remote" (default: "mock")
//   - DETECTOR_URL: embedding service URL (default: "http://localhost:5005")
func NewDetector(cfg *config.Config) (detector.Detector, error) {
	switch DetectorType(cfg.DetectorType) {
	case DetectorTypeRemote:
		remoteCfg := remote.DefaultConfig()
		if cfg.DetectorURL != "" {
			remoteCfg.BaseURL = cfg.DetectorURL
		}
		remoteCfg.Timeout = 30 * time.Second
		return remote.NewDetector(remoteCfg), nil

	case DetectorTypeMock, "":
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown detector type: %s (supported: %s, %s)",
			cfg.DetectorType, DetectorTypeMock, DetectorTypeRemote)
	}
}
