package handler

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	// Register the image decoders accepted at the transport boundary.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/veriface/veriface/internal/domain"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
	maxStoreSize = 20 * 1024 * 1024 // 20MB of JSON store entries
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// FaceService interface for the service
type FaceService interface {
	ValidateFrame(ctx context.Context, img image.Image, frameWidth, frameHeight int) domain.ValidationResult
	Recognize(ctx context.Context, img image.Image, entries []json.RawMessage, threshold *float64) (*domain.MatchResult, error)
	MatchDescriptor(ctx context.Context, query domain.Descriptor, entries []json.RawMessage, threshold *float64) (*domain.MatchResult, error)
	Rank(ctx context.Context, query domain.Descriptor, entries []json.RawMessage, threshold *float64) ([]domain.RankedMatch, error)
}

// FaceHandler handles face validation and matching requests
type FaceHandler struct {
	service FaceService
	logger  *slog.Logger
}

// NewFaceHandler creates a new FaceHandler instance
func NewFaceHandler(service FaceService, logger *slog.Logger) *FaceHandler {
	return &FaceHandler{
		service: service,
		logger:  logger,
	}
}

// MatchResponse wraps a match verdict with per-request bookkeeping.
type MatchResponse struct {
	domain.MatchResult
	SearchID  string `json:"search_id"`
	LatencyMs int64  `json:"latency_ms"`
}

// RankResponse is the ranked-matcher response.
type RankResponse struct {
	Matches   []domain.RankedMatch `json:"matches"`
	Count     int                  `json:"count"`
	SearchID  string               `json:"search_id"`
	LatencyMs int64                `json:"latency_ms"`
}

// descriptorRequest is the JSON body shared by the descriptor endpoints.
// Threshold must be a JSON number when present; the per-policy default
// applies when it is omitted.
type descriptorRequest struct {
	Descriptor domain.Descriptor `json:"descriptor"`
	Store      []json.RawMessage `json:"store"`
	Threshold  *float64          `json:"threshold"`
}

// Validate POST /v1/faces/validate - run the enrollment quality gate
func (h *FaceHandler) Validate(c *fiber.Ctx) error {
	img, err := extractAndDecodeImage(c)
	if err != nil {
		return err
	}

	frameWidth, err := optionalIntForm(c, "frame_width")
	if err != nil {
		return err
	}
	frameHeight, err := optionalIntForm(c, "frame_height")
	if err != nil {
		return err
	}

	result := h.service.ValidateFrame(c.Context(), img, frameWidth, frameHeight)

	return c.JSON(result)
}

// Recognize POST /v1/faces/recognize - detect and classify against a store
func (h *FaceHandler) Recognize(c *fiber.Ctx) error {
	start := time.Now()

	img, err := extractAndDecodeImage(c)
	if err != nil {
		return err
	}

	entries, err := extractStoreForm(c)
	if err != nil {
		return err
	}

	threshold, err := optionalThresholdForm(c)
	if err != nil {
		return err
	}

	result, err := h.service.Recognize(c.Context(), img, entries, threshold)
	if err != nil {
		return err
	}

	return c.JSON(MatchResponse{
		MatchResult: *result,
		SearchID:    uuid.New().String(),
		LatencyMs:   time.Since(start).Milliseconds(),
	})
}

// Match POST /v1/descriptors/match - classify a raw descriptor (best-match)
func (h *FaceHandler) Match(c *fiber.Ctx) error {
	start := time.Now()

	req, err := parseDescriptorRequest(c)
	if err != nil {
		return err
	}

	result, err := h.service.MatchDescriptor(c.Context(), req.Descriptor, req.Store, req.Threshold)
	if err != nil {
		return err
	}

	return c.JSON(MatchResponse{
		MatchResult: *result,
		SearchID:    uuid.New().String(),
		LatencyMs:   time.Since(start).Milliseconds(),
	})
}

// Rank POST /v1/descriptors/rank - rank a store against a raw descriptor
func (h *FaceHandler) Rank(c *fiber.Ctx) error {
	start := time.Now()

	req, err := parseDescriptorRequest(c)
	if err != nil {
		return err
	}

	matches, err := h.service.Rank(c.Context(), req.Descriptor, req.Store, req.Threshold)
	if err != nil {
		return err
	}

	return c.JSON(RankResponse{
		Matches:   matches,
		Count:     len(matches),
		SearchID:  uuid.New().String(),
		LatencyMs: time.Since(start).Milliseconds(),
	})
}

// parseDescriptorRequest decodes and validates the shared JSON body.
func parseDescriptorRequest(c *fiber.Ctx) (*descriptorRequest, error) {
	var req descriptorRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return nil, domain.ErrBadRequest.WithError(err)
	}

	if len(req.Descriptor) == 0 {
		return nil, domain.ErrValidationFailed.WithError(errors.New("descriptor is required"))
	}

	return &req, nil
}

// extractAndDecodeImage extracts the multipart image and decodes it into a
// raster. Container parsing stops here; everything downstream works on
// decoded pixels.
func extractAndDecodeImage(c *fiber.Ctx) (image.Image, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if file.Size > maxImageSize || file.Size == 0 {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	img, _, err := image.Decode(io.LimitReader(f, maxImageSize))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return img, nil
}

// extractStoreForm reads the reference store from the "store" form field: a
// JSON array of raw entries in any shape the codec accepts.
func extractStoreForm(c *fiber.Ctx) ([]json.RawMessage, error) {
	raw := strings.TrimSpace(c.FormValue("store"))
	if raw == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("store is required"))
	}
	if len(raw) > maxStoreSize {
		return nil, domain.ErrValidationFailed.WithError(errors.New("store too large"))
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	return entries, nil
}

// optionalThresholdForm parses the optional "threshold" form field. A
// present but non-numeric value is rejected, never silently defaulted.
func optionalThresholdForm(c *fiber.Ctx) (*float64, error) {
	raw := strings.TrimSpace(c.FormValue("threshold"))
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.ErrInvalidThreshold.WithError(err)
	}

	return &value, nil
}

// optionalIntForm parses an optional integer form field, returning 0 when
// the field is absent.
func optionalIntForm(c *fiber.Ctx, name string) (int, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, domain.ErrValidationFailed.WithError(errors.New(name + " must be a non-negative integer"))
	}

	return value, nil
}
