package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// ValidationResponse documents the quality gate verdict.
type ValidationResponse struct {
	IsValid    bool      `json:"is_valid" example:"true"`
	Reasons    []string  `json:"reasons,omitempty" example:"[]"`
	Descriptor []float64 `json:"descriptor,omitempty"`
	Confidence float64   `json:"confidence,omitempty" example:"0.97"`
}

// MatchResponse documents a best-match verdict.
type MatchResponse struct {
	Matched    bool    `json:"matched" example:"true"`
	Label      string  `json:"label,omitempty" example:"{\"name\":\"jane\",\"code\":\"42\"}"`
	Distance   float64 `json:"distance,omitempty" example:"0.31"`
	Similarity float64 `json:"similarity" example:"0.69"`
	Reason     string  `json:"reason,omitempty" example:""`
	SearchID   string  `json:"search_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	LatencyMs  int64   `json:"latency_ms" example:"12"`
}

// RankedMatchData documents one ranked match entry.
type RankedMatchData struct {
	Label      string  `json:"label" example:"jane"`
	Distance   float64 `json:"distance" example:"0.28"`
	Similarity float64 `json:"similarity" example:"0.91"`
}

// RankResponse documents the ranked matcher output.
type RankResponse struct {
	Matches   []RankedMatchData `json:"matches"`
	Count     int               `json:"count" example:"2"`
	SearchID  string            `json:"search_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	LatencyMs int64             `json:"latency_ms" example:"8"`
}

// DescriptorRequest documents the JSON body of the descriptor endpoints.
type DescriptorRequest struct {
	Descriptor []float64     `json:"descriptor"`
	Store      []interface{} `json:"store"`
	Threshold  float64       `json:"threshold,omitempty" example:"0.5"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// HealthData documents the health endpoints.
type HealthData struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Veriface API",
		Version:     "v0.1.0",
		Description: "Face descriptor validation and matching API: enrollment quality gating plus nearest-neighbor matching against a caller-supplied reference store",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	commonErrors := []response.Response{
		response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
		response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
	}

	endpoints := []*endpoint.EndPoint{
		// POST /v1/faces/validate - Quality gate
		endpoint.New(
			endpoint.POST,
			"/faces/validate",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Validate an enrollment photo"),
			endpoint.WithDescription("Runs single-face detection and the quality heuristics (confidence, relative size, centering, brightness). All violations are reported at once; the descriptor is returned whenever a face was detected, valid or not."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("frame_width", parameter.Query, parameter.WithDescription("Optional frame width hint in pixels (form field)")),
				parameter.IntParam("frame_height", parameter.Query, parameter.WithDescription("Optional frame height hint in pixels (form field)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ValidationResponse{}, "200", "Validation completed"),
			}),
			endpoint.WithErrors(append([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format or corrupted file"}, "422", "Unprocessable Entity"),
			}, commonErrors...)),
		),

		// POST /v1/faces/recognize - Detect + best-match
		endpoint.New(
			endpoint.POST,
			"/faces/recognize",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Recognize a face against a reference store"),
			endpoint.WithDescription("Detects the face in the image and classifies its descriptor against the supplied store with the best-match policy (Euclidean distance, default threshold 0.5)."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("store", parameter.Query, parameter.WithDescription("JSON array of reference store entries (form field)")),
				parameter.StrParam("threshold", parameter.Query, parameter.WithDescription("Acceptance threshold on distance (0-1, default 0.5, form field)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(MatchResponse{}, "200", "Match completed"),
			}),
			endpoint.WithErrors(append([]response.Response{
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INVALID_THRESHOLD", Message: "Threshold must be a number between 0 and 1"}, "422", "Unprocessable Entity"),
			}, commonErrors...)),
		),

		// POST /v1/descriptors/match - Best-match over a raw descriptor
		endpoint.New(
			endpoint.POST,
			"/descriptors/match",
			endpoint.WithTags("Descriptors"),
			endpoint.WithSummary("Classify a raw descriptor"),
			endpoint.WithDescription("Best-match classification of a caller-supplied descriptor against the supplied store."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(DescriptorRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(MatchResponse{}, "200", "Match completed"),
			}),
			endpoint.WithErrors(append([]response.Response{
				response.New(ErrorResponse{Code: "DESCRIPTOR_LENGTH_MISMATCH", Message: "Descriptors have different lengths"}, "422", "Unprocessable Entity"),
			}, commonErrors...)),
		),

		// POST /v1/descriptors/rank - Ranked matcher
		endpoint.New(
			endpoint.POST,
			"/descriptors/rank",
			endpoint.WithTags("Descriptors"),
			endpoint.WithSummary("Rank a reference store against a descriptor"),
			endpoint.WithDescription("Scores every store entry with Euclidean distance and cosine similarity, keeps entries at or above the similarity threshold (default 0.6) and returns them best-first."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(DescriptorRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RankResponse{}, "200", "Ranking completed"),
			}),
			endpoint.WithErrors(append([]response.Response{
				response.New(ErrorResponse{Code: "DESCRIPTOR_LENGTH_MISMATCH", Message: "Descriptors have different lengths"}, "422", "Unprocessable Entity"),
			}, commonErrors...)),
		),

		// GET /health
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthData{}, "200", "Service is up"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
