package remote

// detectRequest is the payload for POST /detect. The frame is sent as a
// base64-encoded JPEG; the service decodes and runs the embedding model.
type detectRequest struct {
	Image string `json:"image"`
}

// detectedFace mirrors one face entry of the service response.
type detectedFace struct {
	Box        faceBox   `json:"box"`
	Confidence float64   `json:"confidence"`
	Descriptor []float64 `json:"descriptor"`
}

type faceBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// detectResponse is the full response of POST /detect. An empty Faces slice
// is a successful "no face" answer, not an error.
type detectResponse struct {
	Faces []detectedFace `json:"faces"`
}

// errorResponse is the service error envelope.
type errorResponse struct {
	Error string `json:"error"`
}
