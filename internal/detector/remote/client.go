package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrServiceUnavailable means the embedding service could not be reached
	// after all retries.
	ErrServiceUnavailable = errors.New("embedding service unavailable")
	// ErrInvalidResponse means the service answered with a body that does not
	// decode into the expected shape.
	ErrInvalidResponse = errors.New("invalid embedding service response")
)

// Config holds the configuration for the embedding service client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:5005",
		Timeout:    30 * time.Second,
		RetryCount: 3,
	}
}

// Client is the HTTP client for the embedding service.
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new embedding service client.
func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Detect calls POST /detect to localize faces and extract descriptors.
func (c *Client) Detect(ctx context.Context, imageBase64 string) (*detectResponse, error) {
	req := detectRequest{Image: imageBase64}

	var resp detectResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, "/detect", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Health calls GET /health, reporting whether the service has its model
// loaded and is ready to serve.
func (c *Client) Health(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
}

// maxBackoff is the maximum backoff duration for retries.
const maxBackoff = 30 * time.Second

// calculateBackoff returns the exponential backoff for a given attempt:
// 1s, 2s, 4s, 8s, ... up to maxBackoff.
func calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	seconds := 1
	for i := 1; i < attempt && i < 6; i++ {
		seconds *= 2
	}
	return time.Duration(seconds) * time.Second
}

// doRequestWithRetry executes an HTTP request, retrying server-side failures
// with exponential backoff. Client errors (4xx) and context cancellation are
// never retried.
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(attempt)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = c.doRequest(ctx, method, path, body, result)
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if isClientError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %v", ErrServiceUnavailable, lastErr)
}

// isClientError checks whether the error carries a 4xx status.
func isClientError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	for status := 400; status < 500; status++ {
		if strings.Contains(errStr, "status "+strconv.Itoa(status)) {
			return true
		}
	}
	return false
}

// doRequest executes a single HTTP request.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	url := c.config.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var serviceErr errorResponse
		if json.Unmarshal(respBody, &serviceErr) == nil && serviceErr.Error != "" {
			return fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, serviceErr.Error)
		}
		return fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}
