package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Gateway obtains a publish/reject verdict for a spotted message. It is
// implemented by Client and faked in tests.
type Gateway interface {
	Classify(ctx context.Context, message string) (*Verdict, error)
}

// Verdict is the classifier's opinion on a single message. Confidence is in
// [0, 1]; Suggestion is the model's natural-language explanation.
type Verdict struct {
	Publish    bool    `json:"publish"`
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// Client is a client for the text analysis service API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type classifyRequest struct {
	Text string `json:"text"`
}

// rawVerdict mirrors Verdict with pointer fields so a field the service
// left out is distinguishable from a zero value. A missing confidence must
// not decode to 0.0 — that would auto-reject the submission.
type rawVerdict struct {
	Publish    *bool    `json:"publish"`
	Suggestion *string  `json:"suggestion"`
	Confidence *float64 `json:"confidence"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Message     string `json:"message"`
}

// NewClient creates a new text analysis service client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Classify sends a single message for analysis. Any transport or service
// failure is returned to the caller; there is no fallback verdict, since a
// synthesized verdict could publish unreviewed content.
func (c *Client) Classify(ctx context.Context, message string) (*Verdict, error) {
	reqBody := classifyRequest{
		Text: message,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/analysis", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("analysis service returned status %d: %s", resp.StatusCode, string(body))
	}

	var raw rawVerdict
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if raw.Publish == nil {
		return nil, fmt.Errorf("analysis service response is missing the publish field")
	}
	if raw.Suggestion == nil {
		return nil, fmt.Errorf("analysis service response is missing the suggestion field")
	}
	if raw.Confidence == nil {
		return nil, fmt.Errorf("analysis service response is missing the confidence field")
	}
	if *raw.Confidence < 0 || *raw.Confidence > 1 {
		return nil, fmt.Errorf("analysis service returned confidence out of range: %f", *raw.Confidence)
	}

	return &Verdict{
		Publish:    *raw.Publish,
		Suggestion: *raw.Suggestion,
		Confidence: *raw.Confidence,
	}, nil
}

// HealthCheck checks if the analysis service is healthy.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("analysis service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
