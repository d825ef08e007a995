package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"concierge/pkg/logger"
)

// ProviderClient handles communication with the hospitality provider APIs
// (spa, dining, property ops). One JSON-over-HTTP shape covers all of them.
type ProviderClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewProviderClient creates a provider client with a request timeout
func NewProviderClient(baseURL, apiKey string, timeout time.Duration) *ProviderClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ProviderClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Get(),
	}
}

// Post sends a JSON request to a provider endpoint and decodes the JSON
// response. Non-2xx responses are errors.
func (c *ProviderClient) Post(ctx context.Context, path string, payload map[string]interface{}) (map[string]interface{}, error) {
	url := c.baseURL + path

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("Provider request", zap.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Provider API error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("url", url),
			zap.String("response_body", string(body)),
		)
		return nil, fmt.Errorf("provider API error: status %d", resp.StatusCode)
	}

	result := map[string]interface{}{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return result, nil
}
