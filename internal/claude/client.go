// Package claude implements the subset of the Anthropic Messages API used to
// generate code reviews.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tildaslashalef/codecritic/internal/config"
	"github.com/tildaslashalef/codecritic/internal/loggy"
)

const (
	messagesPath      = "/v1/messages"
	defaultAPIVersion = "2023-06-01"
	defaultModel      = "claude-sonnet-4-20250514"
	defaultMaxTokens  = 4096
)

// Client represents an Anthropic Claude API client.
// It issues exactly one HTTP request per call; there is no retry.
type Client struct {
	apiKey           string
	baseURL          string
	apiVersion       string
	defaultModel     string
	defaultMaxTokens int
	httpClient       *http.Client
}

// NewClient creates a new Claude client from config
func NewClient(cfg config.ClaudeConfig) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewClientWithHTTP creates a Claude client that sends requests through httpClient
func NewClientWithHTTP(cfg config.ClaudeConfig, httpClient *http.Client) *Client {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Client{
		apiKey:           cfg.APIKey,
		baseURL:          strings.TrimSuffix(cfg.BaseURL, "/"),
		apiVersion:       apiVersion,
		defaultModel:     model,
		defaultMaxTokens: maxTokens,
		httpClient:       httpClient,
	}
}

// CreateMessage sends a non-streaming request to the Messages API.
// Non-2xx responses are returned as *APIError.
func (c *Client) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	if req.Model == "" {
		req.Model = c.defaultModel
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = c.defaultMaxTokens
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	url := c.baseURL + messagesPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", c.apiVersion)

	loggy.Debug("Sending Claude request",
		"url", url,
		"model", req.Model,
		"max_tokens", req.MaxTokens,
		"body_bytes", len(body))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	loggy.Debug("Claude API response",
		"status_code", resp.StatusCode,
		"content_length", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleErrorResponse(resp, respBody)
	}

	var msg MessageResponse
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &msg, nil
}

// handleErrorResponse processes error responses from the API
// It attempts to parse the error JSON and return a structured error
func (c *Client) handleErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.ErrorDetails.Type == "" {
		loggy.Warn("Unstructured Claude API error response", "status", resp.Status)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return apiErr
}
