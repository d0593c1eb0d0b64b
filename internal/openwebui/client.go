// Package openwebui is a direct HTTP client for the OpenWebUI API, covering
// the two endpoints this server proxies: model listing and chat completions.
package openwebui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	listTimeout = 30 * time.Second
	chatTimeout = 60 * time.Second
)

// APIError is a non-2xx response from the OpenWebUI API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

// Client talks to a single OpenWebUI instance.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a client for the given base URL and API key.
// baseURL should be like "http://localhost:3000".
func NewClient(baseURL, apiKey string) *Client {
	// Remove trailing slash if present
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

// ListModels fetches the raw model list from GET /api/models. The endpoint
// returns either {"data": [...]} or a bare array depending on the OpenWebUI
// version; both are accepted. Any other body shape yields an empty list.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	return decodeModelList(body)
}

// decodeModelList unwraps the optional {"data": ...} envelope and tolerates
// non-list payloads by returning an empty slice.
func decodeModelList(body []byte) ([]Model, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	raw := json.RawMessage(body)
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Data != nil {
		raw = wrapper.Data
	}

	var models []Model
	if err := json.Unmarshal(raw, &models); err != nil {
		// Not a list; treat as no models rather than failing the refresh.
		return []Model{}, nil
	}
	return models, nil
}

// ChatCompletion sends a single-turn prompt to the given model via
// POST /api/chat/completions and returns the assistant's text.
func (c *Client) ChatCompletion(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.baseURL+"/api/chat/completions", strings.NewReader(string(payload)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unexpected response format: %s", string(respBody))
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("unexpected response format: %s", string(respBody))
	}

	content := result.Choices[0].Message.Content
	if content == "" {
		content = "No content returned"
	}
	return content, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// API response structures

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
