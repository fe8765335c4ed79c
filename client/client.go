// Package client is the Go counterpart of the web app's resource
// services: thin typed calls to the HTTP API plus the in-memory list
// caching, filtering, sorting and pagination the pages rely on.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIClient handles all communication with the backend API.
type APIClient struct {
	BaseURL    string
	AuthToken  string
	HttpClient *http.Client
}

// New creates a new client for interacting with the backend.
func New(baseURL, authToken string) *APIClient {
	return &APIClient{
		BaseURL:    baseURL,
		AuthToken:  authToken,
		HttpClient: &http.Client{},
	}
}

type apiError struct {
	Error string `json:"error"`
}

// do is the single, unified helper for making API requests. A non-2xx
// response is turned into an error carrying the server's message.
func (c *APIClient) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		var e apiError
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("%s %s: %s", method, path, e.Error)
		}
		return nil, fmt.Errorf("%s %s: http %d", method, path, resp.StatusCode)
	}
	return raw, nil
}

func getResource[T any](ctx context.Context, c *APIClient, path string) (T, error) {
	var v T
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("cannot decode response: %w", err)
	}
	return v, nil
}

func sendResource[T any](ctx context.Context, c *APIClient, method, path string, body any) (T, error) {
	var v T
	raw, err := c.do(ctx, method, path, body)
	if err != nil {
		return v, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			return v, fmt.Errorf("cannot decode response: %w", err)
		}
	}
	return v, nil
}
