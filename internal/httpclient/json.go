package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GetJSON fetches path and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out, opts)
}

// PostJSON sends in as JSON and decodes the response into out (which may be nil).
func (c *Client) PostJSON(ctx context.Context, path string, in, out any, opts ...CallOption) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out, opts)
}

// PutJSON sends in as JSON and decodes the response into out (which may be nil).
func (c *Client) PutJSON(ctx context.Context, path string, in, out any, opts ...CallOption) error {
	return c.doJSON(ctx, http.MethodPut, path, in, out, opts)
}

// PatchJSON sends in as JSON and decodes the response into out (which may be nil).
func (c *Client) PatchJSON(ctx context.Context, path string, in, out any, opts ...CallOption) error {
	return c.doJSON(ctx, http.MethodPatch, path, in, out, opts)
}

// PatchText sends an empty JSON object and returns the plain-text response.
// The backend answers soft deletes this way.
func (c *Client) PatchText(ctx context.Context, path string, opts ...CallOption) (string, error) {
	req := Request{Method: http.MethodPatch, Path: path, Body: struct{}{}}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, opts []CallOption) error {
	req := Request{Method: method, Path: path, Body: in}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("httpclient.Client.%s %s: decode response: %w", method, path, err)
	}
	return nil
}
