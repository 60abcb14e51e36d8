// client — типизированный REST-клиент ресурса /api/users.
// Повторов нет; таймаут задаётся только через http.Client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pribylovaa/go-user-directory/internal/api"
)

// APIError — ответ API со статусом вне 2xx.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Message, e.Detail)
	}

	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsNotFound сообщает, что API ответило 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client — клиент users API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New создаёт клиент. timeout == 0 означает «без таймаута».
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient позволяет подставить свой http.Client (тесты, транспорт).
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// List — GET /api/users.
func (c *Client) List(ctx context.Context) ([]api.User, error) {
	var out []api.User
	if err := c.do(ctx, http.MethodGet, "", nil, &out); err != nil {
		return nil, fmt.Errorf("client/List: %w", err)
	}

	if out == nil {
		out = []api.User{}
	}

	return out, nil
}

// Get — GET /api/users/{id}.
func (c *Client) Get(ctx context.Context, id string) (*api.User, error) {
	var out api.User
	if err := c.do(ctx, http.MethodGet, "/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("client/Get: %w", err)
	}

	return &out, nil
}

// Create — POST /api/users.
func (c *Client) Create(ctx context.Context, req api.CreateUserRequest) (*api.User, error) {
	var out api.User
	if err := c.do(ctx, http.MethodPost, "", req, &out); err != nil {
		return nil, fmt.Errorf("client/Create: %w", err)
	}

	return &out, nil
}

// Update — PUT /api/users/{id}.
func (c *Client) Update(ctx context.Context, id string, req api.UpdateUserRequest) (*api.User, error) {
	var out api.User
	if err := c.do(ctx, http.MethodPut, "/"+url.PathEscape(id), req, &out); err != nil {
		return nil, fmt.Errorf("client/Update: %w", err)
	}

	return &out, nil
}

// Delete — DELETE /api/users/{id}; возвращает сообщение сервера.
func (c *Client) Delete(ctx context.Context, id string) (string, error) {
	var out api.MessageResponse
	if err := c.do(ctx, http.MethodDelete, "/"+url.PathEscape(id), nil, &out); err != nil {
		return "", fmt.Errorf("client/Delete: %w", err)
	}

	return out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

		var er api.ErrorResponse
		if json.Unmarshal(raw, &er) == nil && er.Message != "" {
			apiErr.Message = er.Message
			apiErr.Detail = er.Error
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
