// Package api implements the device-side HTTP client of the sync server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/fleetsync/pkg/api"
)

// deviceHeader должен совпадать с middleware.DeviceHeader сервера
const deviceHeader = "X-Device-ID"

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Temporary reports whether the request may succeed when repeated later.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client представляет HTTP клиент устройства для сервера синхронизации
type Client struct {
	httpClient *http.Client
	baseURL    string
	deviceID   string
}

// NewClient создает новый API клиент устройства deviceID
func NewClient(baseURL, deviceID string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		deviceID: deviceID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// DeviceID returns the device the client acts for.
func (c *Client) DeviceID() string {
	return c.deviceID
}

// Push отправляет локальные изменения устройства на сервер
func (c *Client) Push(ctx context.Context, states []api.RemoteState) (*api.PushResponse, error) {
	var resp api.PushResponse
	req := api.PushRequest{DeviceID: c.deviceID, States: states}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/sync/push", req, &resp); err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}
	return &resp, nil
}

// Pull получает изменения других устройств после since
func (c *Client) Pull(ctx context.Context, since time.Time, limit int) (*api.PullResponse, error) {
	var resp api.PullResponse
	req := api.PullRequest{DeviceID: c.deviceID, Since: since, Limit: limit}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/sync/pull", req, &resp); err != nil {
		return nil, fmt.Errorf("pull request failed: %w", err)
	}
	return &resp, nil
}

// Bidirectional отправляет изменения и получает чужие за один запрос
func (c *Client) Bidirectional(ctx context.Context, states []api.RemoteState, since time.Time, limit int) (*api.BidirectionalResponse, error) {
	var resp api.BidirectionalResponse
	req := api.BidirectionalRequest{DeviceID: c.deviceID, States: states, Since: since, Limit: limit}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/sync/bidirectional", req, &resp); err != nil {
		return nil, fmt.Errorf("bidirectional request failed: %w", err)
	}
	return &resp, nil
}

// Enqueue ставит операцию в серверную очередь устройства
func (c *Client) Enqueue(ctx context.Context, req api.EnqueueRequest) (*api.OperationInfo, error) {
	var resp api.OperationInfo
	if err := c.doRequest(ctx, http.MethodPost, c.queuePath(""), req, &resp); err != nil {
		return nil, fmt.Errorf("enqueue request failed: %w", err)
	}
	return &resp, nil
}

// QueueStats получает счетчики серверной очереди устройства
func (c *Client) QueueStats(ctx context.Context) (*api.QueueStatsResponse, error) {
	var resp api.QueueStatsResponse
	if err := c.doRequest(ctx, http.MethodGet, c.queuePath("/stats"), nil, &resp); err != nil {
		return nil, fmt.Errorf("queue stats request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) queuePath(suffix string) string {
	return "/api/v1/queue/" + url.PathEscape(c.deviceID) + suffix
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(deviceHeader, c.deviceID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && (errResp.Message != "" || errResp.Error != "") {
			statusErr.Message = errResp.Message
			if statusErr.Message == "" {
				statusErr.Message = errResp.Error
			}
		}
		return statusErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
