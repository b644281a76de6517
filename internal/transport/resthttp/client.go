package resthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hucha-app/hucha/internal/apperrors"
	"github.com/hucha-app/hucha/internal/core/domain"
	"github.com/hucha-app/hucha/internal/core/ports"
	"github.com/hucha-app/hucha/internal/dto"
)

const dataPath = "/api/v1/data"

// Client talks to a remote snapshot server over its REST interface. Pull and
// Push always exchange the full document.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ ports.SyncTransport = (*Client)(nil)

// NewClient builds a transport against the given server. The token is sent as
// a bearer credential on every request.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken replaces the bearer credential, typically after a fresh login.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Pull fetches the remote snapshot.
func (c *Client) Pull(ctx context.Context) (*domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+dataPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pull request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: pull: %v", apperrors.ErrSyncFailed, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, "pull"); err != nil {
		return nil, err
	}

	var payload dto.SnapshotPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: pull: decoding response: %v", apperrors.ErrSyncFailed, err)
	}
	snap := payload.ToDomain()
	return &snap, nil
}

// Push uploads the full snapshot, replacing the remote document.
func (c *Client) Push(ctx context.Context, snap domain.Snapshot) error {
	body, err := json.Marshal(dto.ToSnapshotPayload(snap))
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+dataPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: push: %v", apperrors.ErrSyncFailed, err)
	}
	defer resp.Body.Close()

	return c.checkStatus(resp, "push")
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *Client) checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s: server returned %d", apperrors.ErrAuthExpired, op, resp.StatusCode)
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%w: %s: server returned %d: %s", apperrors.ErrSyncFailed, op, resp.StatusCode, strings.TrimSpace(string(detail)))
}
