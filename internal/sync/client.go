// Package sync mirrors local writes to the remote API. Every call is a single
// bounded best-effort attempt; the local database stays authoritative and a
// failed attempt is logged by the caller and otherwise ignored.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mutabaah/backend/internal/model"
)

// Client is the remote mirroring boundary. Implementations must treat every
// call as fire-and-forget: one attempt, no retries.
type Client interface {
	SyncPrayerStatus(ctx context.Context, userID, date string, prayer model.Prayer, status model.PrayerStatus) error
	SyncZikrCount(ctx context.Context, userID, date string, count int) error
	SyncQuranMinutes(ctx context.Context, userID, date string, minutes int) error
}

type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SyncPrayerStatus(ctx context.Context, userID, date string, prayer model.Prayer, status model.PrayerStatus) error {
	return c.post(ctx, "/v1/prayer-status", map[string]interface{}{
		"userId": userID,
		"date":   date,
		"prayer": prayer,
		"status": status,
	})
}

func (c *HTTPClient) SyncZikrCount(ctx context.Context, userID, date string, count int) error {
	return c.post(ctx, "/v1/zikr-count", map[string]interface{}{
		"userId": userID,
		"date":   date,
		"count":  count,
	})
}

func (c *HTTPClient) SyncQuranMinutes(ctx context.Context, userID, date string, minutes int) error {
	return c.post(ctx, "/v1/quran-minutes", map[string]interface{}{
		"userId":  userID,
		"date":    date,
		"minutes": minutes,
	})
}

func (c *HTTPClient) post(ctx context.Context, path string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sync payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sync %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

// Noop is the client used when no remote endpoint is configured.
type Noop struct{}

func (Noop) SyncPrayerStatus(context.Context, string, string, model.Prayer, model.PrayerStatus) error {
	return nil
}

func (Noop) SyncZikrCount(context.Context, string, string, int) error {
	return nil
}

func (Noop) SyncQuranMinutes(context.Context, string, string, int) error {
	return nil
}
