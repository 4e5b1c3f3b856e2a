// File: internal/funnel/capture.go
package funnel

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/hogflix/hogsim/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event is one analytics capture event.
type Event struct {
	Event      string         `json:"event"`
	DistinctID string         `json:"distinct_id"`
	Properties map[string]any `json:"properties,omitempty"`
	Timestamp  string         `json:"timestamp"`
}

type batchPayload struct {
	APIKey string  `json:"api_key"`
	Batch  []Event `json:"batch"`
}

// CaptureClient posts event batches to the analytics ingestion endpoint.
type CaptureClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewCaptureClient builds a client for the configured endpoint.
func NewCaptureClient(cfg config.AnalyticsConfig) *CaptureClient {
	return &CaptureClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// NewEvent stamps a capture event with the current time.
func NewEvent(name, distinctID string, props map[string]any) Event {
	return Event{
		Event:      name,
		DistinctID: distinctID,
		Properties: props,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

// Send posts one batch. All events of a session go in a single batch so their
// relative order survives ingestion.
func (c *CaptureClient) Send(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	body, err := json.Marshal(batchPayload{APIKey: c.apiKey, Batch: events})
	if err != nil {
		return fmt.Errorf("funnel: failed to encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/batch/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("funnel: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("funnel: capture request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("funnel: capture endpoint returned %s", resp.Status)
	}
	return nil
}
