// File: internal/funnel/capture_test.go
package funnel

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hogflix/hogsim/internal/config"
)

func TestCaptureClientPostsBatch(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewCaptureClient(config.AnalyticsConfig{Endpoint: srv.URL, APIKey: "phc_test"})
	defer client.client.CloseIdleConnections()

	events := []Event{
		NewEvent("experiment_exposure", "user@hogmail.example", map[string]any{"experiment_variant": "control"}),
		NewEvent("flixbuddy_message_sent", "user@hogmail.example", nil),
	}
	require.NoError(t, client.Send(context.Background(), events))

	assert.Equal(t, "/batch/", gotPath)

	var payload batchPayload
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "phc_test", payload.APIKey)
	require.Len(t, payload.Batch, 2)
	assert.Equal(t, "experiment_exposure", payload.Batch[0].Event)
}

func TestCaptureClientRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewCaptureClient(config.AnalyticsConfig{Endpoint: srv.URL})
	defer client.client.CloseIdleConnections()

	err := client.Send(context.Background(), []Event{NewEvent("x", "y", nil)})
	assert.Error(t, err)
}

func TestCaptureClientSkipsEmptyBatch(t *testing.T) {
	client := NewCaptureClient(config.AnalyticsConfig{Endpoint: "http://127.0.0.1:1"})
	assert.NoError(t, client.Send(context.Background(), nil))
}
