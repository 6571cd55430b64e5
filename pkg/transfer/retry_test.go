// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LeeDigitalWorks/storageclient/pkg/storageapi"
	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "server error", err: &storageapi.APIError{StatusCode: http.StatusInternalServerError}, want: true},
		{name: "unknown 502", err: &storageapi.UnknownStatusError{StatusCode: http.StatusBadGateway}, want: true},
		{name: "bad request", err: &storageapi.APIError{StatusCode: http.StatusBadRequest}, want: false},
		{name: "unauthorized", err: &storageapi.APIError{StatusCode: http.StatusUnauthorized}, want: false},
		{name: "transport", err: &url.Error{Op: "Put", URL: "http://x", Err: errors.New("connection refused")}, want: true},
		{name: "wrapped transport", err: fmt.Errorf("send: %w", &url.Error{Op: "Put", URL: "http://x", Err: errors.New("EOF")}), want: true},
		{name: "cancelled", err: &url.Error{Op: "Put", URL: "http://x", Err: context.Canceled}, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: false},
		{name: "missing parameter", err: &storageapi.MissingParameterError{Field: "key"}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestRetryPolicyBackoff(t *testing.T) {
	t.Parallel()

	p := RetryPolicy{MaxAttempts: 6, InitialBackoff: time.Second, MaxBackoff: 10 * time.Second}
	assert.Equal(t, time.Second, p.Backoff(2))
	assert.Equal(t, 2*time.Second, p.Backoff(3))
	assert.Equal(t, 4*time.Second, p.Backoff(4))
	assert.Equal(t, 8*time.Second, p.Backoff(5))
	assert.Equal(t, 10*time.Second, p.Backoff(6))

	p.BackoffJitter = 0.5
	for range 20 {
		d := p.Backoff(3)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
	}
	assert.Equal(t, 10*time.Second, p.Backoff(9))
}

func TestUploadPartGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := NewMetrics()
	require.NoError(t, metrics.Register(reg))

	c, api := newMockClient(t, Config{PartSize: 2, Concurrency: 1}, WithMetrics(metrics))
	uploadID := "up-9"
	api.On("FilesPost", mock.Anything, mock.Anything, (*string)(nil)).
		Return(&types.FilesPost200Response{Upload: &types.R2MultipartUploadResponse{Key: "k", UploadID: uploadID}}, nil).Once()
	unavailable := &storageapi.UnknownStatusError{StatusCode: http.StatusServiceUnavailable}
	api.On("FilesPut", mock.Anything, mock.Anything, "k", &uploadID, partIs(1), (*types.Visibility)(nil)).
		Return(nil, unavailable).Times(3)
	api.On("FilesPut", mock.Anything, mock.Anything, "k", &uploadID, partIs(2), (*types.Visibility)(nil)).
		Return(&types.R2UploadedPart{PartNumber: 2, ETag: "e2"}, nil).Maybe()

	_, err := c.UploadFile(context.Background(), strings.NewReader("abcd"), "k", "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, storageapi.ErrUnknownStatus)
	assert.Contains(t, err.Error(), "after 3 attempts")
	api.AssertNumberOfCalls(t, "FilesPost", 1)

	assert.Equal(t, float64(2), metricValue(t, reg, "storageclient_transfer_retries_total", map[string]string{"op": "upload_part"}))
	assert.Equal(t, float64(1), metricValue(t, reg, "storageclient_transfer_parts_total", map[string]string{"result": "error"}))
	assert.Equal(t, float64(1), metricValue(t, reg, "storageclient_transfer_duration_seconds", map[string]string{"op": "upload", "result": "error"}))
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	c, _ := newMockClient(t, Config{Retry: RetryPolicy{MaxAttempts: 5, InitialBackoff: time.Hour, MaxBackoff: time.Hour}})
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := c.retry(ctx, "test", func(context.Context) error {
		calls++
		cancel()
		return &storageapi.APIError{StatusCode: http.StatusInternalServerError}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
