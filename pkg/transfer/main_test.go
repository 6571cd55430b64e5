// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/LeeDigitalWorks/storageclient/pkg/storageapi"
	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// fastRetry keeps retry tests quick
var fastRetry = RetryPolicy{
	MaxAttempts:    3,
	InitialBackoff: time.Millisecond,
	MaxBackoff:     5 * time.Millisecond,
}

// mockAPI implements API for testing
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) FilesPut(ctx context.Context, file *types.HTTPFile, key string, uploadID *string, part *int, visibility *types.Visibility, _ ...storageapi.CallOption) (types.FilesPutResult, error) {
	args := m.Called(ctx, file, key, uploadID, part, visibility)
	res, _ := args.Get(0).(types.FilesPutResult)
	return res, args.Error(1)
}

func (m *mockAPI) FilesPost(ctx context.Context, body *types.FilesPostRequest, uploadID *string, _ ...storageapi.CallOption) (*types.FilesPost200Response, error) {
	args := m.Called(ctx, body, uploadID)
	res, _ := args.Get(0).(*types.FilesPost200Response)
	return res, args.Error(1)
}

func (m *mockAPI) FilesGet(ctx context.Context, key *string, limit *int, cursor, rng, onlyIf *string, _ ...storageapi.CallOption) (types.FilesGetResult, error) {
	args := m.Called(ctx, key, limit, cursor, rng, onlyIf)
	res, _ := args.Get(0).(types.FilesGetResult)
	return res, args.Error(1)
}

func (m *mockAPI) DownloadFileToken(ctx context.Context, fileKey string, _ ...storageapi.CallOption) (*types.DownloadTokenResponse, error) {
	args := m.Called(ctx, fileKey)
	res, _ := args.Get(0).(*types.DownloadTokenResponse)
	return res, args.Error(1)
}

func newMockClient(t *testing.T, cfg Config, opts ...Option) (*Client, *mockAPI) {
	t.Helper()
	api := &mockAPI{}
	t.Cleanup(func() { api.AssertExpectations(t) })
	if cfg.Retry == (RetryPolicy{}) {
		cfg.Retry = fastRetry
	}
	c, err := NewClient(api, cfg, opts...)
	require.NoError(t, err)
	return c, api
}

func partIs(n int) any {
	return mock.MatchedBy(func(p *int) bool { return p != nil && *p == n })
}

// metricValue returns the counter value of the series of name whose labels
// include all of labels, or 0 when there is none.
func metricValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			if !hasLabels(m, labels) {
				continue
			}
			if fam.GetType() == dto.MetricType_HISTOGRAM {
				return float64(m.GetHistogram().GetSampleCount())
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func hasLabels(m *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, l := range m.GetLabel() {
		if v, ok := labels[l.GetName()]; ok && v == l.GetValue() {
			matched++
		}
	}
	return matched == len(labels)
}
