// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// keep-alive connections of the shared http.Client used against httptest servers
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

const testServerURL = "https://storage.example.com"

func newTestConfig(t *testing.T, tr Transport, opts ...ConfigOption) *Configuration {
	t.Helper()
	cfg, err := NewConfiguration(testServerURL, append([]ConfigOption{WithTransport(tr)}, opts...)...)
	require.NoError(t, err)
	return cfg
}

// countingTransport records how often it was called and answers with respond
type countingTransport struct {
	calls   atomic.Int32
	last    atomic.Pointer[Request]
	respond func(req *Request) *Response
}

func (c *countingTransport) Send(_ context.Context, req *Request) (*Response, error) {
	c.calls.Add(1)
	c.last.Store(req)
	if c.respond == nil {
		return NewResponse(http.StatusOK, nil, nil), nil
	}
	return c.respond(req), nil
}

// formOnlyURLEncoded reports no multipart support
type formOnlyURLEncoded struct {
	countingTransport
}

func (*formOnlyURLEncoded) SupportsMultipart() bool { return false }

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func newTestResponse(status int, contentType, body string) (*Response, *trackingBody) {
	h := http.Header{}
	if contentType != "" {
		h.Set(HeaderContentType, contentType)
	}
	tb := &trackingBody{Reader: strings.NewReader(body)}
	return NewResponse(status, h, tb), tb
}
