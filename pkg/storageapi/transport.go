// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Transport sends a built request and returns the raw response
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// MultipartCapable is implemented by transports that can report whether they
// carry multipart/form-data bodies. Transports without it are assumed capable.
type MultipartCapable interface {
	SupportsMultipart() bool
}

// TransportFunc adapts a function to Transport
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

func (f TransportFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPClientConfig tunes the pooled *http.Client
type HTTPClientConfig struct {
	Timeout             time.Duration
	DialTimeout         time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:             5 * time.Minute,
		DialTimeout:         10 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

// NewHTTPClient returns a client with connection reuse. Zero fields fall back
// to DefaultHTTPClientConfig.
func NewHTTPClient(cfg HTTPClientConfig) *http.Client {
	def := DefaultHTTPClientConfig()
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = def.MaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost == 0 {
		cfg.MaxIdleConnsPerHost = cfg.MaxIdleConns / 10
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = def.IdleConnTimeout
	}
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.IdleConnTimeout,
			ForceAttemptHTTP2:   true,
		},
	}
}

// HTTPTransport sends requests with an *http.Client
type HTTPTransport struct {
	client *http.Client
}

func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) SupportsMultipart() bool {
	return true
}

func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	var body *bytes.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	var hreq *http.Request
	var err error
	if body != nil {
		hreq, err = http.NewRequestWithContext(ctx, req.Method, req.URL(), body)
	} else {
		hreq, err = http.NewRequestWithContext(ctx, req.Method, req.URL(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("new http request: %w", err)
	}
	hreq.Header = req.Header.Clone()

	resp, err := t.client.Do(hreq)
	if err != nil {
		return nil, err
	}
	return NewResponse(resp.StatusCode, resp.Header, resp.Body), nil
}
