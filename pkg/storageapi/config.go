// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"errors"
	"net/url"
	"strings"
)

// Server is the base address requests are made against
type Server struct {
	URL string
}

// NewServer validates rawURL and returns a Server for it
func NewServer(rawURL string) (*Server, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("server url must use http or https")
	}
	if u.Host == "" {
		return nil, errors.New("server url has no host")
	}
	return &Server{URL: strings.TrimRight(rawURL, "/")}, nil
}

// MakeRequest starts a request for an already escaped path
func (s *Server) MakeRequest(path, method string) *Request {
	return newRequest(s.URL, path, method)
}

// Configuration is shared by every call made through an API value.
// It is read-only once an API has been created from it.
type Configuration struct {
	Server      *Server
	AuthMethods AuthMethods
	Middleware  []Middleware
	Transport   Transport
	// Metrics is optional
	Metrics *PipelineMetrics
}

// ConfigOption customises a Configuration
type ConfigOption func(*Configuration)

func WithServer(s *Server) ConfigOption {
	return func(c *Configuration) { c.Server = s }
}

func WithAPIKey(key string) ConfigOption {
	return func(c *Configuration) { c.AuthMethods.APIKey = &APIKeyAuth{Key: key} }
}

func WithDefaultAuth(a Authenticator) ConfigOption {
	return func(c *Configuration) { c.AuthMethods.Default = a }
}

func WithMiddleware(m ...Middleware) ConfigOption {
	return func(c *Configuration) { c.Middleware = append(c.Middleware, m...) }
}

func WithTransport(t Transport) ConfigOption {
	return func(c *Configuration) { c.Transport = t }
}

func WithMetrics(m *PipelineMetrics) ConfigOption {
	return func(c *Configuration) { c.Metrics = m }
}

// NewConfiguration returns a Configuration for serverURL. Without
// WithTransport, requests go through an HTTPTransport with default settings.
func NewConfiguration(serverURL string, opts ...ConfigOption) (*Configuration, error) {
	srv, err := NewServer(serverURL)
	if err != nil {
		return nil, err
	}
	c := &Configuration{Server: srv}
	for _, opt := range opts {
		opt(c)
	}
	if c.Transport == nil {
		c.Transport = NewHTTPTransport(NewHTTPClient(DefaultHTTPClientConfig()))
	}
	return c, nil
}

// supportsMultipart reports whether the transport can carry multipart bodies
func (c *Configuration) supportsMultipart() bool {
	if mc, ok := c.Transport.(MultipartCapable); ok {
		return mc.SupportsMultipart()
	}
	return true
}

// callOptions are per-call overrides
type callOptions struct {
	server      *Server
	defaultAuth Authenticator
}

// CallOption overrides part of the Configuration for a single call
type CallOption func(*callOptions)

// WithCallServer sends one call to a different server
func WithCallServer(s *Server) CallOption {
	return func(o *callOptions) { o.server = s }
}

// WithCallAuth replaces the default auth strategy for one call. The API key
// strategy still applies.
func WithCallAuth(a Authenticator) CallOption {
	return func(o *callOptions) { o.defaultAuth = a }
}

func newCallOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
