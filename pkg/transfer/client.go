// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package transfer moves whole files in and out of the storage service.
// It picks between a single PUT and a multipart upload, uploads parts
// concurrently with retries, and wraps the read side of the API.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/LeeDigitalWorks/storageclient/pkg/storageapi"
	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

const (
	// DefaultPartSize is the largest body sent with a single PUT and the size
	// of every part but the last in a multipart upload.
	DefaultPartSize = 10 << 20

	// MaxPutSize is the largest body the service accepts on PUT /files
	MaxPutSize = 100 << 20

	DefaultConcurrency = 6

	MinListLimit = 1
	MaxListLimit = 1000
)

// API is the subset of the storage API the transfer client needs.
// *storageapi.DefaultAPI satisfies it.
type API interface {
	FilesPut(ctx context.Context, file *types.HTTPFile, key string, uploadID *string, part *int, visibility *types.Visibility, opts ...storageapi.CallOption) (types.FilesPutResult, error)
	FilesPost(ctx context.Context, body *types.FilesPostRequest, uploadID *string, opts ...storageapi.CallOption) (*types.FilesPost200Response, error)
	FilesGet(ctx context.Context, key *string, limit *int, cursor, rng, onlyIf *string, opts ...storageapi.CallOption) (types.FilesGetResult, error)
	DownloadFileToken(ctx context.Context, fileKey string, opts ...storageapi.CallOption) (*types.DownloadTokenResponse, error)
}

var _ API = (*storageapi.DefaultAPI)(nil)

var (
	ErrInvalidKey        = errors.New("key cannot be empty or start with a slash")
	ErrInvalidLimit      = fmt.Errorf("limit must be between %d and %d", MinListLimit, MaxListLimit)
	ErrUnexpectedResult  = errors.New("unexpected result from storage service")
	ErrNotAFile          = errors.New("key does not name a file")
	ErrInvalidPartSize   = fmt.Errorf("part size must be between 1 and %d bytes", MaxPutSize)
	ErrInvalidVisibility = errors.New("invalid visibility")
)

// Config tunes a Client. Zero values take the defaults.
type Config struct {
	// BaseURL is used to build signed download links
	BaseURL     string
	PartSize    int64
	Concurrency int
	// PartsPerSecond paces part uploads; 0 means unlimited
	PartsPerSecond float64
	Retry          RetryPolicy
}

// Validate applies defaults and checks limits
func (c *Config) Validate() error {
	if c.PartSize == 0 {
		c.PartSize = DefaultPartSize
	}
	if c.PartSize < 0 || c.PartSize > MaxPutSize {
		return ErrInvalidPartSize
	}
	if c.Concurrency < 1 {
		c.Concurrency = DefaultConcurrency
	}
	if c.PartsPerSecond < 0 {
		c.PartsPerSecond = 0
	}
	c.Retry.applyDefaults()
	return nil
}

// Client uploads and downloads whole files
type Client struct {
	api     API
	cfg     Config
	limiter *rate.Limiter
	metrics *Metrics
	now     func() time.Time
}

type Option func(*Client)

// WithMetrics records transfer metrics on m
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient returns a Client over api
func NewClient(api API, cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		api: api,
		cfg: cfg,
		now: time.Now,
	}
	if cfg.PartsPerSecond > 0 {
		burst := max(1, int(cfg.PartsPerSecond))
		c.limiter = rate.NewLimiter(rate.Limit(cfg.PartsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the effective configuration
func (c *Client) Config() Config {
	return c.cfg
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
