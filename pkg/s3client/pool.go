// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package s3client reads objects from S3-compatible buckets so they can be
// copied into the storage service.
package s3client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/LeeDigitalWorks/storageclient/pkg/logger"
)

// Config describes one S3-compatible source. Without an access key the
// default AWS credential chain is used.
type Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PathStyle       bool   `mapstructure:"path_style"`
}

func (c *Config) cacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%t", c.Endpoint, c.Region, c.AccessKeyID, c.PathStyle)
}

// Pool caches S3 clients per source. Every client is built from one
// transport template, so AWS_CA_BUNDLE and the SDK defaults can still be
// layered on top of the pool settings.
type Pool struct {
	mu       sync.RWMutex
	clients  map[string]*s3.Client
	template *awshttp.BuildableClient
	built    []aws.HTTPClient
}

// NewPool returns a pool whose requests time out after timeout
func NewPool(timeout time.Duration, maxIdleConns int) *Pool {
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	if maxIdleConns == 0 {
		maxIdleConns = 100
	}
	return &Pool{
		clients: make(map[string]*s3.Client),
		template: awshttp.NewBuildableClient().
			WithTimeout(timeout).
			WithTransportOptions(func(tr *http.Transport) {
				tr.Proxy = http.ProxyFromEnvironment
				tr.MaxIdleConns = maxIdleConns
				tr.MaxIdleConnsPerHost = max(1, maxIdleConns/10)
				tr.IdleConnTimeout = 90 * time.Second
			}),
	}
}

// Client returns the cached client for cfg, creating it on first use
func (p *Pool) Client(ctx context.Context, cfg *Config) (*s3.Client, error) {
	key := cfg.cacheKey()

	p.mu.RLock()
	client, ok := p.clients[key]
	p.mu.RUnlock()
	if ok {
		return client, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if client, ok := p.clients[key]; ok {
		return client, nil
	}

	client, err := p.newClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p.clients[key] = client

	logger.Debug().
		Str("endpoint", cfg.Endpoint).
		Str("region", cfg.Region).
		Bool("path_style", cfg.PathStyle).
		Msg("created s3 source client")
	return client, nil
}

func (p *Pool) newClient(ctx context.Context, cfg *Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithHTTPClient(p.template),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	// Freeze after loading so the CA bundle is already applied
	if b, ok := awsCfg.HTTPClient.(*awshttp.BuildableClient); ok {
		awsCfg.HTTPClient = b.Freeze()
	}
	p.built = append(p.built, awsCfg.HTTPClient)

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Close drops cached clients and idle connections
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	clear(p.clients)
	for _, c := range p.built {
		if closer, ok := c.(interface{ CloseIdleConnections() }); ok {
			closer.CloseIdleConnections()
		}
	}
	p.built = nil
	return nil
}
