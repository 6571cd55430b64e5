// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/LeeDigitalWorks/storageclient/pkg/logger"
	"github.com/LeeDigitalWorks/storageclient/pkg/storageapi"
	"github.com/LeeDigitalWorks/storageclient/pkg/utils"
)

// RetryPolicy bounds retries of a single part upload
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// BackoffJitter is the fraction added on top of each backoff
	BackoffJitter float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		BackoffJitter:  0.1,
	}
}

func (p *RetryPolicy) applyDefaults() {
	def := DefaultRetryPolicy()
	if *p == (RetryPolicy{}) {
		*p = def
		return
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = def.InitialBackoff
	}
	if p.MaxBackoff < p.InitialBackoff {
		p.MaxBackoff = max(def.MaxBackoff, p.InitialBackoff)
	}
	if p.BackoffJitter < 0 {
		p.BackoffJitter = 0
	}
}

// Backoff returns the wait before attempt n (n >= 2)
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	backoff := p.InitialBackoff
	for i := 2; i < attempt && backoff < p.MaxBackoff; i++ {
		backoff *= 2
	}
	return min(utils.JitterUp(min(backoff, p.MaxBackoff), p.BackoffJitter), p.MaxBackoff)
}

// IsRetryable returns true for 5xx answers and transport failures.
// Client errors, decode errors and cancellation are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if storageapi.IsServerError(err) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// retry runs op until it succeeds, fails with a final error, or runs out of
// attempts.
func (c *Client) retry(ctx context.Context, what string, op func(ctx context.Context) error) error {
	policy := c.cfg.Retry

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			c.metrics.retried(what)
			select {
			case <-time.After(policy.Backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err

		logger.Ctx(ctx).Debug().
			Str("op", what).
			Int("attempt", attempt).
			Err(err).
			Msg("retryable failure")
	}

	return fmt.Errorf("%s failed after %d attempts: %w", what, policy.MaxAttempts, lastErr)
}
