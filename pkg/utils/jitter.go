// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"math/rand/v2"
	"time"
)

// Jitter returns base shifted by up to ±fraction of itself.
//
// Example: Jitter(time.Second, 0.1) returns 900ms-1.1s
func Jitter(base time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return base
	}
	fraction = min(fraction, 1)
	spread := float64(base) * fraction
	return base + time.Duration((rand.Float64()*2-1)*spread)
}

// JitterUp returns base lengthened by up to fraction of itself. Retry
// backoff uses it so waits never drop below the configured minimum.
//
// Example: JitterUp(time.Second, 0.25) returns 1s-1.25s
func JitterUp(base time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return base
	}
	return base + time.Duration(rand.Float64()*float64(base)*fraction)
}
