// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package context

import (
	"context"

	"github.com/google/uuid"
)

const (
	// RequestKey is the log field request ids are written under
	RequestKey = "request_id"
)

type RequestID struct{}

// WithUUID returns ctx carrying a request id, minting one if ctx has none
func WithUUID(c context.Context) (context.Context, string) {
	if id, ok := c.Value(RequestID{}).(string); ok && id != "" {
		return c, id
	}
	newID := uuid.New().String()
	c = context.WithValue(c, RequestID{}, newID)
	return c, newID
}

// FromUUID pins an existing request id, e.g. one chosen by the caller
func FromUUID(c context.Context, reqID string) context.Context {
	return context.WithValue(c, RequestID{}, reqID)
}

// UUID returns the request id of c, if any
func UUID(c context.Context) (string, bool) {
	id, ok := c.Value(RequestID{}).(string)
	return id, ok && id != ""
}
