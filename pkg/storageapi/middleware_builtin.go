// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"context"

	zctx "github.com/LeeDigitalWorks/storageclient/pkg/context"
	"github.com/LeeDigitalWorks/storageclient/pkg/logger"
)

// RequestIDMiddleware sets X-Request-Id from the context, minting a uuid when
// the context has none. An id already on the request is kept.
func RequestIDMiddleware() Middleware {
	return Middleware{
		Name: "request_id",
		Pre: func(ctx context.Context, req *Request) (*Request, error) {
			if req.Header.Get(HeaderRequestID) != "" {
				return req, nil
			}
			_, id := zctx.WithUUID(ctx)
			req.SetHeaderParam(HeaderRequestID, id)
			return req, nil
		},
	}
}

// UserAgentMiddleware sets User-Agent unless the request already has one
func UserAgentMiddleware(userAgent string) Middleware {
	return Middleware{
		Name: "user_agent",
		Pre: func(_ context.Context, req *Request) (*Request, error) {
			if req.Header.Get(HeaderUserAgent) == "" {
				req.SetHeaderParam(HeaderUserAgent, userAgent)
			}
			return req, nil
		},
	}
}

// LoggingMiddleware logs each request at debug level and each response at
// debug, or warn for 5xx answers.
func LoggingMiddleware() Middleware {
	return Middleware{
		Name: "logging",
		Pre: func(ctx context.Context, req *Request) (*Request, error) {
			logger.Ctx(ctx).Debug().
				Str("method", req.Method).
				Str("url", req.BaseURL+req.Path).
				Str(zctx.RequestKey, req.Header.Get(HeaderRequestID)).
				Int("body_bytes", len(req.Body)).
				Msg("sending request")
			return req, nil
		},
		Post: func(ctx context.Context, resp *Response) (*Response, error) {
			ev := logger.Ctx(ctx).Debug()
			if resp.StatusCode >= 500 {
				ev = logger.Ctx(ctx).Warn()
			}
			ev.Int("status", resp.StatusCode).
				Str("content_type", resp.ContentType()).
				Msg("received response")
			return resp, nil
		},
	}
}
