// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"context"

	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

// DefaultAPI is the direct-call convention. Each method builds the request,
// runs it through the pipeline and resolves the response before returning.
// The other conventions are wrappers around it.
type DefaultAPI struct {
	factory   *RequestFactory
	processor ResponseProcessor
	pipeline  *Pipeline
}

func NewDefaultAPI(cfg *Configuration) *DefaultAPI {
	return &DefaultAPI{
		factory:  NewRequestFactory(cfg),
		pipeline: NewPipeline(cfg.Transport, cfg.Metrics, cfg.Middleware...),
	}
}

// call is the one path every operation takes
func call[T any](ctx context.Context, p *Pipeline, build func() (*Request, error), resolveFn func(*Response) (*HTTPInfo[T], error)) (*HTTPInfo[T], error) {
	req, err := build()
	if err != nil {
		return nil, err
	}
	resp, err := p.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return resolveFn(resp)
}

func data[T any](info *HTTPInfo[T], err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return info.Data, nil
}

// DownloadFileWithHTTPInfo downloads fileKey using a token from DownloadFileToken
func (a *DefaultAPI) DownloadFileWithHTTPInfo(ctx context.Context, fileKey, token string, opts ...CallOption) (*HTTPInfo[*types.HTTPFile], error) {
	return call(ctx, a.pipeline, func() (*Request, error) {
		return a.factory.DownloadFile(ctx, fileKey, token, opts...)
	}, a.processor.DownloadFileWithHTTPInfo)
}

func (a *DefaultAPI) DownloadFile(ctx context.Context, fileKey, token string, opts ...CallOption) (*types.HTTPFile, error) {
	return data(a.DownloadFileWithHTTPInfo(ctx, fileKey, token, opts...))
}

// DownloadFileTokenWithHTTPInfo mints a single-use download token for fileKey
func (a *DefaultAPI) DownloadFileTokenWithHTTPInfo(ctx context.Context, fileKey string, opts ...CallOption) (*HTTPInfo[*types.DownloadTokenResponse], error) {
	return call(ctx, a.pipeline, func() (*Request, error) {
		return a.factory.DownloadFileToken(ctx, fileKey, opts...)
	}, a.processor.DownloadFileTokenWithHTTPInfo)
}

func (a *DefaultAPI) DownloadFileToken(ctx context.Context, fileKey string, opts ...CallOption) (*types.DownloadTokenResponse, error) {
	return data(a.DownloadFileTokenWithHTTPInfo(ctx, fileKey, opts...))
}

// FilesGetWithHTTPInfo fetches one object (with key) or lists objects (without)
func (a *DefaultAPI) FilesGetWithHTTPInfo(ctx context.Context, key *string, limit *int, cursor, rng, onlyIf *string, opts ...CallOption) (*HTTPInfo[types.FilesGetResult], error) {
	return call(ctx, a.pipeline, func() (*Request, error) {
		return a.factory.FilesGet(ctx, key, limit, cursor, rng, onlyIf, opts...)
	}, a.processor.FilesGetWithHTTPInfo)
}

func (a *DefaultAPI) FilesGet(ctx context.Context, key *string, limit *int, cursor, rng, onlyIf *string, opts ...CallOption) (types.FilesGetResult, error) {
	return data(a.FilesGetWithHTTPInfo(ctx, key, limit, cursor, rng, onlyIf, opts...))
}

// FilesPostWithHTTPInfo starts a multipart upload, or completes one when body has parts
func (a *DefaultAPI) FilesPostWithHTTPInfo(ctx context.Context, body *types.FilesPostRequest, uploadID *string, opts ...CallOption) (*HTTPInfo[*types.FilesPost200Response], error) {
	return call(ctx, a.pipeline, func() (*Request, error) {
		return a.factory.FilesPost(ctx, body, uploadID, opts...)
	}, a.processor.FilesPostWithHTTPInfo)
}

func (a *DefaultAPI) FilesPost(ctx context.Context, body *types.FilesPostRequest, uploadID *string, opts ...CallOption) (*types.FilesPost200Response, error) {
	return data(a.FilesPostWithHTTPInfo(ctx, body, uploadID, opts...))
}

// FilesPutWithHTTPInfo uploads a whole object, or one part when uploadID and part are set
func (a *DefaultAPI) FilesPutWithHTTPInfo(ctx context.Context, file *types.HTTPFile, key string, uploadID *string, part *int, visibility *types.Visibility, opts ...CallOption) (*HTTPInfo[types.FilesPutResult], error) {
	return call(ctx, a.pipeline, func() (*Request, error) {
		return a.factory.FilesPut(ctx, file, key, uploadID, part, visibility, opts...)
	}, a.processor.FilesPutWithHTTPInfo)
}

func (a *DefaultAPI) FilesPut(ctx context.Context, file *types.HTTPFile, key string, uploadID *string, part *int, visibility *types.Visibility, opts ...CallOption) (types.FilesPutResult, error) {
	return data(a.FilesPutWithHTTPInfo(ctx, file, key, uploadID, part, visibility, opts...))
}
