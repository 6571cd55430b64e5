// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"context"

	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

// Observable is a single-value stream. The work starts when the Observable is
// created and completes exactly once, with a value or an error.
type Observable[T any] struct {
	done   chan struct{}
	value  T
	err    error
	cancel context.CancelFunc
}

func newObservable[T any](ctx context.Context, run func(ctx context.Context) (T, error)) *Observable[T] {
	ctx, cancel := context.WithCancel(ctx)
	o := &Observable[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer cancel()
		v, err := run(ctx)
		o.value, o.err = v, err
		close(o.done)
	}()
	return o
}

// Done is closed once the value or error is available
func (o *Observable[T]) Done() <-chan struct{} {
	return o.done
}

// Cancel aborts the pending exchange. Middleware that has not run yet never
// runs, and Await reports an *AbortedError or the transport's context error.
func (o *Observable[T]) Cancel() {
	o.cancel()
}

// Await blocks until the result is available or ctx ends. Leaving early
// because of ctx does not cancel the Observable.
func (o *Observable[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-o.done:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Subscribe calls next with the value or fail with the error, once, from
// another goroutine. The returned channel is closed after the callback ran.
func (o *Observable[T]) Subscribe(next func(T), fail func(error)) <-chan struct{} {
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		<-o.done
		if o.err != nil {
			if fail != nil {
				fail(o.err)
			}
			return
		}
		if next != nil {
			next(o.value)
		}
	}()
	return finished
}

// Map derives an Observable that applies f to the value of src. Cancelling
// the result cancels src.
func Map[T, U any](src *Observable[T], f func(T) U) *Observable[U] {
	return newObservable(context.Background(), func(ctx context.Context) (U, error) {
		v, err := src.Await(ctx)
		if err != nil {
			if ctx.Err() != nil {
				src.Cancel()
				<-src.Done()
			}
			var zero U
			return zero, err
		}
		return f(v), nil
	})
}

// ObservableAPI is the reactive convention over DefaultAPI
type ObservableAPI struct {
	api *DefaultAPI
}

func NewObservableAPI(cfg *Configuration) *ObservableAPI {
	return &ObservableAPI{api: NewDefaultAPI(cfg)}
}

func dataOf[T any](info *HTTPInfo[T]) T {
	return info.Data
}

func (a *ObservableAPI) DownloadFileWithHTTPInfo(ctx context.Context, fileKey, token string, opts ...CallOption) *Observable[*HTTPInfo[*types.HTTPFile]] {
	return newObservable(ctx, func(ctx context.Context) (*HTTPInfo[*types.HTTPFile], error) {
		return a.api.DownloadFileWithHTTPInfo(ctx, fileKey, token, opts...)
	})
}

func (a *ObservableAPI) DownloadFile(ctx context.Context, fileKey, token string, opts ...CallOption) *Observable[*types.HTTPFile] {
	return Map(a.DownloadFileWithHTTPInfo(ctx, fileKey, token, opts...), dataOf[*types.HTTPFile])
}

func (a *ObservableAPI) DownloadFileTokenWithHTTPInfo(ctx context.Context, fileKey string, opts ...CallOption) *Observable[*HTTPInfo[*types.DownloadTokenResponse]] {
	return newObservable(ctx, func(ctx context.Context) (*HTTPInfo[*types.DownloadTokenResponse], error) {
		return a.api.DownloadFileTokenWithHTTPInfo(ctx, fileKey, opts...)
	})
}

func (a *ObservableAPI) DownloadFileToken(ctx context.Context, fileKey string, opts ...CallOption) *Observable[*types.DownloadTokenResponse] {
	return Map(a.DownloadFileTokenWithHTTPInfo(ctx, fileKey, opts...), dataOf[*types.DownloadTokenResponse])
}

func (a *ObservableAPI) FilesGetWithHTTPInfo(ctx context.Context, key *string, limit *int, cursor, rng, onlyIf *string, opts ...CallOption) *Observable[*HTTPInfo[types.FilesGetResult]] {
	return newObservable(ctx, func(ctx context.Context) (*HTTPInfo[types.FilesGetResult], error) {
		return a.api.FilesGetWithHTTPInfo(ctx, key, limit, cursor, rng, onlyIf, opts...)
	})
}

func (a *ObservableAPI) FilesGet(ctx context.Context, key *string, limit *int, cursor, rng, onlyIf *string, opts ...CallOption) *Observable[types.FilesGetResult] {
	return Map(a.FilesGetWithHTTPInfo(ctx, key, limit, cursor, rng, onlyIf, opts...), dataOf[types.FilesGetResult])
}

func (a *ObservableAPI) FilesPostWithHTTPInfo(ctx context.Context, body *types.FilesPostRequest, uploadID *string, opts ...CallOption) *Observable[*HTTPInfo[*types.FilesPost200Response]] {
	return newObservable(ctx, func(ctx context.Context) (*HTTPInfo[*types.FilesPost200Response], error) {
		return a.api.FilesPostWithHTTPInfo(ctx, body, uploadID, opts...)
	})
}

func (a *ObservableAPI) FilesPost(ctx context.Context, body *types.FilesPostRequest, uploadID *string, opts ...CallOption) *Observable[*types.FilesPost200Response] {
	return Map(a.FilesPostWithHTTPInfo(ctx, body, uploadID, opts...), dataOf[*types.FilesPost200Response])
}

func (a *ObservableAPI) FilesPutWithHTTPInfo(ctx context.Context, file *types.HTTPFile, key string, uploadID *string, part *int, visibility *types.Visibility, opts ...CallOption) *Observable[*HTTPInfo[types.FilesPutResult]] {
	return newObservable(ctx, func(ctx context.Context) (*HTTPInfo[types.FilesPutResult], error) {
		return a.api.FilesPutWithHTTPInfo(ctx, file, key, uploadID, part, visibility, opts...)
	})
}

func (a *ObservableAPI) FilesPut(ctx context.Context, file *types.HTTPFile, key string, uploadID *string, part *int, visibility *types.Visibility, opts ...CallOption) *Observable[types.FilesPutResult] {
	return Map(a.FilesPutWithHTTPInfo(ctx, file, key, uploadID, part, visibility, opts...), dataOf[types.FilesPutResult])
}
