// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

// RequestFactory builds one wire request per operation. Builders do no I/O
// other than what the configured auth strategies do.
type RequestFactory struct {
	cfg *Configuration
}

func NewRequestFactory(cfg *Configuration) *RequestFactory {
	return &RequestFactory{cfg: cfg}
}

func missing(op *Operation, field string) error {
	return &MissingParameterError{API: APIName, Operation: op.ID, Field: field}
}

// start creates the request for op with the Accept header set
func (f *RequestFactory) start(op *Operation, path string, o callOptions) *Request {
	srv := f.cfg.Server
	if o.server != nil {
		srv = o.server
	}
	req := srv.MakeRequest(path, op.Method)
	req.SetHeaderParam(HeaderAccept, AcceptDefault)
	return req
}

func (f *RequestFactory) finish(ctx context.Context, req *Request, o callOptions) (*Request, error) {
	if err := f.cfg.AuthMethods.apply(ctx, req, o.defaultAuth); err != nil {
		return nil, err
	}
	return req, nil
}

// DownloadFile builds GET /download/{file_key}?token=
func (f *RequestFactory) DownloadFile(ctx context.Context, fileKey, token string, opts ...CallOption) (*Request, error) {
	op := OpDownloadFile
	if fileKey == "" {
		return nil, missing(op, "fileKey")
	}
	if token == "" {
		return nil, missing(op, "token")
	}
	o := newCallOptions(opts)
	req := f.start(op, substitutePath(op.Path, map[string]string{"file_key": fileKey}), o)
	req.SetQueryParam("token", token)
	return f.finish(ctx, req, o)
}

// DownloadFileToken builds GET /download/{file_key}/token
func (f *RequestFactory) DownloadFileToken(ctx context.Context, fileKey string, opts ...CallOption) (*Request, error) {
	op := OpDownloadFileToken
	if fileKey == "" {
		return nil, missing(op, "fileKey")
	}
	o := newCallOptions(opts)
	req := f.start(op, substitutePath(op.Path, map[string]string{"file_key": fileKey}), o)
	return f.finish(ctx, req, o)
}

// FilesGet builds GET /files. Every parameter is optional.
func (f *RequestFactory) FilesGet(ctx context.Context, key *string, limit *int, cursor, rng, onlyIf *string, opts ...CallOption) (*Request, error) {
	op := OpFilesGet
	o := newCallOptions(opts)
	req := f.start(op, op.Path, o)
	if key != nil {
		req.SetQueryParam("key", *key)
	}
	if limit != nil {
		req.SetQueryParam("limit", formatInt(*limit))
	}
	if cursor != nil {
		req.SetQueryParam("cursor", *cursor)
	}
	if rng != nil {
		req.SetQueryParam("range", *rng)
	}
	if onlyIf != nil {
		req.SetQueryParam("onlyIf", *onlyIf)
	}
	return f.finish(ctx, req, o)
}

// FilesPost builds POST /files. With parts the body is only the parts array and
// the key moves to the query; without parts the whole request is the body.
func (f *RequestFactory) FilesPost(ctx context.Context, body *types.FilesPostRequest, uploadID *string, opts ...CallOption) (*Request, error) {
	op := OpFilesPost
	if body == nil {
		return nil, missing(op, "filesPostRequest")
	}
	o := newCallOptions(opts)
	req := f.start(op, op.Path, o)
	if uploadID != nil {
		req.SetQueryParam("upload_id", *uploadID)
	}
	if body.HasParts() && body.Key != "" {
		req.SetQueryParam("key", body.Key)
	}
	if body.Visibility != nil && *body.Visibility != "" {
		req.SetQueryParam("visibility", body.Visibility.String())
	}

	var payload any = body
	if body.HasParts() {
		payload = body.Parts
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode body: %w", op.ID, err)
	}
	req.SetBody(MediaTypeJSON, b)
	return f.finish(ctx, req, o)
}

// FilesPut builds PUT /files as a multipart form, or URL-encoded when the
// transport cannot carry multipart bodies.
func (f *RequestFactory) FilesPut(ctx context.Context, file *types.HTTPFile, key string, uploadID *string, part *int, visibility *types.Visibility, opts ...CallOption) (*Request, error) {
	op := OpFilesPut
	if file == nil {
		return nil, missing(op, "file")
	}
	if key == "" {
		return nil, missing(op, "key")
	}
	o := newCallOptions(opts)
	req := f.start(op, op.Path, o)

	fields := []formField{
		{Name: "file", File: file},
		{Name: "key", Value: key},
	}
	if uploadID != nil {
		fields = append(fields, formField{Name: "upload_id", Value: *uploadID})
	}
	if part != nil {
		fields = append(fields, formField{Name: "part", Value: formatInt(*part)})
	}
	if visibility != nil {
		fields = append(fields, formField{Name: "visibility", Value: visibility.String()})
	}

	if f.cfg.supportsMultipart() {
		contentType, b, err := encodeMultipartForm(fields)
		if err != nil {
			return nil, fmt.Errorf("%s: encode form: %w", op.ID, err)
		}
		req.SetBody(contentType, b)
	} else {
		req.SetBody(encodeURLForm(fields))
	}
	return f.finish(ctx, req, o)
}
