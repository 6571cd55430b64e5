// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"context"

	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

type DefaultAPIDownloadFileRequest struct {
	FileKey string
	Token   string
}

type DefaultAPIDownloadFileTokenRequest struct {
	FileKey string
}

type DefaultAPIFilesGetRequest struct {
	Key    *string
	Limit  *int
	Cursor *string
	Range  *string
	OnlyIf *string
}

type DefaultAPIFilesPostRequest struct {
	FilesPostRequest *types.FilesPostRequest
	UploadID         *string
}

type DefaultAPIFilesPutRequest struct {
	File       *types.HTTPFile
	Key        string
	UploadID   *string
	Part       *int
	Visibility *types.Visibility
}

// ObjectParamAPI is the parameter-object convention over DefaultAPI
type ObjectParamAPI struct {
	api *DefaultAPI
}

func NewObjectParamAPI(cfg *Configuration) *ObjectParamAPI {
	return &ObjectParamAPI{api: NewDefaultAPI(cfg)}
}

func (a *ObjectParamAPI) DownloadFileWithHTTPInfo(ctx context.Context, p DefaultAPIDownloadFileRequest, opts ...CallOption) (*HTTPInfo[*types.HTTPFile], error) {
	return a.api.DownloadFileWithHTTPInfo(ctx, p.FileKey, p.Token, opts...)
}

func (a *ObjectParamAPI) DownloadFile(ctx context.Context, p DefaultAPIDownloadFileRequest, opts ...CallOption) (*types.HTTPFile, error) {
	return a.api.DownloadFile(ctx, p.FileKey, p.Token, opts...)
}

func (a *ObjectParamAPI) DownloadFileTokenWithHTTPInfo(ctx context.Context, p DefaultAPIDownloadFileTokenRequest, opts ...CallOption) (*HTTPInfo[*types.DownloadTokenResponse], error) {
	return a.api.DownloadFileTokenWithHTTPInfo(ctx, p.FileKey, opts...)
}

func (a *ObjectParamAPI) DownloadFileToken(ctx context.Context, p DefaultAPIDownloadFileTokenRequest, opts ...CallOption) (*types.DownloadTokenResponse, error) {
	return a.api.DownloadFileToken(ctx, p.FileKey, opts...)
}

func (a *ObjectParamAPI) FilesGetWithHTTPInfo(ctx context.Context, p DefaultAPIFilesGetRequest, opts ...CallOption) (*HTTPInfo[types.FilesGetResult], error) {
	return a.api.FilesGetWithHTTPInfo(ctx, p.Key, p.Limit, p.Cursor, p.Range, p.OnlyIf, opts...)
}

func (a *ObjectParamAPI) FilesGet(ctx context.Context, p DefaultAPIFilesGetRequest, opts ...CallOption) (types.FilesGetResult, error) {
	return a.api.FilesGet(ctx, p.Key, p.Limit, p.Cursor, p.Range, p.OnlyIf, opts...)
}

func (a *ObjectParamAPI) FilesPostWithHTTPInfo(ctx context.Context, p DefaultAPIFilesPostRequest, opts ...CallOption) (*HTTPInfo[*types.FilesPost200Response], error) {
	return a.api.FilesPostWithHTTPInfo(ctx, p.FilesPostRequest, p.UploadID, opts...)
}

func (a *ObjectParamAPI) FilesPost(ctx context.Context, p DefaultAPIFilesPostRequest, opts ...CallOption) (*types.FilesPost200Response, error) {
	return a.api.FilesPost(ctx, p.FilesPostRequest, p.UploadID, opts...)
}

func (a *ObjectParamAPI) FilesPutWithHTTPInfo(ctx context.Context, p DefaultAPIFilesPutRequest, opts ...CallOption) (*HTTPInfo[types.FilesPutResult], error) {
	return a.api.FilesPutWithHTTPInfo(ctx, p.File, p.Key, p.UploadID, p.Part, p.Visibility, opts...)
}

func (a *ObjectParamAPI) FilesPut(ctx context.Context, p DefaultAPIFilesPutRequest, opts ...CallOption) (types.FilesPutResult, error) {
	return a.api.FilesPut(ctx, p.File, p.Key, p.UploadID, p.Part, p.Visibility, opts...)
}
