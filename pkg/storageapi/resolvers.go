// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

// HTTPInfo is a resolved result together with the status and headers it came with
type HTTPInfo[T any] struct {
	StatusCode int
	Headers    http.Header
	Data       T
}

// errNullBody rejects a JSON null where a result value is declared
var errNullBody = errors.New("body is null")

// decoder turns a matched response into a result of type T
type decoder[T any] func(op *Operation, resp *Response) (T, error)

// shapes maps the pattern of each success mapping to its decoder
type shapes[T any] map[string]decoder[T]

func fileShape[T any]() decoder[T] {
	return func(op *Operation, resp *Response) (T, error) {
		var zero T
		f, err := resp.File()
		if err != nil {
			return zero, err
		}
		return any(f).(T), nil
	}
}

// structuredShape decodes into a fresh *V, which must implement T
func structuredShape[T any, V any]() decoder[T] {
	return func(op *Operation, resp *Response) (T, error) {
		var zero T
		v := new(V)
		if err := decodeStructured(op, resp, v); err != nil {
			return zero, err
		}
		return any(v).(T), nil
	}
}

func decodeStructured(op *Operation, resp *Response, v any) error {
	contentType := resp.ContentType()
	text, err := resp.Text()
	if err != nil {
		return &DecodeError{Operation: op.ID, StatusCode: resp.StatusCode, ContentType: contentType, Err: err}
	}
	if strings.TrimSpace(text) == "null" {
		return &DecodeError{Operation: op.ID, StatusCode: resp.StatusCode, ContentType: contentType, Err: errNullBody}
	}
	if err := parseStructured(text, resp.MediaType(), v); err != nil {
		return &DecodeError{Operation: op.ID, StatusCode: resp.StatusCode, ContentType: contentType, Err: err}
	}
	return nil
}

// decodeErrorBody reads an error body best-effort. Absent or unreadable bodies
// yield nil. The service sometimes sends the error object as a JSON string
// holding JSON, and plain text bodies become the message.
func decodeErrorBody(resp *Response) *types.ErrorBody {
	text, err := resp.Text()
	if err != nil {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !isJSONMediaType(resp.MediaType()) {
		return &types.ErrorBody{Error: text}
	}
	var body types.ErrorBody
	if err := json.Unmarshal([]byte(text), &body); err == nil {
		return &body
	}
	var inner string
	if err := json.Unmarshal([]byte(text), &inner); err == nil {
		if err := json.Unmarshal([]byte(inner), &body); err == nil {
			return &body
		}
		return &types.ErrorBody{Error: inner}
	}
	return nil
}

// resolve applies op's ordered response mappings to resp. The body is released
// on every path.
func resolve[T any](op *Operation, resp *Response, s shapes[T]) (*HTTPInfo[T], error) {
	defer resp.Close()

	if m, ok := op.Match(resp.StatusCode); ok {
		switch m.Kind {
		case KindError:
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Category:   m.Category,
				Body:       decodeErrorBody(resp),
				Headers:    resp.Header,
			}
		case KindOpaqueError:
			return nil, &APIError{StatusCode: resp.StatusCode, Category: m.Category, Headers: resp.Header}
		default:
			return decodeWith(op, resp, s, m.Pattern)
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 && resp.StatusCode != http.StatusNoContent {
		empty, err := resp.Empty()
		if err != nil {
			return nil, &DecodeError{Operation: op.ID, StatusCode: resp.StatusCode, ContentType: resp.ContentType(), Err: err}
		}
		if primary, ok := op.Primary(); ok && !empty {
			return decodeWith(op, resp, s, primary.Pattern)
		}
	}

	body, _ := resp.Bytes()
	return nil, &UnknownStatusError{StatusCode: resp.StatusCode, Body: body, Headers: resp.Header}
}

func decodeWith[T any](op *Operation, resp *Response, s shapes[T], pattern string) (*HTTPInfo[T], error) {
	dec, ok := s[pattern]
	if !ok {
		return nil, fmt.Errorf("%s: no decoder for status pattern %s", op.ID, pattern)
	}
	data, err := dec(op, resp)
	if err != nil {
		return nil, err
	}
	return &HTTPInfo[T]{StatusCode: resp.StatusCode, Headers: resp.Header, Data: data}, nil
}

// ResponseProcessor holds one resolver per operation. It is stateless.
type ResponseProcessor struct{}

// DownloadFileWithHTTPInfo resolves GET /download/{file_key}
func (ResponseProcessor) DownloadFileWithHTTPInfo(resp *Response) (*HTTPInfo[*types.HTTPFile], error) {
	return resolve(OpDownloadFile, resp, shapes[*types.HTTPFile]{
		"200": fileShape[*types.HTTPFile](),
	})
}

// DownloadFileTokenWithHTTPInfo resolves GET /download/{file_key}/token
func (ResponseProcessor) DownloadFileTokenWithHTTPInfo(resp *Response) (*HTTPInfo[*types.DownloadTokenResponse], error) {
	return resolve(OpDownloadFileToken, resp, shapes[*types.DownloadTokenResponse]{
		"200": structuredShape[*types.DownloadTokenResponse, types.DownloadTokenResponse](),
	})
}

// FilesGetWithHTTPInfo resolves GET /files to *types.HTTPFile (200) or
// *types.FilesGet206Response (206).
func (ResponseProcessor) FilesGetWithHTTPInfo(resp *Response) (*HTTPInfo[types.FilesGetResult], error) {
	return resolve(OpFilesGet, resp, shapes[types.FilesGetResult]{
		"200": fileShape[types.FilesGetResult](),
		"206": structuredShape[types.FilesGetResult, types.FilesGet206Response](),
	})
}

// FilesPostWithHTTPInfo resolves POST /files
func (ResponseProcessor) FilesPostWithHTTPInfo(resp *Response) (*HTTPInfo[*types.FilesPost200Response], error) {
	return resolve(OpFilesPost, resp, shapes[*types.FilesPost200Response]{
		"200": structuredShape[*types.FilesPost200Response, types.FilesPost200Response](),
	})
}

// FilesPutWithHTTPInfo resolves PUT /files to *types.R2Object (200) or
// *types.R2UploadedPart (201).
func (ResponseProcessor) FilesPutWithHTTPInfo(resp *Response) (*HTTPInfo[types.FilesPutResult], error) {
	return resolve(OpFilesPut, resp, shapes[types.FilesPutResult]{
		"200": structuredShape[types.FilesPutResult, types.R2Object](),
		"201": structuredShape[types.FilesPutResult, types.R2UploadedPart](),
	})
}
