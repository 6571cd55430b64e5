// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"encoding/json"
	"errors"
)

var errNullObject = errors.New("expected a JSON object, got null")

// R2MultipartUploadResponse is returned when a multipart upload is started
type R2MultipartUploadResponse struct {
	Key      string `json:"key"`
	UploadID string `json:"uploadId"`
}

func (r *R2MultipartUploadResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key      *string `json:"key"`
		UploadID *string `json:"uploadId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Key == nil {
		return errors.New("multipart upload response: missing key")
	}
	if raw.UploadID == nil {
		return errors.New("multipart upload response: missing uploadId")
	}
	*r = R2MultipartUploadResponse{Key: *raw.Key, UploadID: *raw.UploadID}
	return nil
}

// R2UploadedPart is returned by the service for each uploaded part
type R2UploadedPart struct {
	PartNumber int    `json:"partNumber"`
	ETag       string `json:"etag"`
}

// R2UploadedPartBody references an uploaded part when completing an upload
type R2UploadedPartBody struct {
	ETag       string `json:"etag"`
	PartNumber int    `json:"partNumber"`
}

// FileCreateStartBody starts a multipart upload
type FileCreateStartBody struct {
	Key        string      `json:"key"`
	Visibility *Visibility `json:"visibility,omitempty"`
}

// FilesPostRequest is the parameter bundle of POST /files. Without Parts it
// starts an upload; with Parts it completes one.
type FilesPostRequest struct {
	Key        string               `json:"key,omitempty"`
	Visibility *Visibility          `json:"visibility,omitempty"`
	Parts      []R2UploadedPartBody `json:"parts,omitempty"`
}

// HasParts returns true if the request completes an upload
func (r *FilesPostRequest) HasParts() bool {
	return len(r.Parts) > 0
}

// FilesPost200Response is the answer of POST /files.
// Exactly one of Upload or Object is set.
type FilesPost200Response struct {
	Upload *R2MultipartUploadResponse
	Object *R2Object
}

func (r *FilesPost200Response) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errNullObject
	}
	if _, ok := fields["uploadId"]; ok {
		var up R2MultipartUploadResponse
		if err := json.Unmarshal(data, &up); err != nil {
			return err
		}
		*r = FilesPost200Response{Upload: &up}
		return nil
	}
	var obj R2Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = FilesPost200Response{Object: &obj}
	return nil
}

func (r FilesPost200Response) MarshalJSON() ([]byte, error) {
	if r.Upload != nil {
		return json.Marshal(r.Upload)
	}
	if r.Object != nil {
		return json.Marshal(r.Object)
	}
	return []byte("null"), nil
}

// FilesPutResult is what PUT /files resolves to: *R2Object for 200 (whole
// object stored), *R2UploadedPart for 201 (one part stored).
type FilesPutResult interface {
	isFilesPutResult()
}

func (*R2Object) isFilesPutResult()       {}
func (*R2UploadedPart) isFilesPutResult() {}
