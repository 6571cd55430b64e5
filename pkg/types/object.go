// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"bytes"
	"encoding/json"
	"time"
)

// R2Object is the metadata the service returns for a stored object.
// Every field is optional on the wire.
type R2Object struct {
	Key      string     `json:"key,omitempty"`
	Size     int64      `json:"size,omitempty"`
	ETag     string     `json:"etag,omitempty"`
	HTTPETag string     `json:"httpEtag,omitempty"`
	Uploaded *time.Time `json:"uploaded,omitempty"` // RFC 3339
}

// R2ObjectList is one page of a listing
type R2ObjectList struct {
	Objects           []R2Object `json:"objects"`
	Truncated         bool       `json:"truncated"`
	Cursor            string     `json:"cursor,omitempty"`
	DelimitedPrefixes []string   `json:"delimitedPrefixes,omitempty"`
}

// HasMore returns true if another page can be fetched with Cursor
func (l *R2ObjectList) HasMore() bool {
	return l.Truncated && l.Cursor != ""
}

// FilesGet206Response is the structured answer of GET /files.
// Exactly one of Object or List is set.
type FilesGet206Response struct {
	Object *R2Object
	List   *R2ObjectList
}

func (r *FilesGet206Response) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errNullObject
	}
	if _, ok := fields["objects"]; ok {
		var list R2ObjectList
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*r = FilesGet206Response{List: &list}
		return nil
	}
	var obj R2Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = FilesGet206Response{Object: &obj}
	return nil
}

func (r FilesGet206Response) MarshalJSON() ([]byte, error) {
	if r.List != nil {
		return json.Marshal(r.List)
	}
	if r.Object != nil {
		return json.Marshal(r.Object)
	}
	return []byte("null"), nil
}

// HTTPFile is raw file content plus the little metadata HTTP carries with it
type HTTPFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the content length in bytes
func (f *HTTPFile) Size() int64 {
	return int64(len(f.Data))
}

// Reader returns a fresh reader over the content
func (f *HTTPFile) Reader() *bytes.Reader {
	return bytes.NewReader(f.Data)
}

// FilesGetResult is what GET /files resolves to: *HTTPFile for 200,
// *FilesGet206Response for 206.
type FilesGetResult interface {
	isFilesGetResult()
}

func (*HTTPFile) isFilesGetResult()            {}
func (*FilesGet206Response) isFilesGetResult() {}

// DownloadTokenResponse carries a single-use download token
type DownloadTokenResponse struct {
	Token string `json:"token"`
}

// ErrorBody is the JSON body the service sends with 4xx answers
type ErrorBody struct {
	Error string `json:"error,omitempty"`
}
