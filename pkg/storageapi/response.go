// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

// Response is a received wire response. Its body can be read once, as bytes,
// text or a file, and is released on every path through Close.
type Response struct {
	StatusCode int
	Header     http.Header

	body     io.ReadCloser
	reader   *bufio.Reader
	consumed bool
	closed   bool
}

// NewResponse wraps a status, headers and body stream. A nil body is treated
// as empty.
func NewResponse(statusCode int, header http.Header, body io.ReadCloser) *Response {
	if header == nil {
		header = http.Header{}
	}
	if body == nil {
		body = io.NopCloser(bytes.NewReader(nil))
	}
	return &Response{
		StatusCode: statusCode,
		Header:     header,
		body:       body,
		reader:     bufio.NewReader(body),
	}
}

// ContentType returns the raw Content-Type header
func (r *Response) ContentType() string {
	return r.Header.Get(HeaderContentType)
}

// MediaType returns the normalised media type without parameters
func (r *Response) MediaType() string {
	return normalizeMediaType(r.ContentType())
}

// Empty reports whether the body has no bytes. It does not consume the body.
func (r *Response) Empty() (bool, error) {
	if r.consumed {
		return false, ErrBodyConsumed
	}
	_, err := r.reader.Peek(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// Bytes reads the whole body and releases it
func (r *Response) Bytes() ([]byte, error) {
	if r.consumed {
		return nil, ErrBodyConsumed
	}
	r.consumed = true
	defer r.Close()
	return io.ReadAll(r.reader)
}

// Text reads the body and decodes it with the declared charset
func (r *Response) Text() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return decodeText(b, r.ContentType())
}

// File reads the body as raw file content. The name comes from
// Content-Disposition when the server sent one.
func (r *Response) File() (*types.HTTPFile, error) {
	b, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	f := &types.HTTPFile{
		ContentType: r.ContentType(),
		Data:        b,
	}
	f.Name = dispositionFilename(r.Header.Get("Content-Disposition"))
	return f, nil
}

// dispositionFilename extracts filename from a Content-Disposition value. The
// service sends the parameter without a disposition type (`filename="a.txt"`).
func dispositionFilename(cd string) string {
	if cd == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(cd); err == nil {
		return params["filename"]
	}
	if _, params, err := mime.ParseMediaType("attachment; " + cd); err == nil {
		return params["filename"]
	}
	return ""
}

// Close releases the body. It is safe to call more than once.
func (r *Response) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.body.Close()
}
