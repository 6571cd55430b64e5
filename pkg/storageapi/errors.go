// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrUnknownStatus    = errors.New("unknown API status code")
	ErrDecode           = errors.New("response body does not match expected shape")
	ErrBodyConsumed     = errors.New("response body already consumed")
	ErrAborted          = errors.New("request pipeline aborted")
)

// MissingParameterError is raised by a builder before any I/O when a required
// parameter is absent.
type MissingParameterError struct {
	API       string
	Operation string
	Field     string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("required parameter %s was null or undefined when calling %s.%s", e.Field, e.API, e.Operation)
}

func (e *MissingParameterError) Unwrap() error {
	return ErrMissingParameter
}

// APIError is a server answer whose status code matched a declared error
// pattern of the operation.
type APIError struct {
	StatusCode int
	Category   string
	Body       *types.ErrorBody // nil when the server sent no decodable body
	Headers    http.Header
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP-Code: %d", e.StatusCode)
	if e.Category != "" {
		b.WriteString("\nMessage: ")
		b.WriteString(e.Category)
	}
	if e.Body != nil && e.Body.Error != "" {
		b.WriteString("\nBody: ")
		b.WriteString(e.Body.Error)
	}
	return b.String()
}

// UnknownStatusError is raised when no declared pattern and no fallback
// covers the status code.
type UnknownStatusError struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("HTTP-Code: %d\nMessage: Unknown API Status Code!\nBody: %s", e.StatusCode, e.Body)
}

func (e *UnknownStatusError) Unwrap() error {
	return ErrUnknownStatus
}

// DecodeError is raised when a body was present for a matched pattern but did
// not conform to the declared shape.
type DecodeError struct {
	Operation   string
	StatusCode  int
	ContentType string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode %d response (%s): %v", e.Operation, e.StatusCode, e.ContentType, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// AbortedError reports that the context ended while the pipeline was running.
// No step after Middleware ran.
type AbortedError struct {
	Stage      string // "pre", "send" or "post"
	Middleware string
	Err        error
}

func (e *AbortedError) Error() string {
	if e.Middleware != "" {
		return fmt.Sprintf("request pipeline aborted at %s/%s: %v", e.Stage, e.Middleware, e.Err)
	}
	return fmt.Sprintf("request pipeline aborted at %s: %v", e.Stage, e.Err)
}

func (e *AbortedError) Unwrap() []error {
	return []error{ErrAborted, e.Err}
}

// StatusCode returns the HTTP status carried by err, or 0 if err did not come
// from a server answer.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var unknown *UnknownStatusError
	if errors.As(err, &unknown) {
		return unknown.StatusCode
	}
	var decode *DecodeError
	if errors.As(err, &decode) {
		return decode.StatusCode
	}
	return 0
}

// IsNotFound returns true if err is a 404 answer
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized returns true if err is a 401 answer
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsServerError returns true if err is a 5xx answer
func IsServerError(err error) bool {
	code := StatusCode(err)
	return code >= 500 && code <= 599
}
