// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import "net/http"

// APIName is the name reported in MissingParameterError
const APIName = "DefaultApi"

// Kind says how a matched response is turned into a result or error
type Kind int

const (
	// KindFile passes the body through as raw file bytes
	KindFile Kind = iota
	// KindStructured decodes the body as text and parses it by content type
	KindStructured
	// KindError decodes an ErrorBody best-effort and raises an APIError
	KindError
	// KindOpaqueError raises an APIError without looking at the body
	KindOpaqueError
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindStructured:
		return "structured"
	case KindError:
		return "error"
	case KindOpaqueError:
		return "opaque-error"
	}
	return "unknown"
}

// ResponseMapping binds a status pattern to a result shape or an error category
type ResponseMapping struct {
	Pattern  string
	Kind     Kind
	Category string // error kinds only
}

// Matches reports whether code satisfies the mapping's pattern
func (m ResponseMapping) Matches(code int) bool {
	return statusMatches(m.Pattern, code)
}

// IsError returns true for mappings that raise an APIError
func (m ResponseMapping) IsError() bool {
	return m.Kind == KindError || m.Kind == KindOpaqueError
}

// QueryParam is a recognised query parameter
type QueryParam struct {
	Name     string
	Required bool
}

// Operation describes one endpoint. Values are package-level and never mutated.
type Operation struct {
	ID          string
	Method      string
	Path        string
	PathParams  []string
	QueryParams []QueryParam
	Consumes    []string
	// Responses is checked in order; the first matching entry wins.
	Responses []ResponseMapping
}

// Primary returns the first success mapping, used for unmatched 2xx answers
func (o *Operation) Primary() (ResponseMapping, bool) {
	for _, m := range o.Responses {
		if !m.IsError() {
			return m, true
		}
	}
	return ResponseMapping{}, false
}

// Match returns the first mapping whose pattern covers code
func (o *Operation) Match(code int) (ResponseMapping, bool) {
	for _, m := range o.Responses {
		if m.Matches(code) {
			return m, true
		}
	}
	return ResponseMapping{}, false
}

const (
	CategoryBadRequest       = "Bad request"
	CategoryUnauthorized     = "Unauthorized"
	CategoryPermissionDenied = "Permission denied"
	CategoryNotFound         = "Not found"
)

var (
	OpDownloadFile = &Operation{
		ID:          "downloadFileKeyGet",
		Method:      http.MethodGet,
		Path:        "/download/{file_key}",
		PathParams:  []string{"file_key"},
		QueryParams: []QueryParam{{Name: "token", Required: true}},
		Responses: []ResponseMapping{
			{Pattern: "200", Kind: KindFile},
			{Pattern: "400", Kind: KindError, Category: CategoryBadRequest},
			{Pattern: "404", Kind: KindError, Category: CategoryNotFound},
		},
	}

	OpDownloadFileToken = &Operation{
		ID:         "downloadFileKeyTokenGet",
		Method:     http.MethodGet,
		Path:       "/download/{file_key}/token",
		PathParams: []string{"file_key"},
		Responses: []ResponseMapping{
			{Pattern: "200", Kind: KindStructured},
			{Pattern: "400", Kind: KindError, Category: CategoryBadRequest},
			{Pattern: "500", Kind: KindOpaqueError},
		},
	}

	OpFilesGet = &Operation{
		ID:     "filesGet",
		Method: http.MethodGet,
		Path:   "/files",
		QueryParams: []QueryParam{
			{Name: "key"},
			{Name: "limit"},
			{Name: "cursor"},
			{Name: "range"},
			{Name: "onlyIf"},
		},
		Responses: []ResponseMapping{
			{Pattern: "200", Kind: KindFile},
			{Pattern: "206", Kind: KindStructured},
			{Pattern: "400", Kind: KindError, Category: CategoryBadRequest},
			{Pattern: "401", Kind: KindError, Category: CategoryUnauthorized},
			{Pattern: "403", Kind: KindError, Category: CategoryPermissionDenied},
			{Pattern: "404", Kind: KindError, Category: CategoryNotFound},
		},
	}

	OpFilesPost = &Operation{
		ID:     "filesPost",
		Method: http.MethodPost,
		Path:   "/files",
		QueryParams: []QueryParam{
			{Name: "upload_id"},
			{Name: "key"},
			{Name: "visibility"},
		},
		Consumes: []string{MediaTypeJSON},
		Responses: []ResponseMapping{
			{Pattern: "200", Kind: KindStructured},
			{Pattern: "400", Kind: KindError, Category: CategoryBadRequest},
			{Pattern: "401", Kind: KindError, Category: CategoryUnauthorized},
		},
	}

	OpFilesPut = &Operation{
		ID:       "filesPut",
		Method:   http.MethodPut,
		Path:     "/files",
		Consumes: []string{MediaTypeMultipartForm},
		Responses: []ResponseMapping{
			{Pattern: "200", Kind: KindStructured},
			{Pattern: "201", Kind: KindStructured},
			{Pattern: "400", Kind: KindError, Category: CategoryBadRequest},
			{Pattern: "401", Kind: KindError, Category: CategoryUnauthorized},
		},
	}

	// Operations lists every descriptor in contract order
	Operations = []*Operation{OpDownloadFile, OpDownloadFileToken, OpFilesGet, OpFilesPost, OpFilesPut}
)
