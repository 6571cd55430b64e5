// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"
)

const (
	HeaderAccept      = "Accept"
	HeaderContentType = "Content-Type"
	HeaderAPIKey      = "X-API-Key"
	HeaderRequestID   = "X-Request-Id"
	HeaderUserAgent   = "User-Agent"

	// AcceptDefault is sent with every request
	AcceptDefault = "application/json, */*;q=0.8"
)

// Request is a fully built wire request. Path holds the already escaped path;
// Query is encoded with sorted keys, so equal parameters give equal URLs.
type Request struct {
	Method  string
	BaseURL string
	Path    string
	Query   url.Values
	Header  http.Header
	Body    []byte
}

func newRequest(baseURL, path, method string) *Request {
	return &Request{
		Method:  method,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Path:    path,
		Query:   url.Values{},
		Header:  http.Header{},
	}
}

// SetQueryParam replaces any previous value of name
func (r *Request) SetQueryParam(name, value string) {
	r.Query.Set(name, value)
}

// SetHeaderParam replaces any previous value of name
func (r *Request) SetHeaderParam(name, value string) {
	r.Header.Set(name, value)
}

// SetBody sets the body bytes and, when non-empty, the content type
func (r *Request) SetBody(contentType string, body []byte) {
	r.Body = body
	if contentType != "" {
		r.Header.Set(HeaderContentType, contentType)
	}
}

// URL returns the absolute request URL
func (r *Request) URL() string {
	u := r.BaseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u
}

// Clone returns a deep copy that middleware may modify freely
func (r *Request) Clone() *Request {
	c := *r
	c.Query = url.Values{}
	for k, v := range r.Query {
		c.Query[k] = append([]string(nil), v...)
	}
	c.Header = r.Header.Clone()
	if r.Body != nil {
		c.Body = bytes.Clone(r.Body)
	}
	return &c
}

// Equal reports whether two requests would put the same bytes on the wire
func (r *Request) Equal(o *Request) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.Method != o.Method || r.URL() != o.URL() || !bytes.Equal(r.Body, o.Body) {
		return false
	}
	if len(r.Header) != len(o.Header) {
		return false
	}
	for k, v := range r.Header {
		ov := o.Header[k]
		if len(v) != len(ov) {
			return false
		}
		for i := range v {
			if v[i] != ov[i] {
				return false
			}
		}
	}
	return true
}

// substitutePath replaces {name} placeholders with path-escaped values.
// Reserved characters, including '/', are escaped.
func substitutePath(pattern string, params map[string]string) string {
	out := pattern
	for name, value := range params {
		out = strings.ReplaceAll(out, "{"+name+"}", url.PathEscape(value))
	}
	return out
}
