// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"encoding/json"
	"fmt"
	"mime"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// normalizeMediaType lower-cases the media type and strips its parameters
func normalizeMediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

func isJSONMediaType(mediaType string) bool {
	return mediaType == MediaTypeJSON || strings.HasSuffix(mediaType, "+json")
}

func charsetOf(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// decodeText converts body bytes to a string using the charset parameter of
// contentType. Missing or UTF-8 charsets pass the bytes through unchanged.
func decodeText(body []byte, contentType string) (string, error) {
	cs := strings.ToLower(charsetOf(contentType))
	if cs == "" || cs == "utf-8" || cs == "utf8" {
		if !utf8.Valid(body) {
			return "", fmt.Errorf("body is not valid utf-8")
		}
		return string(body), nil
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", cs, err)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode %s body: %w", cs, err)
	}
	return string(out), nil
}

// parseStructured parses text of the given media type into v
func parseStructured(text, mediaType string, v any) error {
	if !isJSONMediaType(mediaType) {
		return fmt.Errorf("unsupported media type %q", mediaType)
	}
	return json.Unmarshal([]byte(text), v)
}

// statusMatches reports whether code satisfies pattern: an exact code such as
// "206" or a class such as "2XX".
func statusMatches(pattern string, code int) bool {
	if len(pattern) == 3 && strings.EqualFold(pattern[1:], "XX") {
		class := int(pattern[0] - '0')
		return code/100 == class
	}
	n, err := strconv.Atoi(pattern)
	return err == nil && n == code
}

func formatInt(n int) string {
	return strconv.Itoa(n)
}
