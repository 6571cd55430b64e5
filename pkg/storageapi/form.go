// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/minio/sha256-simd"

	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

const (
	MediaTypeJSON          = "application/json"
	MediaTypeMultipartForm = "multipart/form-data"
	MediaTypeURLEncoded    = "application/x-www-form-urlencoded"
	MediaTypeOctetStream   = "application/octet-stream"
)

// formField is one named value of a form body. Exactly one of Value or File is used.
type formField struct {
	Name  string
	Value string
	File  *types.HTTPFile
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// formBoundary derives the multipart boundary from the field contents so that
// equal field sets encode to equal bytes.
func formBoundary(fields []formField) string {
	h := sha256.New()
	for _, f := range fields {
		h.Write([]byte(f.Name))
		h.Write([]byte{0})
		if f.File != nil {
			h.Write([]byte(f.File.Name))
			h.Write([]byte{0})
			h.Write([]byte(f.File.ContentType))
			h.Write([]byte{0})
			h.Write(f.File.Data)
		} else {
			h.Write([]byte(f.Value))
		}
		h.Write([]byte{0})
	}
	return "storageclient" + hex.EncodeToString(h.Sum(nil)[:16])
}

func encodeMultipartForm(fields []formField) (string, []byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(formBoundary(fields)); err != nil {
		return "", nil, err
	}
	for _, f := range fields {
		if f.File == nil {
			if err := w.WriteField(f.Name, f.Value); err != nil {
				return "", nil, fmt.Errorf("write field %s: %w", f.Name, err)
			}
			continue
		}
		contentType := f.File.ContentType
		if contentType == "" {
			contentType = MediaTypeOctetStream
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.Name), quoteEscaper.Replace(f.File.Name)))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return "", nil, fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.File.Data); err != nil {
			return "", nil, fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), buf.Bytes(), nil
}

// encodeURLForm packs the same field set as encodeMultipartForm. File content
// travels as its raw bytes.
func encodeURLForm(fields []formField) (string, []byte) {
	values := url.Values{}
	for _, f := range fields {
		if f.File != nil {
			values.Set(f.Name, string(f.File.Data))
			continue
		}
		values.Set(f.Name, f.Value)
	}
	return MediaTypeURLEncoded, []byte(values.Encode())
}
