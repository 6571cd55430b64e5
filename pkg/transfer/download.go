// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strings"
	"time"

	"github.com/LeeDigitalWorks/storageclient/pkg/logger"
	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

var ErrNoBaseURL = errors.New("signed urls need a base url")

// DownloadFile fetches the content stored under key
func (c *Client) DownloadFile(ctx context.Context, key string) (file *types.HTTPFile, err error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	start := c.now()
	defer func() {
		c.metrics.finished("download", start, err)
	}()

	res, err := c.api.FilesGet(ctx, &key, nil, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	file, ok := res.(*types.HTTPFile)
	if !ok {
		return nil, fmt.Errorf("download %s: %w", key, ErrNotAFile)
	}
	c.metrics.moved("download", file.Size())
	return file, nil
}

// Metadata is what the service reports about a stored file
type Metadata struct {
	Key         string
	Name        string
	ContentType string
	Size        int64
	ETag        string
	Uploaded    *time.Time
}

// FileMetadata fetches key and describes it. A structured object answer is
// used as is; a file answer is described from its headers and length.
func (c *Client) FileMetadata(ctx context.Context, key string) (*Metadata, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	res, err := c.api.FilesGet(ctx, &key, nil, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	switch v := res.(type) {
	case *types.HTTPFile:
		return &Metadata{Key: key, Name: v.Name, ContentType: v.ContentType, Size: v.Size()}, nil
	case *types.FilesGet206Response:
		if v.Object != nil {
			return &Metadata{
				Key:      key,
				Name:     v.Object.Key,
				Size:     v.Object.Size,
				ETag:     v.Object.ETag,
				Uploaded: v.Object.Uploaded,
			}, nil
		}
	}
	return nil, fmt.Errorf("stat %s: %w", key, ErrNotAFile)
}

// SignedURL mints a single-use download token for key and returns a link
// that downloads it without an API key. Tokens expire on the server after a
// few minutes and are never reused.
func (c *Client) SignedURL(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if c.cfg.BaseURL == "" {
		return "", ErrNoBaseURL
	}
	tok, err := c.api.DownloadFileToken(ctx, key)
	if err != nil {
		return "", fmt.Errorf("download token %s: %w", key, err)
	}
	if tok == nil || tok.Token == "" {
		return "", fmt.Errorf("download token %s: %w", key, ErrUnexpectedResult)
	}
	return SignedURL(c.cfg.BaseURL, key, tok.Token), nil
}

// SignedURL formats a token download link
func SignedURL(baseURL, key, token string) string {
	return strings.TrimRight(baseURL, "/") + "/download/" + url.PathEscape(key) + "?token=" + url.QueryEscape(token)
}

// ListFiles returns one page of at most limit objects starting at cursor
func (c *Client) ListFiles(ctx context.Context, limit int, cursor string) (*types.R2ObjectList, error) {
	if limit < MinListLimit || limit > MaxListLimit {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	var cur *string
	if cursor != "" {
		cur = &cursor
	}
	res, err := c.api.FilesGet(ctx, nil, &limit, cur, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	page, ok := res.(*types.FilesGet206Response)
	if !ok || page.List == nil {
		return nil, fmt.Errorf("list files: %w", ErrUnexpectedResult)
	}
	return page.List, nil
}

// ListAll yields every object, fetching pages of pageSize until the listing
// is no longer truncated. Iteration stops after the first error.
func (c *Client) ListAll(ctx context.Context, pageSize int) iter.Seq2[types.R2Object, error] {
	return func(yield func(types.R2Object, error) bool) {
		cursor := ""
		for page := 1; ; page++ {
			list, err := c.ListFiles(ctx, pageSize, cursor)
			if err != nil {
				yield(types.R2Object{}, err)
				return
			}
			logger.Ctx(ctx).Debug().
				Int("page", page).
				Int("objects", len(list.Objects)).
				Bool("truncated", list.Truncated).
				Msg("listed page")
			for _, obj := range list.Objects {
				if !yield(obj, nil) {
					return
				}
			}
			if !list.HasMore() || list.Cursor == cursor {
				return
			}
			cursor = list.Cursor
		}
	}
}
