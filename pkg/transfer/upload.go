// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LeeDigitalWorks/storageclient/pkg/logger"
	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

var ErrTooLarge = fmt.Errorf("body exceeds the %d byte PUT limit", MaxPutSize)

// UploadResult describes a stored object
type UploadResult struct {
	Key  string
	Size int64
	ETag string
	// UploadID and Parts are set for multipart uploads
	UploadID string
	Parts    int
	Object   *types.R2Object
}

// UploadFile stores everything read from r under key. Bodies up to PartSize
// go in one PUT; larger bodies use a multipart upload. An empty visibility
// leaves the service default.
func (c *Client) UploadFile(ctx context.Context, r io.Reader, key string, visibility types.Visibility, mimeType string) (res *UploadResult, err error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	var vis *types.Visibility
	if visibility != "" {
		if !visibility.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVisibility, visibility)
		}
		vis = &visibility
	}

	start := c.now()
	defer func() {
		c.metrics.finished("upload", start, err)
	}()

	first, err := readChunk(r, c.cfg.PartSize)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	second, err := readChunk(r, c.cfg.PartSize)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if len(second) == 0 {
		return c.putObject(ctx, first, key, vis, mimeType)
	}
	return c.uploadMultipart(ctx, r, [][]byte{first, second}, key, vis, mimeType)
}

// readChunk reads up to size bytes. An empty chunk means r is exhausted.
func readChunk(r io.Reader, size int64) ([]byte, error) {
	buf := make([]byte, size)
	n, err := io.ReadFull(r, buf)
	switch {
	case err == nil, errors.Is(err, io.ErrUnexpectedEOF):
		return buf[:n], nil
	case errors.Is(err, io.EOF):
		return nil, nil
	default:
		return nil, err
	}
}

func (c *Client) putObject(ctx context.Context, data []byte, key string, vis *types.Visibility, mimeType string) (*UploadResult, error) {
	if len(data) > MaxPutSize {
		return nil, ErrTooLarge
	}
	res, err := c.api.FilesPut(ctx, &types.HTTPFile{Name: key, ContentType: mimeType, Data: data}, key, nil, nil, vis)
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", key, err)
	}
	obj, ok := res.(*types.R2Object)
	if !ok {
		return nil, fmt.Errorf("put %s: %w: %T", key, ErrUnexpectedResult, res)
	}
	c.metrics.moved("upload", int64(len(data)))

	logger.Ctx(ctx).Debug().Str("key", key).Int("size", len(data)).Msg("uploaded object")
	return &UploadResult{Key: key, Size: int64(len(data)), ETag: obj.ETag, Object: obj}, nil
}

func (c *Client) uploadMultipart(ctx context.Context, r io.Reader, head [][]byte, key string, vis *types.Visibility, mimeType string) (*UploadResult, error) {
	started, err := c.api.FilesPost(ctx, &types.FilesPostRequest{Key: key, Visibility: vis}, nil)
	if err != nil {
		return nil, fmt.Errorf("start multipart upload %s: %w", key, err)
	}
	if started == nil || started.Upload == nil {
		return nil, fmt.Errorf("start multipart upload %s: %w", key, ErrUnexpectedResult)
	}
	uploadID := started.Upload.UploadID
	log := logger.Ctx(ctx).With().Str("key", key).Str("upload_id", uploadID).Logger()
	log.Debug().Msg("multipart upload started")

	var (
		mu    sync.Mutex
		parts []types.R2UploadedPartBody
		size  int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	next := func() ([]byte, error) {
		if len(head) > 0 {
			chunk := head[0]
			head = head[1:]
			return chunk, nil
		}
		return readChunk(r, c.cfg.PartSize)
	}

	var readErr error
	for partNumber := 1; ; partNumber++ {
		chunk, err := next()
		if err != nil {
			readErr = fmt.Errorf("read %s: %w", key, err)
			break
		}
		if len(chunk) == 0 {
			break
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(gctx); err != nil {
				readErr = err
				break
			}
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			etag, err := c.uploadPart(gctx, chunk, key, uploadID, partNumber, vis, mimeType)
			c.metrics.part(err)
			if err != nil {
				return fmt.Errorf("part %d: %w", partNumber, err)
			}
			mu.Lock()
			parts = append(parts, types.R2UploadedPartBody{ETag: etag, PartNumber: partNumber})
			size += int64(len(chunk))
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("multipart upload failed")
		return nil, fmt.Errorf("multipart upload %s: %w", key, err)
	}
	if readErr != nil {
		return nil, readErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(parts, func(a, b types.R2UploadedPartBody) int {
		return cmp.Compare(a.PartNumber, b.PartNumber)
	})

	done, err := c.api.FilesPost(ctx, &types.FilesPostRequest{Key: key, Visibility: vis, Parts: parts}, &uploadID)
	if err != nil {
		return nil, fmt.Errorf("complete multipart upload %s: %w", key, err)
	}
	res := &UploadResult{Key: key, Size: size, UploadID: uploadID, Parts: len(parts)}
	if done != nil && done.Object != nil {
		res.Object = done.Object
		res.ETag = done.Object.ETag
	}

	log.Info().Int("parts", len(parts)).Int64("size", size).Msg("multipart upload completed")
	return res, nil
}

// uploadPart sends one part with retries and returns its etag
func (c *Client) uploadPart(ctx context.Context, data []byte, key, uploadID string, partNumber int, vis *types.Visibility, mimeType string) (string, error) {
	if len(data) > MaxPutSize {
		return "", ErrTooLarge
	}
	var etag string
	err := c.retry(ctx, "upload_part", func(ctx context.Context) error {
		attemptStart := time.Now()
		res, err := c.api.FilesPut(ctx, &types.HTTPFile{Name: key, ContentType: mimeType, Data: data}, key, &uploadID, &partNumber, vis)
		if err != nil {
			return err
		}
		switch v := res.(type) {
		case *types.R2UploadedPart:
			etag = v.ETag
		case *types.R2Object:
			etag = v.ETag
		}
		if etag == "" {
			return fmt.Errorf("%w: part without etag", ErrUnexpectedResult)
		}
		logger.Ctx(ctx).Debug().
			Str("key", key).
			Int("part", partNumber).
			Dur("took", time.Since(attemptStart)).
			Msg("uploaded part")
		return nil
	})
	if err == nil {
		c.metrics.moved("upload", int64(len(data)))
	}
	return etag, err
}
