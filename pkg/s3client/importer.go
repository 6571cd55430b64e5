// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package s3client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/LeeDigitalWorks/storageclient/pkg/logger"
	"github.com/LeeDigitalWorks/storageclient/pkg/transfer"
	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

// ObjectSource is implemented by *Source
type ObjectSource interface {
	Objects(ctx context.Context, prefix string) iter.Seq2[Object, error]
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// Uploader is implemented by *transfer.Client
type Uploader interface {
	UploadFile(ctx context.Context, r io.Reader, key string, visibility types.Visibility, mimeType string) (*transfer.UploadResult, error)
}

var (
	_ ObjectSource = (*Source)(nil)
	_ Uploader     = (*transfer.Client)(nil)
)

// ImportOptions controls how source keys map to destination keys
type ImportOptions struct {
	// Prefix selects source objects
	Prefix string
	// DestPrefix is prepended to every destination key
	DestPrefix string
	// StripPrefix removes Prefix from keys before DestPrefix is added
	StripPrefix     bool
	Visibility      types.Visibility
	Concurrency     int
	ContinueOnError bool
	DryRun          bool
}

// ImportStats summarises an import
type ImportStats struct {
	Objects int64
	Bytes   int64
	Failed  int64
	Skipped int64
}

// Importer copies objects from an S3 source into the storage service
type Importer struct {
	src ObjectSource
	up  Uploader
}

func NewImporter(src ObjectSource, up Uploader) *Importer {
	return &Importer{src: src, up: up}
}

// DestinationKey maps a source key to the key it is stored under
func DestinationKey(key string, opts ImportOptions) string {
	if opts.StripPrefix {
		key = strings.TrimPrefix(key, opts.Prefix)
	}
	return strings.TrimLeft(opts.DestPrefix+key, "/")
}

// Run copies every object under opts.Prefix. Without ContinueOnError the
// first failure stops the import.
func (im *Importer) Run(ctx context.Context, opts ImportOptions) (*ImportStats, error) {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	var (
		objects, bytes, failed, skipped atomic.Int64
		errsMu                          sync.Mutex
		errs                            []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for obj, err := range im.src.Objects(gctx, opts.Prefix) {
		if err != nil {
			g.Go(func() error { return err })
			break
		}
		dest := DestinationKey(obj.Key, opts)
		if dest == "" {
			skipped.Add(1)
			continue
		}
		if opts.DryRun {
			logger.Ctx(ctx).Info().Str("source", obj.Key).Str("dest", dest).Msg("would import")
			objects.Add(1)
			bytes.Add(obj.Size)
			continue
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			n, err := im.copyOne(gctx, obj.Key, dest, opts.Visibility)
			if err == nil {
				objects.Add(1)
				bytes.Add(n)
				return nil
			}
			failed.Add(1)
			if !opts.ContinueOnError {
				return err
			}
			logger.Ctx(ctx).Warn().Err(err).Str("source", obj.Key).Msg("import failed")
			errsMu.Lock()
			errs = append(errs, err)
			errsMu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	stats := &ImportStats{
		Objects: objects.Load(),
		Bytes:   bytes.Load(),
		Failed:  failed.Load(),
		Skipped: skipped.Load(),
	}
	if err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, errors.Join(errs...)
}

func (im *Importer) copyOne(ctx context.Context, key, dest string, vis types.Visibility) (int64, error) {
	body, contentType, err := im.src.Open(ctx, key)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	res, err := im.up.UploadFile(ctx, body, dest, vis, contentType)
	if err != nil {
		return 0, fmt.Errorf("import %s as %s: %w", key, dest, err)
	}
	logger.Ctx(ctx).Debug().Str("source", key).Str("dest", dest).Int64("size", res.Size).Msg("imported object")
	return res.Size, nil
}
