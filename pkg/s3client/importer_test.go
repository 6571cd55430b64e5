// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package s3client

import (
	"context"
	"errors"
	"io"
	"iter"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeeDigitalWorks/storageclient/pkg/transfer"
	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

type memSource struct {
	objects map[string]string
	listErr error
}

func (m *memSource) Objects(_ context.Context, prefix string) iter.Seq2[Object, error] {
	return func(yield func(Object, error) bool) {
		keys := make([]string, 0, len(m.objects))
		for k := range m.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !yield(Object{Key: k, Size: int64(len(m.objects[k]))}, nil) {
				return
			}
		}
		if m.listErr != nil {
			yield(Object{}, m.listErr)
		}
	}
}

func (m *memSource) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, "", errors.New("no such key")
	}
	return io.NopCloser(strings.NewReader(data)), "text/plain", nil
}

type recordingUploader struct {
	mu      sync.Mutex
	stored  map[string]string
	failKey string
}

func (r *recordingUploader) UploadFile(_ context.Context, body io.Reader, key string, _ types.Visibility, _ string) (*transfer.UploadResult, error) {
	if key == r.failKey {
		return nil, errors.New("upload refused")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored[key] = string(data)
	return &transfer.UploadResult{Key: key, Size: int64(len(data))}, nil
}

func TestDestinationKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		opts ImportOptions
		want string
	}{
		{name: "as is", key: "a/b.txt", want: "a/b.txt"},
		{name: "dest prefix", key: "a/b.txt", opts: ImportOptions{DestPrefix: "backup/"}, want: "backup/a/b.txt"},
		{name: "strip", key: "a/b.txt", opts: ImportOptions{Prefix: "a/", StripPrefix: true}, want: "b.txt"},
		{name: "leading slash", key: "/x", want: "x"},
		{name: "prefix itself", key: "a/", opts: ImportOptions{Prefix: "a/", StripPrefix: true}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DestinationKey(tt.key, tt.opts))
		})
	}
}

func TestImporterRun(t *testing.T) {
	t.Parallel()

	src := &memSource{objects: map[string]string{"docs/a": "one", "docs/b": "three", "other/c": "x"}}
	up := &recordingUploader{stored: map[string]string{}}

	stats, err := NewImporter(src, up).Run(context.Background(), ImportOptions{
		Prefix:      "docs/",
		DestPrefix:  "archive/",
		StripPrefix: true,
		Concurrency: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, &ImportStats{Objects: 2, Bytes: 8}, stats)
	assert.Equal(t, map[string]string{"archive/a": "one", "archive/b": "three"}, up.stored)
}

func TestImporterFailures(t *testing.T) {
	t.Parallel()

	src := &memSource{objects: map[string]string{"a": "1", "b": "22", "c": "333"}}

	t.Run("stop on first error", func(t *testing.T) {
		t.Parallel()
		up := &recordingUploader{stored: map[string]string{}, failKey: "a"}
		stats, err := NewImporter(src, up).Run(context.Background(), ImportOptions{Concurrency: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upload refused")
		assert.Equal(t, int64(1), stats.Failed)
	})

	t.Run("continue on error", func(t *testing.T) {
		t.Parallel()
		up := &recordingUploader{stored: map[string]string{}, failKey: "b"}
		stats, err := NewImporter(src, up).Run(context.Background(), ImportOptions{Concurrency: 3, ContinueOnError: true})
		require.Error(t, err)
		assert.Equal(t, &ImportStats{Objects: 2, Bytes: 4, Failed: 1}, stats)
		assert.Len(t, up.stored, 2)
	})

	t.Run("list error", func(t *testing.T) {
		t.Parallel()
		listErr := errors.New("access denied")
		up := &recordingUploader{stored: map[string]string{}}
		_, err := NewImporter(&memSource{objects: map[string]string{}, listErr: listErr}, up).Run(context.Background(), ImportOptions{})
		assert.ErrorIs(t, err, listErr)
	})
}

func TestImporterDryRun(t *testing.T) {
	t.Parallel()

	src := &memSource{objects: map[string]string{"a": "1", "b": "22"}}
	up := &recordingUploader{stored: map[string]string{}}
	stats, err := NewImporter(src, up).Run(context.Background(), ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Objects)
	assert.Equal(t, int64(3), stats.Bytes)
	assert.Empty(t, up.stored)
}
