// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LeeDigitalWorks/storageclient/pkg/storageapi"
	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

func strIs(s string) any {
	return mock.MatchedBy(func(p *string) bool { return p != nil && *p == s })
}

func intIs(n int) any {
	return mock.MatchedBy(func(p *int) bool { return p != nil && *p == n })
}

func TestDownloadFile(t *testing.T) {
	t.Parallel()

	c, api := newMockClient(t, Config{})
	api.On("FilesGet", mock.Anything, strIs("a.txt"), (*int)(nil), (*string)(nil), (*string)(nil), (*string)(nil)).
		Return(&types.HTTPFile{Name: "a.txt", ContentType: "text/plain", Data: []byte("hi")}, nil).Once()
	api.On("FilesGet", mock.Anything, strIs("dir"), (*int)(nil), (*string)(nil), (*string)(nil), (*string)(nil)).
		Return(&types.FilesGet206Response{List: &types.R2ObjectList{}}, nil).Once()
	notFound := &storageapi.APIError{StatusCode: http.StatusNotFound, Category: storageapi.CategoryNotFound}
	api.On("FilesGet", mock.Anything, strIs("gone"), (*int)(nil), (*string)(nil), (*string)(nil), (*string)(nil)).
		Return(nil, notFound).Once()

	file, err := c.DownloadFile(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(file.Data))

	_, err = c.DownloadFile(context.Background(), "dir")
	assert.ErrorIs(t, err, ErrNotAFile)

	_, err = c.DownloadFile(context.Background(), "gone")
	assert.True(t, storageapi.IsNotFound(err))

	_, err = c.DownloadFile(context.Background(), "/abs")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestFileMetadata(t *testing.T) {
	t.Parallel()

	uploaded := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c, api := newMockClient(t, Config{})
	api.On("FilesGet", mock.Anything, strIs("a.txt"), mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&types.HTTPFile{Name: "a.txt", ContentType: "text/plain", Data: []byte("hello")}, nil).Once()
	api.On("FilesGet", mock.Anything, strIs("b.bin"), mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&types.FilesGet206Response{Object: &types.R2Object{Key: "b.bin", Size: 9, ETag: "e", Uploaded: &uploaded}}, nil).Once()

	md, err := c.FileMetadata(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, &Metadata{Key: "a.txt", Name: "a.txt", ContentType: "text/plain", Size: 5}, md)

	md, err = c.FileMetadata(context.Background(), "b.bin")
	require.NoError(t, err)
	assert.Equal(t, &Metadata{Key: "b.bin", Name: "b.bin", Size: 9, ETag: "e", Uploaded: &uploaded}, md)
}

func TestSignedURL(t *testing.T) {
	t.Parallel()

	c, api := newMockClient(t, Config{BaseURL: "https://files.example.com/"})
	api.On("DownloadFileToken", mock.Anything, "reports/q1 2025.pdf").
		Return(&types.DownloadTokenResponse{Token: "a+b/c="}, nil).Once()
	api.On("DownloadFileToken", mock.Anything, "empty").
		Return(&types.DownloadTokenResponse{}, nil).Once()

	link, err := c.SignedURL(context.Background(), "reports/q1 2025.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/download/reports%2Fq1%202025.pdf?token=a%2Bb%2Fc%3D", link)

	_, err = c.SignedURL(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrUnexpectedResult)

	noBase, _ := newMockClient(t, Config{})
	_, err = noBase.SignedURL(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestListFilesLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit int
		ok    bool
	}{
		{limit: 0},
		{limit: -1},
		{limit: 1001},
		{limit: 1, ok: true},
		{limit: 1000, ok: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.limit), func(t *testing.T) {
			t.Parallel()
			c, api := newMockClient(t, Config{})
			if tt.ok {
				api.On("FilesGet", mock.Anything, (*string)(nil), intIs(tt.limit), (*string)(nil), (*string)(nil), (*string)(nil)).
					Return(&types.FilesGet206Response{List: &types.R2ObjectList{}}, nil).Once()
			}
			_, err := c.ListFiles(context.Background(), tt.limit, "")
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidLimit)
			}
		})
	}
}

func TestListAllFollowsCursor(t *testing.T) {
	t.Parallel()

	c, api := newMockClient(t, Config{})
	api.On("FilesGet", mock.Anything, (*string)(nil), intIs(2), (*string)(nil), (*string)(nil), (*string)(nil)).
		Return(&types.FilesGet206Response{List: &types.R2ObjectList{
			Objects:   []types.R2Object{{Key: "a"}, {Key: "b"}},
			Truncated: true,
			Cursor:    "c1",
		}}, nil).Once()
	api.On("FilesGet", mock.Anything, (*string)(nil), intIs(2), strIs("c1"), (*string)(nil), (*string)(nil)).
		Return(&types.FilesGet206Response{List: &types.R2ObjectList{
			Objects:   []types.R2Object{{Key: "c"}},
			Truncated: false,
		}}, nil).Once()

	var keys []string
	for obj, err := range c.ListAll(context.Background(), 2) {
		require.NoError(t, err)
		keys = append(keys, obj.Key)
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestListAllStopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	c, api := newMockClient(t, Config{})
	api.On("FilesGet", mock.Anything, (*string)(nil), intIs(10), (*string)(nil), (*string)(nil), (*string)(nil)).
		Return(nil, boom).Once()

	var errs []error
	for _, err := range c.ListAll(context.Background(), 10) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
}

func TestListAllEarlyBreak(t *testing.T) {
	t.Parallel()

	c, api := newMockClient(t, Config{})
	api.On("FilesGet", mock.Anything, (*string)(nil), intIs(5), (*string)(nil), (*string)(nil), (*string)(nil)).
		Return(&types.FilesGet206Response{List: &types.R2ObjectList{
			Objects:   []types.R2Object{{Key: "a"}, {Key: "b"}},
			Truncated: true,
			Cursor:    "next",
		}}, nil).Once()

	for obj, err := range c.ListAll(context.Background(), 5) {
		require.NoError(t, err)
		assert.Equal(t, "a", obj.Key)
		break
	}
}
