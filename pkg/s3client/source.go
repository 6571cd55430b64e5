// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package s3client

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Object is one listed source object
type Object struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// Source lists and reads objects of one bucket
type Source struct {
	client *s3.Client
	bucket string
}

func NewSource(client *s3.Client, bucket string) *Source {
	return &Source{client: client, bucket: bucket}
}

func (s *Source) Bucket() string {
	return s.bucket
}

// Objects yields every object under prefix, following continuation tokens.
// Keys ending in "/" are directory markers and are skipped.
func (s *Source) Objects(ctx context.Context, prefix string) iter.Seq2[Object, error] {
	return func(yield func(Object, error) bool) {
		paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(prefix),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(Object{}, fmt.Errorf("list s3://%s/%s: %w", s.bucket, prefix, err))
				return
			}
			for _, obj := range page.Contents {
				key := aws.ToString(obj.Key)
				if strings.HasSuffix(key, "/") {
					continue
				}
				o := Object{
					Key:  key,
					Size: aws.ToInt64(obj.Size),
					ETag: strings.Trim(aws.ToString(obj.ETag), `"`),
				}
				if obj.LastModified != nil {
					o.LastModified = *obj.LastModified
				}
				if !yield(o, nil) {
					return
				}
			}
		}
	}
}

// Open returns the body and content type of key. The caller closes the body.
func (s *Source) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	return out.Body, aws.ToString(out.ContentType), nil
}
