// Package storage stores raw file content. Metadata lives in the database;
// blobs are addressed by an opaque key that never changes on rename.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrBlobNotFound is returned by Open when no blob exists for the key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore writes content once under a key and reads it back as a stream.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob; deleting a missing blob is not an error.
	Delete(ctx context.Context, key string) error
}

const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Dir      string
	Bucket   string
	Region   string
	Endpoint string
	Prefix   string
}

func New(ctx context.Context, opts Options) (BlobStore, error) {
	switch opts.Backend {
	case "", BackendLocal:
		return NewLocalStore(opts.Dir)
	case BackendS3:
		if opts.Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET required for s3 storage")
		}
		return NewS3Store(ctx, opts.Bucket, opts.Region, opts.Endpoint, opts.Prefix)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
