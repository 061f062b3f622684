package model

import (
	"context"
	"io"
)

// ObjectStorage is a bucket-scoped blob store.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}
