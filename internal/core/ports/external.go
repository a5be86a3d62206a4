package ports

import (
	"context"
	"time"
)

// ObjectStorage keeps puzzle images. Put returns the public location of the
// stored object.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteMany(ctx context.Context, keys []string) error
}

// Cache is a best-effort key-value store. Implementations report a miss as
// (nil, false, nil); the core stays correct when every call is a no-op.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NoopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NoopCache) Delete(context.Context, ...string) error                  { return nil }
