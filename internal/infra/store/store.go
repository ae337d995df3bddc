// Package store provides the persistent key-value backends task records
// live in. One contract, three implementations: sqlite for a durable
// single node, redis for shared deployments, memory for tests and dev.
package store

import (
	"context"
	"errors"
)

// ErrNotFound reports a Get for a key with no record.
var ErrNotFound = errors.New("store: key not found")

// KV is the persistence contract the tracker depends on. Implementations
// must be safe for concurrent use. Get of an absent key fails with
// ErrNotFound; Delete of an absent key is a success; Keys returns every
// stored key beginning with prefix, in no guaranteed order.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
