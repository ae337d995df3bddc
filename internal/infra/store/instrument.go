package store

import (
	"context"
	"errors"
	"time"

	"github.com/berth-cluster/berth/internal/infra/metrics"
)

// Instrumented wraps a KV so every operation lands in the Prometheus
// collectors. The tracker stays oblivious; observability is layered
// around the store, not into it.
type Instrumented struct {
	next KV
}

// Instrument wraps next with latency and failure recording.
func Instrument(next KV) *Instrumented {
	return &Instrumented{next: next}
}

func observe(op string, start time.Time, err error) {
	metrics.StoreOpLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.StoreOpFailures.WithLabelValues(op).Inc()
	}
}

func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := i.next.Get(ctx, key)
	observe("get", start, err)
	return value, err
}

func (i *Instrumented) Put(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := i.next.Put(ctx, key, value)
	observe("put", start, err)
	return err
}

func (i *Instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Delete(ctx, key)
	observe("delete", start, err)
	return err
}

func (i *Instrumented) Keys(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := i.next.Keys(ctx, prefix)
	observe("keys", start, err)
	return keys, err
}

func (i *Instrumented) Ping(ctx context.Context) error {
	return i.next.Ping(ctx)
}

func (i *Instrumented) Close() error {
	return i.next.Close()
}
