package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache defines a generic cache interface
type Cache[K ristretto.Key, V any] interface {
	// Get retrieves a value from the cache
	Get(key K) (V, bool)

	// Set stores a value in the cache
	Set(key K, value V)

	// Delete removes a key from the cache
	Delete(key K)
}

// TTLCache is a cost-bounded cache whose entries expire after a fixed TTL.
// Writes become visible to Get once ristretto's buffers drain; Set waits
// for that so a Get right after a Set sees the value.
type TTLCache[K ristretto.Key, V any] struct {
	store *ristretto.Cache[K, V]
	ttl   time.Duration
	cost  func(V) int64
}

// Config sizes a TTLCache. MaxCost is in the units returned by Cost; a nil
// Cost counts every entry as 1.
type Config[V any] struct {
	MaxCost int64
	TTL     time.Duration
	Cost    func(V) int64
}

func NewTTLCache[K ristretto.Key, V any](cfg Config[V]) (*TTLCache[K, V], error) {
	if cfg.MaxCost < 1 {
		cfg.MaxCost = 1 << 10
	}
	if cfg.Cost == nil {
		cfg.Cost = func(V) int64 { return 1 }
	}
	store, err := ristretto.NewCache(&ristretto.Config[K, V]{
		NumCounters: max(cfg.MaxCost*10, 1000),
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &TTLCache[K, V]{store: store, ttl: cfg.TTL, cost: cfg.Cost}, nil
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	return c.store.Get(key)
}

func (c *TTLCache[K, V]) Set(key K, value V) {
	if c.store.SetWithTTL(key, value, c.cost(value), c.ttl) {
		c.store.Wait()
	}
}

func (c *TTLCache[K, V]) Delete(key K) {
	c.store.Del(key)
}

// Close stops ristretto's background goroutines.
func (c *TTLCache[K, V]) Close() {
	c.store.Close()
}

var _ Cache[string, int] = (*TTLCache[string, int])(nil)
