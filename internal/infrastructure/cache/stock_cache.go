// Package cache provides in-process caching infrastructure.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"posline/internal/core/id"
	"posline/internal/domain/stock"
	"posline/pkg/logger"
)

// DefaultStockTTL bounds how stale a cached stock figure may get when
// another terminal changes stock without notifying this process.
const DefaultStockTTL = 30 * time.Second

type stockEntry struct {
	available decimal.Decimal
	expiresAt time.Time
}

// StockCache wraps a stock.Lookup with a TTL cache. Entries are
// dropped eagerly when a document save, update or delete touches the
// product, and lazily when their deadline passes. Pre-submit
// validation must use the underlying lookup directly.
type StockCache struct {
	source stock.Lookup
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[id.ID]stockEntry
}

var (
	_ stock.Lookup           = (*StockCache)(nil)
	_ stock.CacheInvalidator = (*StockCache)(nil)
)

// NewStockCache creates a stock cache over source. A non-positive ttl
// falls back to DefaultStockTTL.
func NewStockCache(source stock.Lookup, ttl time.Duration) *StockCache {
	if ttl <= 0 {
		ttl = DefaultStockTTL
	}
	return &StockCache{
		source:  source,
		ttl:     ttl,
		entries: make(map[id.ID]stockEntry),
	}
}

// Available returns the cached on-hand quantity for the product,
// consulting the source on a miss or an expired entry.
func (c *StockCache) Available(ctx context.Context, productID id.ID) (decimal.Decimal, error) {
	c.mu.RLock()
	entry, ok := c.entries[productID]
	c.mu.RUnlock()

	if ok && time.Now().Before(entry.expiresAt) {
		return entry.available, nil
	}

	available, err := c.source.Available(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}

	c.mu.Lock()
	c.entries[productID] = stockEntry{
		available: available,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()

	logger.Debug(ctx, "stock cache refreshed",
		"product_id", productID.String(),
		"available", available.String())

	return available, nil
}

// Invalidate drops the cached figure for the product.
func (c *StockCache) Invalidate(productID id.ID) {
	c.mu.Lock()
	delete(c.entries, productID)
	c.mu.Unlock()
}

// InvalidateAll drops every cached figure.
func (c *StockCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[id.ID]stockEntry)
	c.mu.Unlock()
}

// Len reports the number of cached entries, expired ones included.
func (c *StockCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
