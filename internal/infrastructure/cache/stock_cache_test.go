package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posline/internal/core/id"
)

type fakeLookup struct {
	calls     int
	available decimal.Decimal
}

func (f *fakeLookup) Available(_ context.Context, _ id.ID) (decimal.Decimal, error) {
	f.calls++
	return f.available, nil
}

func TestStockCache_ServesFromCache(t *testing.T) {
	source := &fakeLookup{available: decimal.NewFromInt(10)}
	c := NewStockCache(source, time.Minute)
	productID := id.New()

	got, err := c.Available(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(10)))

	source.available = decimal.NewFromInt(3)
	got, err = c.Available(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(10)), "second read should hit the cache")
	assert.Equal(t, 1, source.calls)
}

func TestStockCache_InvalidateForcesRefresh(t *testing.T) {
	source := &fakeLookup{available: decimal.NewFromInt(10)}
	c := NewStockCache(source, time.Minute)
	productID := id.New()

	_, err := c.Available(context.Background(), productID)
	require.NoError(t, err)

	source.available = decimal.NewFromInt(4)
	c.Invalidate(productID)

	got, err := c.Available(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, 2, source.calls)
}

func TestStockCache_ExpiredEntryRefreshes(t *testing.T) {
	source := &fakeLookup{available: decimal.NewFromInt(10)}
	c := NewStockCache(source, time.Nanosecond)
	productID := id.New()

	_, err := c.Available(context.Background(), productID)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	source.available = decimal.NewFromInt(7)

	got, err := c.Available(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(7)))
}

func TestStockCache_InvalidateAll(t *testing.T) {
	source := &fakeLookup{available: decimal.NewFromInt(1)}
	c := NewStockCache(source, time.Minute)

	_, err := c.Available(context.Background(), id.New())
	require.NoError(t, err)
	_, err = c.Available(context.Background(), id.New())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c.InvalidateAll()
	assert.Equal(t, 0, c.Len())
}
