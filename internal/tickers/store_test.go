package tickers

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	mintBONK = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use different DB for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Test connection
	err := client.Ping(ctx).Err()
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	// Clear test DB
	err = client.FlushDB(ctx).Err()
	require.NoError(t, err)

	return client
}

func cleanupTestRedis(_ *testing.T, client *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = client.FlushDB(ctx).Err()
	_ = client.Close()
}

func TestStore_Upsert(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	// Test setting a new ticker
	ticker, err := store.Upsert(ctx, mintUSDC, "USDC", 6)
	assert.NoError(t, err)
	assert.NotNil(t, ticker)
	assert.Equal(t, mintUSDC, ticker.Mint)
	assert.Equal(t, "USDC", ticker.Symbol)
	assert.NotZero(t, ticker.UpdatedAt)

	// Verify ticker was set
	retrieved, err := store.Get(ctx, mintUSDC)
	assert.NoError(t, err)
	assert.Equal(t, ticker.Symbol, retrieved.Symbol)
	assert.Equal(t, ticker.Decimals, retrieved.Decimals)

	// Test updating existing ticker
	time.Sleep(time.Millisecond) // Ensure different timestamp
	ticker2, err := store.Upsert(ctx, mintUSDC, "USD Coin", 6)
	assert.NoError(t, err)
	assert.True(t, ticker2.UpdatedAt.After(ticker.UpdatedAt))

	retrieved, err = store.Get(ctx, mintUSDC)
	assert.NoError(t, err)
	assert.Equal(t, "USD Coin", retrieved.Symbol)
}

func TestStore_Get(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	// Test getting non-existent ticker
	ticker, err := store.Get(ctx, mintBONK)
	assert.Error(t, err)
	assert.Equal(t, ErrNotFound, err)
	assert.Nil(t, ticker)

	// Set a ticker first
	_, err = store.Upsert(ctx, mintBONK, "BONK", 5)
	require.NoError(t, err)

	ticker, err = store.Get(ctx, mintBONK)
	assert.NoError(t, err)
	assert.NotNil(t, ticker)
	assert.Equal(t, "BONK", ticker.Symbol)
	assert.Equal(t, 5, ticker.Decimals)
}

func TestStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = store.Upsert(ctx, mintUSDC, "USDC", 6)
	require.NoError(t, err)

	err = store.Delete(ctx, mintUSDC)
	assert.NoError(t, err)

	_, err = store.Get(ctx, mintUSDC)
	assert.Error(t, err)
	assert.Equal(t, ErrNotFound, err)

	// Deleting a non-existent ticker should not error
	err = store.Delete(ctx, mintBONK)
	assert.NoError(t, err)
}

func TestStore_List(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	// Test empty list
	items, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, items)

	symbols := map[string]string{
		mintUSDC: "USDC",
		mintBONK: "BONK",
	}
	for mint, symbol := range symbols {
		_, err := store.Upsert(ctx, mint, symbol, 6)
		require.NoError(t, err)
	}

	items, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, items, 2)

	got := make(map[string]string)
	for _, item := range items {
		got[item.Mint] = item.Symbol
	}
	assert.Equal(t, symbols, got)
}

func TestStore_InvalidMints(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	invalidMints := []string{
		"",
		"tooshort",
		"0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", // characters outside base58
		"contains spaces aaaaaaaaaaaaaaaaaa",
	}

	for _, mint := range invalidMints {
		_, err := store.Upsert(ctx, mint, "X", 0)
		assert.Error(t, err, "Mint %q should be invalid", mint)
	}

	// Symbol is required
	_, err = store.Upsert(ctx, mintUSDC, "", 6)
	assert.Error(t, err)
}

func TestResolverFallback(t *testing.T) {
	resolver := NewResolver(nil)

	// Static table hit
	assert.Equal(t, "USDC", resolver.Symbol(mintUSDC))

	// Unknown mint falls back to the shortened form
	unknown := "9n4nbM75f5Ui33ZbPYXn59EwSgE8CGsHtAeTH5YFeJ9E"
	assert.Equal(t, "9n4n...eJ9E", resolver.Symbol(unknown))
}
