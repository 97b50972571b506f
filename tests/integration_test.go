package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/cache"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/config"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/models"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/server"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/tickers"
)

const (
	testAPIAddr = ":8091"
	testAPIKey  = "test-api-key-integration"
	testMint    = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func setupIntegrationTest(t *testing.T) (*server.Server, *redis.Client, func()) {
	// Check if Redis is available
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   2, // Use different DB for integration tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	// Clear test DB
	_ = redisClient.FlushDB(ctx).Err()

	// Create test configuration
	cfg := &config.Config{
		APIAddr: testAPIAddr,
		APIKey:  testAPIKey,
		DevMode: true,
	}

	// Initialize row cache and ticker store
	logger := logrus.New()
	rowCache := cache.NewRedisCacheFromClient(redisClient, logger)
	tickerStore, err := tickers.NewStore(redisClient)
	require.NoError(t, err)

	// Create server dependencies
	handlers := &server.Handlers{
		Cache:   rowCache,
		Tickers: tickerStore,
		DevMode: true,
		Logger:  logger,
	}

	serverConfig := server.ServerConfig{
		Addr:    cfg.APIAddr,
		DevMode: cfg.DevMode,
		APIKey:  cfg.APIKey,
	}

	deps := server.ServerDeps{
		Handlers: handlers,
		Config:   serverConfig,
	}

	srv, err := server.NewServer(deps)
	require.NoError(t, err)

	// Start server in background
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			t.Logf("Server error: %v", err)
		}
	}()

	// Wait for server to be ready
	time.Sleep(100 * time.Millisecond)

	// Cleanup function
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(ctx)
		_ = redisClient.FlushDB(ctx).Err()
		_ = redisClient.Close()
	}

	return srv, redisClient, cleanup
}

func makeRequest(t *testing.T, method, url string, body interface{}, expectedStatus int) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)

	assert.Equal(t, expectedStatus, resp.StatusCode, "Expected status %d, got %d", expectedStatus, resp.StatusCode)

	return resp
}

func TestIntegration_Health(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	resp := makeRequest(t, http.MethodGet, "http://localhost:8091/v1/health", nil, http.StatusOK)
	defer resp.Body.Close()

	var response server.HealthResponse
	err := json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	assert.True(t, response.OK)
}

func TestIntegration_Echo(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	payload := map[string]interface{}{"message": "hello", "count": 42}
	resp := makeRequest(t, http.MethodPost, "http://localhost:8091/v1/echo", payload, http.StatusOK)
	defer resp.Body.Close()

	var response map[string]interface{}
	err := json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, payload["message"], response["message"])
}

func TestIntegration_TickersCRUD(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Create ticker override
	upsertPayload := map[string]interface{}{"mint": testMint, "symbol": "USDC", "decimals": 6}
	resp := makeRequest(t, http.MethodPost, "http://localhost:8091/v1/tickers", upsertPayload, http.StatusOK)
	defer resp.Body.Close()

	var upsertResponse tickers.Ticker
	err := json.NewDecoder(resp.Body).Decode(&upsertResponse)
	require.NoError(t, err)
	assert.Equal(t, testMint, upsertResponse.Mint)
	assert.Equal(t, "USDC", upsertResponse.Symbol)
	assert.NotZero(t, upsertResponse.UpdatedAt)

	// Get ticker
	resp = makeRequest(t, http.MethodGet, "http://localhost:8091/v1/tickers/"+testMint, nil, http.StatusOK)
	defer resp.Body.Close()

	var getResponse tickers.Ticker
	err = json.NewDecoder(resp.Body).Decode(&getResponse)
	require.NoError(t, err)
	assert.Equal(t, "USDC", getResponse.Symbol)
	assert.Equal(t, 6, getResponse.Decimals)

	// List tickers
	resp = makeRequest(t, http.MethodGet, "http://localhost:8091/v1/tickers", nil, http.StatusOK)
	defer resp.Body.Close()

	var listResponse struct {
		Items []*tickers.Ticker `json:"items"`
	}
	err = json.NewDecoder(resp.Body).Decode(&listResponse)
	require.NoError(t, err)
	assert.Len(t, listResponse.Items, 1)
	assert.Equal(t, testMint, listResponse.Items[0].Mint)

	// Delete ticker
	resp = makeRequest(t, http.MethodDelete, "http://localhost:8091/v1/tickers/"+testMint, nil, http.StatusNoContent)
	defer resp.Body.Close()

	// Verify deletion
	resp = makeRequest(t, http.MethodGet, "http://localhost:8091/v1/tickers/"+testMint, nil, http.StatusNotFound)
	defer resp.Body.Close()
}

func TestIntegration_TickersValidation(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Empty mint fails base58 validation
	invalidPayload := map[string]interface{}{"mint": "", "symbol": "X", "decimals": 0}
	resp := makeRequest(t, http.MethodPost, "http://localhost:8091/v1/tickers", invalidPayload, http.StatusBadRequest)
	defer resp.Body.Close()

	var errorResponse server.ErrorResponse
	err := json.NewDecoder(resp.Body).Decode(&errorResponse)
	require.NoError(t, err)
	assert.Contains(t, errorResponse.Error, "invalid mint")

	// Mint with characters outside the base58 alphabet
	invalidPayload2 := map[string]interface{}{"mint": "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", "symbol": "X"}
	resp = makeRequest(t, http.MethodPost, "http://localhost:8091/v1/tickers", invalidPayload2, http.StatusBadRequest)
	defer resp.Body.Close()
}

func TestIntegration_RecentRows(t *testing.T) {
	_, redisClient, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()

	// Seed the cache the way the analyzer does
	logger := logrus.New()
	rowCache := cache.NewRedisCacheFromClient(redisClient, logger)
	row := &models.Row{
		TxID:           "test_sig",
		Timestamp:      time.Unix(1700000000, 0).UTC(),
		Operation:      models.OpSwap,
		SentAmount:     1,
		SentTicker:     "SOL",
		ReceivedAmount: 100,
		ReceivedTicker: "USDC",
		Fee:            0.000005,
		FeeTicker:      "SOL",
	}
	require.NoError(t, rowCache.AddRecentRow(ctx, row))

	resp := makeRequest(t, http.MethodGet, "http://localhost:8091/v1/rows/recent?limit=5", nil, http.StatusOK)
	defer resp.Body.Close()

	var rowsResponse struct {
		Items []*models.Row `json:"items"`
	}
	err := json.NewDecoder(resp.Body).Decode(&rowsResponse)
	require.NoError(t, err)
	assert.Len(t, rowsResponse.Items, 1)
	assert.Equal(t, "test_sig", rowsResponse.Items[0].TxID)
	assert.Equal(t, models.OpSwap, rowsResponse.Items[0].Operation)
}

func TestIntegration_RowsValidation(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Test invalid limit
	resp := makeRequest(t, http.MethodGet, "http://localhost:8091/v1/rows/recent?limit=500", nil, http.StatusBadRequest)
	defer resp.Body.Close()

	var errorResponse server.ErrorResponse
	err := json.NewDecoder(resp.Body).Decode(&errorResponse)
	require.NoError(t, err)
	assert.Contains(t, errorResponse.Error, "invalid limit")
}

func TestIntegration_Authentication(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Test without API key
	req, err := http.NewRequest(http.MethodGet, "http://localhost:8091/v1/health", nil)
	require.NoError(t, err)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Test with invalid API key
	req, err = http.NewRequest(http.MethodGet, "http://localhost:8091/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "invalid-key")

	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_ErrorHandling(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Test 404 for non-existent endpoint
	req, err := http.NewRequest(http.MethodGet, "http://localhost:8091/v1/nonexistent", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", testAPIKey)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errorResponse server.ErrorResponse
	err = json.NewDecoder(resp.Body).Decode(&errorResponse)
	require.NoError(t, err)
	assert.Equal(t, "not found", errorResponse.Error)
	assert.Equal(t, http.StatusNotFound, errorResponse.Code)

	// Test invalid JSON
	req, err = http.NewRequest(http.MethodPost, "http://localhost:8091/v1/echo", bytes.NewReader([]byte("invalid json")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)

	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	err = json.NewDecoder(resp.Body).Decode(&errorResponse)
	require.NoError(t, err)
	assert.Contains(t, errorResponse.Error, "invalid json")
}

func TestIntegration_ConcurrentRequests(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	const numRequests = 50
	const numGoroutines = 10

	results := make(chan error, numRequests)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			for j := 0; j < numRequests/numGoroutines; j++ {
				resp := makeRequest(t, http.MethodGet, "http://localhost:8091/v1/health", nil, http.StatusOK)
				resp.Body.Close()
				results <- nil
			}
		}()
	}

	// Collect all results
	for i := 0; i < numRequests; i++ {
		err := <-results
		assert.NoError(t, err)
	}
}
