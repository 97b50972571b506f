package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/storage"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/tickers"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Cache   storage.RowCache // Redis-backed report row cache
	Tickers *tickers.Store   // Redis-backed ticker override store
	DevMode bool             // Enable detailed error responses in development
	Logger  *logrus.Logger   // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// Echo returns the received JSON payload as-is (useful for testing)
func (h *Handlers) Echo(c echo.Context) error {
	var v any
	dec := json.NewDecoder(c.Request().Body)
	if err := dec.Decode(&v); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	return c.JSON(http.StatusOK, v)
}

// RecentRows returns the most recent report rows with optional limit parameter
// Accepts limit query parameter (default: 100, range: 1-200)
func (h *Handlers) RecentRows(c echo.Context) error {
	limitStr := c.QueryParam("limit")
	limit := 100
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 200 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentRows(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get rows", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// TickersUpsert creates or updates a ticker override for a mint
// Validates the mint format and returns the stored ticker
func (h *Handlers) TickersUpsert(c echo.Context) error {
	var req TickerUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := tickers.ValidateMint(req.Mint); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Tickers.Upsert(ctx, req.Mint, req.Symbol, req.Decimals)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert ticker", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// TickersGet retrieves a ticker override by mint
// Returns 404 if no override exists
func (h *Handlers) TickersGet(c echo.Context) error {
	mint := c.Param("mint")
	if err := tickers.ValidateMint(mint); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Tickers.Get(ctx, mint)
	if err != nil {
		if errors.Is(err, tickers.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "ticker not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get ticker", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// TickersList returns all ticker overrides
func (h *Handlers) TickersList(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Tickers.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list tickers", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// TickersDelete removes a ticker override by mint
// Returns 204 No Content on successful deletion
func (h *Handlers) TickersDelete(c echo.Context) error {
	mint := c.Param("mint")
	if err := tickers.ValidateMint(mint); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Tickers.Delete(ctx, mint); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete ticker", nil)
	}
	return c.NoContent(http.StatusNoContent)
}
