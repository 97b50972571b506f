package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	// Set custom error handler for consistent JSON responses
	e.HTTPErrorHandler = NotFoundJSON()

	// Apply global middleware
	e.Use(SetJSONContentType) // Ensure all responses are JSON
	e.Use(SetNoCacheHeaders)  // Prevent caching of API responses

	// Optional API key authentication
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key", // Look for API key in X-API-Key header
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil // Simple string comparison
			},
		}))
	}

	// API v1 routes
	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)          // Health check endpoint
	v1.POST("/echo", h.Echo)             // Echo endpoint for testing
	v1.GET("/rows/recent", h.RecentRows) // Recent report rows

	// Ticker override CRUD endpoints
	tickerGroup := v1.Group("/tickers")
	tickerGroup.GET("", h.TickersList)            // List all overrides
	tickerGroup.POST("", h.TickersUpsert)         // Create new override
	tickerGroup.GET("/:mint", h.TickersGet)       // Get specific override
	tickerGroup.DELETE("/:mint", h.TickersDelete) // Delete override

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
