package server

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"` // Service health status
}

// TickerUpsertRequest represents a request to create or update a ticker override
type TickerUpsertRequest struct {
	Mint     string `json:"mint"`     // Mint address (base58)
	Symbol   string `json:"symbol"`   // Display symbol
	Decimals int    `json:"decimals"` // Token decimals
}
