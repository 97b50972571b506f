package tickers

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("ticker not found")

// Ticker is a mint-to-symbol override entry
type Ticker struct {
	Mint      string    `json:"mint"`
	Symbol    string    `json:"symbol"`
	Decimals  int       `json:"decimals"`
	UpdatedAt time.Time `json:"updated_at"`
}
