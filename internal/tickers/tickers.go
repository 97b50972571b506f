package tickers

import (
	"context"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/constants"
)

// Lookup resolves a mint address to a display symbol
type Lookup interface {
	Symbol(mint string) string
}

// Resolver answers symbol lookups from the static table first, then the
// optional Redis override store, falling back to a shortened mint string.
type Resolver struct {
	store *Store
}

func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Symbol resolves a mint to its display symbol
func (r *Resolver) Symbol(mint string) string {
	if symbol, ok := constants.TokenSymbols[mint]; ok {
		return symbol
	}

	if r.store != nil {
		if t, err := r.store.Get(context.Background(), mint); err == nil {
			return t.Symbol
		}
	}

	return Shorten(mint)
}

// Shorten abbreviates an unknown mint for display
func Shorten(mint string) string {
	if len(mint) > 8 {
		return mint[:4] + "..." + mint[len(mint)-4:]
	}
	return mint
}
