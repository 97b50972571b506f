package storage

import (
	"context"
	"io"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/models"
)

// RowCache defines the interface for caching report rows
type RowCache interface {
	// AddRecentRow adds a row to the recent rows list
	AddRecentRow(ctx context.Context, row *models.Row) error

	// GetRecentRows retrieves the most recent rows
	GetRecentRows(ctx context.Context, limit int64) ([]*models.Row, error)

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	// Close closes the cache connection
	io.Closer

	// PublishRow publishes a row to the Pub/Sub channel
	PublishRow(ctx context.Context, row *models.Row) error
}

// RowStore defines the interface for persistent row storage
type RowStore interface {
	// InsertRow inserts a report row into the store
	InsertRow(ctx context.Context, row *models.Row) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	// Close closes the store connection
	io.Closer
}

// RowHandler is a function that processes report rows
type RowHandler func(*models.Row)
