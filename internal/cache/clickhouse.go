package cache

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseStore persists report rows for historical queries
type ClickHouseStore struct {
	conn driver.Conn
}

// ClickHouseConfig holds connection settings for the store
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

func NewClickHouseStore(cfg ClickHouseConfig) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseStore{conn: conn}, nil
}

// InsertRow inserts one report row
func (c *ClickHouseStore) InsertRow(ctx context.Context, row *models.Row) error {
	query := `
		INSERT INTO report_rows (
			tx_id, timestamp, operation, sent_amount, sent_ticker,
			received_amount, received_ticker, fee, fee_ticker, comment
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		row.TxID,
		row.Timestamp,
		row.Operation,
		row.SentAmount,
		row.SentTicker,
		row.ReceivedAmount,
		row.ReceivedTicker,
		row.Fee,
		row.FeeTicker,
		row.Comment,
	)

	if err != nil {
		return fmt.Errorf("failed to insert row: %w", err)
	}

	return nil
}

// Ping checks the ClickHouse connection
func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes the connection
func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
