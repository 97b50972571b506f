package export

import (
	"sync"
	"time"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/models"
)

// TxContext carries the per-transaction fields shared by every row a
// transaction (or transaction group) produces.
type TxContext struct {
	TxID      string
	Timestamp time.Time
	FeeTicker string
}

// Exporter ingests normalized report rows. Implementations decide where
// rows go (memory, cache fan-out, persistent store).
type Exporter interface {
	Ingest(row *models.Row)
}

// MemoryExporter collects rows in order. Used by tests and as the staging
// buffer for a single analysis run.
type MemoryExporter struct {
	mu   sync.Mutex
	rows []*models.Row
}

func NewMemoryExporter() *MemoryExporter {
	return &MemoryExporter{}
}

func (m *MemoryExporter) Ingest(row *models.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, row)
}

// Rows returns the ingested rows in ingestion order
func (m *MemoryExporter) Rows() []*models.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Row, len(m.rows))
	copy(out, m.rows)
	return out
}

// FuncExporter adapts a function to the Exporter interface
type FuncExporter func(row *models.Row)

func (f FuncExporter) Ingest(row *models.Row) {
	f(row)
}

func baseRow(tx TxContext, op string, fee float64, comment string) *models.Row {
	return &models.Row{
		TxID:      tx.TxID,
		Timestamp: tx.Timestamp,
		Operation: op,
		Fee:       fee,
		FeeTicker: tx.FeeTicker,
		Comment:   comment,
	}
}

// SwapRow builds a row for an exchange of one asset for another
func SwapRow(tx TxContext, sentAmount float64, sentTicker string, receivedAmount float64, receivedTicker string, fee float64, comment string) *models.Row {
	row := baseRow(tx, models.OpSwap, fee, comment)
	row.SentAmount = sentAmount
	row.SentTicker = sentTicker
	row.ReceivedAmount = receivedAmount
	row.ReceivedTicker = receivedTicker
	return row
}

// TransferRow builds a row for a plain one-way transfer
func TransferRow(tx TxContext, amount float64, ticker string, inbound bool, fee float64, comment string) *models.Row {
	row := baseRow(tx, models.OpTransfer, fee, comment)
	if inbound {
		row.ReceivedAmount = amount
		row.ReceivedTicker = ticker
	} else {
		row.SentAmount = amount
		row.SentTicker = ticker
	}
	return row
}

// DepositCollateralRow builds a row for collateral sent into a lending pool
func DepositCollateralRow(tx TxContext, amount float64, ticker string, fee float64, comment string) *models.Row {
	row := baseRow(tx, models.OpDepositCollateral, fee, comment)
	row.SentAmount = amount
	row.SentTicker = ticker
	return row
}

// WithdrawCollateralRow builds a row for collateral returned from a lending pool
func WithdrawCollateralRow(tx TxContext, amount float64, ticker string, fee float64, comment string) *models.Row {
	row := baseRow(tx, models.OpWithdrawCollateral, fee, comment)
	row.ReceivedAmount = amount
	row.ReceivedTicker = ticker
	return row
}

// BorrowRow builds a row for borrowed funds received
func BorrowRow(tx TxContext, amount float64, ticker string, fee float64, comment string) *models.Row {
	row := baseRow(tx, models.OpBorrow, fee, comment)
	row.ReceivedAmount = amount
	row.ReceivedTicker = ticker
	return row
}

// RepayRow builds a row for a loan repayment
func RepayRow(tx TxContext, amount float64, ticker string, fee float64, comment string) *models.Row {
	row := baseRow(tx, models.OpRepay, fee, comment)
	row.SentAmount = amount
	row.SentTicker = ticker
	return row
}

// RewardRow builds a row for a claimed reward
func RewardRow(tx TxContext, amount float64, ticker string, fee float64, comment string) *models.Row {
	row := baseRow(tx, models.OpReward, fee, comment)
	row.ReceivedAmount = amount
	row.ReceivedTicker = ticker
	return row
}

// UnknownRow builds a row for an operation that could not be classified.
// The fee is still reported so the tax record stays complete.
func UnknownRow(tx TxContext, fee float64, comment string) *models.Row {
	row := baseRow(tx, models.OpUnknown, fee, comment)
	return row
}
