// ============================================================================
// models/row.go
// ============================================================================
package models

import "time"

// Operation labels for report rows
const (
	OpTransfer           = "transfer"
	OpSwap               = "swap"
	OpDepositCollateral  = "deposit_collateral"
	OpWithdrawCollateral = "withdraw_collateral"
	OpBorrow             = "borrow"
	OpRepay              = "repay"
	OpReward             = "reward"
	OpUnknown            = "unknown"
)

// Row is one normalized report entry: a semantic financial operation
// reconstructed from a raw transaction or transaction group.
type Row struct {
	TxID           string    `json:"tx_id"`
	Timestamp      time.Time `json:"timestamp"`
	Operation      string    `json:"operation"`
	SentAmount     float64   `json:"sent_amount"`
	SentTicker     string    `json:"sent_ticker"`
	ReceivedAmount float64   `json:"received_amount"`
	ReceivedTicker string    `json:"received_ticker"`
	Fee            float64   `json:"fee"`
	FeeTicker      string    `json:"fee_ticker"`
	Comment        string    `json:"comment,omitempty"`
}
