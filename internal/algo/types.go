package algo

import "time"

// Transaction type tags as they appear in indexer records
const (
	TypePayment       = "pay"
	TypeAppCall       = "appl"
	TypeAssetTransfer = "axfer"
)

const (
	TickerALGO = "ALGO"
	microUnits = 1e6
)

// AppCall is the application-call section of a transaction
type AppCall struct {
	ApplicationID   uint64   `json:"application-id"`
	ApplicationArgs []string `json:"application-args"`
	OnCompletion    string   `json:"on-completion"`
}

// Payment is the payment section of a transaction, amounts in microalgos
type Payment struct {
	Amount   uint64 `json:"amount"`
	Receiver string `json:"receiver"`
}

// AssetTransfer is the asset-transfer section of a transaction
type AssetTransfer struct {
	Amount   uint64 `json:"amount"`
	AssetID  uint64 `json:"asset-id"`
	Receiver string `json:"receiver"`
}

// Transaction is one raw Algorand transaction as returned by an indexer.
// Only the sections the group matcher reads are mapped.
type Transaction struct {
	ID            string         `json:"id"`
	TxType        string         `json:"tx-type"`
	Sender        string         `json:"sender"`
	Fee           uint64         `json:"fee"`
	SenderRewards uint64         `json:"sender-rewards"`
	RoundTime     int64          `json:"round-time"`
	AppCall       *AppCall       `json:"application-transaction,omitempty"`
	Payment       *Payment       `json:"payment-transaction,omitempty"`
	AssetTransfer *AssetTransfer `json:"asset-transfer-transaction,omitempty"`
	Inner         []Transaction  `json:"inner-txns,omitempty"`
}

// Time returns the confirmation time of the transaction
func (t *Transaction) Time() time.Time {
	return time.Unix(t.RoundTime, 0).UTC()
}

// FeeAlgo returns the transaction fee in algos
func (t *Transaction) FeeAlgo() float64 {
	return float64(t.Fee) / microUnits
}
