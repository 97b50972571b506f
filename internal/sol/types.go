package sol

import (
	"time"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/rpc"
)

// Asset is one currency observed in a transaction: the native asset or an
// SPL token, identified by its mint address.
type Asset struct {
	Mint     string
	Ticker   string
	Decimals int
}

// Delta is a signed balance change of one asset on one account
type Delta struct {
	Ticker string
	Amount float64
}

// BalanceChanges maps account address to its per-transaction balance delta.
// Keys are unique per (account, asset) because a token account holds exactly
// one asset and the native delta is keyed by the account itself.
type BalanceChanges map[string]Delta

// Transfer is one directional leg: amount of an asset moving from Source to
// Destination. Either side may be empty when the counterparty is
// undetermined.
type Transfer struct {
	Amount      float64
	Ticker      string
	Source      string
	Destination string
}

// TransferSet holds the raw legs derived for one transaction
type TransferSet struct {
	In      []Transfer
	Out     []Transfer
	Unknown []Transfer
}

// NetTransferSet is a TransferSet after same-asset legs are collapsed to one
// net value per asset and the network fee is removed. For every asset there
// is at most one entry in In or Out, never both.
type NetTransferSet struct {
	In      []Transfer
	Out     []Transfer
	Unknown []Transfer
}

// Transaction is the normalized per-transaction record produced by the
// parser. Skipped records carry only the transaction id and wallet.
type Transaction struct {
	TxID          string
	Timestamp     time.Time
	WalletAddress string
	Skipped       bool

	// Network fee in native units
	Fee float64

	Instructions    []rpc.Instruction
	Inner           []rpc.Instruction
	LogInstructions []string
	Log             []string

	WalletAccounts map[string]bool
	AccountToMint  map[string]string
	Assets         map[string]Asset

	ChangesAll    BalanceChanges
	ChangesWallet BalanceChanges

	Transfers    TransferSet
	TransfersNet NetTransferSet

	// Legs reconstructed from parsed inner instructions (pool/LP moves that
	// are invisible in wallet-attributable balance deltas)
	PoolTransfers    TransferSet
	PoolTransfersNet NetTransferSet
	PoolFee          float64

	Comment string
}

// ProgramIDs returns the program id of every top-level instruction in order
func (t *Transaction) ProgramIDs() []string {
	out := make([]string, 0, len(t.Instructions))
	for _, ix := range t.Instructions {
		out = append(out, ix.ProgramID)
	}
	return out
}

// HasProgram reports whether any top-level instruction targets the program
func (t *Transaction) HasProgram(programID string) bool {
	for _, ix := range t.Instructions {
		if ix.ProgramID == programID {
			return true
		}
	}
	return false
}
