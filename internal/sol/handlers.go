package sol

import (
	"fmt"
	"strings"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/constants"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/export"
)

// ExportTransaction classifies a parsed transaction and emits its report
// rows. Swaps routed through the Jupiter aggregator are recognized by
// program id; everything else is reported as plain transfers of the netted
// legs, or as an unknown operation when nothing moved.
func ExportTransaction(rec *Transaction, exporter export.Exporter) {
	tx := export.TxContext{
		TxID:      rec.TxID,
		Timestamp: rec.Timestamp,
		FeeTicker: constants.TickerSOL,
	}

	if rec.Skipped {
		exporter.Ingest(export.UnknownRow(tx, 0, "transaction data unavailable"))
		return
	}

	if rec.HasProgram(constants.ProgramAddresses["Jupiter"]) && exportJupiter(rec, tx, exporter) {
		return
	}

	exportTransfers(rec, tx, exporter)
}

// exportJupiter emits a swap row when the netted legs form a clean
// one-in/one-out pair. Swaps that cancel out in the wallet's balance deltas
// are still visible in the instruction-level legs, so those are tried next.
// Returns false to fall back to the transfer handler.
func exportJupiter(rec *Transaction, tx export.TxContext, exporter export.Exporter) bool {
	for _, net := range []NetTransferSet{rec.TransfersNet, rec.PoolTransfersNet} {
		if len(net.In) != 1 || len(net.Out) != 1 {
			continue
		}
		out, in := net.Out[0], net.In[0]
		exporter.Ingest(export.SwapRow(tx, out.Amount, out.Ticker, in.Amount, in.Ticker, rec.Fee, "jupiter_aggregator"))
		return true
	}
	return false
}

// exportTransfers emits one transfer row per netted leg, charging the fee to
// the first row. A transaction with no netted legs (fee-only, or one whose
// movements all cancelled) is reported as unknown.
func exportTransfers(rec *Transaction, tx export.TxContext, exporter export.Exporter) {
	net := rec.TransfersNet
	fee := rec.Fee
	emitted := 0

	emit := func(leg Transfer, inbound bool, comment string) {
		exporter.Ingest(export.TransferRow(tx, leg.Amount, leg.Ticker, inbound, fee, comment))
		fee = 0
		emitted++
	}

	for _, leg := range net.Out {
		emit(leg, false, transferComment("to", leg.Destination))
	}
	for _, leg := range net.In {
		emit(leg, true, transferComment("from", leg.Source))
	}
	for _, leg := range net.Unknown {
		exporter.Ingest(export.UnknownRow(tx, fee, fmt.Sprintf("unattributed movement of %s %s", formatAmount(leg.Amount), leg.Ticker)))
		fee = 0
		emitted++
	}

	if emitted == 0 {
		exporter.Ingest(export.UnknownRow(tx, fee, "no wallet movement detected"))
	}
}

func transferComment(direction, counterparty string) string {
	if counterparty == "" {
		return ""
	}
	return fmt.Sprintf("%s %s", direction, counterparty)
}

func formatAmount(amount float64) string {
	s := fmt.Sprintf("%.9f", amount)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
