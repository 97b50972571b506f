package algo

import (
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/export"
)

// exportParticipationReward reports consensus participation rewards credited
// to the sender by this transaction
func exportParticipationReward(tx *Transaction, ctx export.TxContext, exporter export.Exporter) {
	if tx.SenderRewards == 0 {
		return
	}
	reward := AlgoAmount(tx.SenderRewards)
	exporter.Ingest(export.RewardRow(ctx, reward.Amount, reward.Ticker, 0, "participation rewards"))
}

// exportUnknownGroup reports a group no signature matched. The wallet's fees
// are still owed, so they are summed across the legs the wallet signed.
func exportUnknownGroup(wallet string, group []Transaction, ctx export.TxContext, exporter export.Exporter) {
	var fee float64
	for i := range group {
		if group[i].Sender == wallet {
			fee += group[i].FeeAlgo()
		}
	}
	exporter.Ingest(export.UnknownRow(ctx, fee, "unrecognized transaction group"))
}
