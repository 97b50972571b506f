package algo

import (
	"fmt"
	"math"
)

// Asset is an amount of one Algorand asset in decimal units
type Asset struct {
	Ticker string
	Amount float64
}

type assetInfo struct {
	ticker   string
	decimals int
}

// knownAssets maps ASA ids to display info for the assets the lending
// protocol trades in
var knownAssets = map[uint64]assetInfo{
	31566704:  {ticker: "USDC", decimals: 6},
	312769:    {ticker: "USDT", decimals: 6},
	386192725: {ticker: "goBTC", decimals: 8},
	386195940: {ticker: "goETH", decimals: 8},
	694432641: {ticker: "gALGO3", decimals: 6},
}

// AlgoAmount converts microalgos to an ALGO asset amount
func AlgoAmount(micro uint64) Asset {
	return Asset{Ticker: TickerALGO, Amount: float64(micro) / microUnits}
}

// asaAmount converts a raw ASA amount to decimal units. Unknown assets keep
// their raw amount and are labelled by id.
func asaAmount(id uint64, raw uint64) Asset {
	info, ok := knownAssets[id]
	if !ok {
		return Asset{Ticker: fmt.Sprintf("ASA-%d", id), Amount: float64(raw)}
	}
	return Asset{Ticker: info.ticker, Amount: float64(raw) / math.Pow10(info.decimals)}
}

// transferAsset extracts the asset moved by a payment or asset transfer
func transferAsset(tx *Transaction) (Asset, bool) {
	switch tx.TxType {
	case TypePayment:
		if tx.Payment == nil {
			return Asset{}, false
		}
		return AlgoAmount(tx.Payment.Amount), true
	case TypeAssetTransfer:
		if tx.AssetTransfer == nil {
			return Asset{}, false
		}
		return asaAmount(tx.AssetTransfer.AssetID, tx.AssetTransfer.Amount), true
	}
	return Asset{}, false
}

// innerTransferAsset finds the first payment or asset transfer among a
// transaction's inner transactions, descending depth first
func innerTransferAsset(tx *Transaction) (Asset, bool) {
	for i := range tx.Inner {
		inner := &tx.Inner[i]
		if asset, ok := transferAsset(inner); ok {
			return asset, true
		}
		if asset, ok := innerTransferAsset(inner); ok {
			return asset, true
		}
	}
	return Asset{}, false
}

// transferReceiver returns the receiving address of a payment or asset
// transfer
func transferReceiver(tx *Transaction) string {
	switch tx.TxType {
	case TypePayment:
		if tx.Payment != nil {
			return tx.Payment.Receiver
		}
	case TypeAssetTransfer:
		if tx.AssetTransfer != nil {
			return tx.AssetTransfer.Receiver
		}
	}
	return ""
}
