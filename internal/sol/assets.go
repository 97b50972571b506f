package sol

import (
	"math"
	"strconv"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/constants"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/rpc"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/tickers"
)

// buildAssets returns the per-transaction asset registry:
// accountToMint maps every token account touched by the transaction (plus
// the wallet's own token accounts) to its mint; assets maps each mint to its
// ticker and decimals. The native asset is always present, keyed under the
// wrapped-SOL mint, with the wallet address mapped to it.
func buildAssets(result *rpc.TransactionResult, wallet string, tokenAccounts map[string]rpc.TokenAccountInfo, symbols tickers.Lookup) (map[string]string, map[string]Asset) {
	type mintInfo struct {
		mint     string
		decimals int
	}
	found := make(map[string]mintInfo)

	for account, info := range tokenAccounts {
		found[account] = mintInfo{mint: info.Mint, decimals: info.Decimals}
	}

	accountKeys := accountKeyList(result)
	rows := append([]rpc.TokenBalance{}, result.Meta.PreTokenBalances...)
	rows = append(rows, result.Meta.PostTokenBalances...)
	for _, row := range rows {
		if row.AccountIndex < 0 || row.AccountIndex >= len(accountKeys) {
			continue
		}
		account := accountKeys[row.AccountIndex]
		found[account] = mintInfo{mint: row.Mint, decimals: row.UITokenAmount.Decimals}
	}

	accountToMint := make(map[string]string, len(found)+1)
	assets := make(map[string]Asset)
	for account, info := range found {
		accountToMint[account] = info.mint
		assets[info.mint] = Asset{
			Mint:     info.mint,
			Ticker:   symbols.Symbol(info.mint),
			Decimals: info.decimals,
		}
	}

	accountToMint[wallet] = constants.MintSOL
	assets[constants.MintSOL] = Asset{
		Mint:     constants.MintSOL,
		Ticker:   constants.TickerSOL,
		Decimals: constants.DecimalsSOL,
	}

	return accountToMint, assets
}

func accountKeyList(result *rpc.TransactionResult) []string {
	if result.Transaction == nil {
		return nil
	}
	keys := result.Transaction.Message.AccountKeys
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Pubkey
	}
	return out
}

// amountCurrency converts a raw integer amount string to decimal units of
// the given mint, resolving the display ticker from the registry. Unknown
// mints fall back to native decimals and the mint string itself.
func amountCurrency(raw string, mint string, assets map[string]Asset) (float64, string) {
	asset, ok := assets[mint]
	if !ok {
		asset = Asset{Mint: mint, Ticker: mint, Decimals: constants.DecimalsSOL}
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, asset.Ticker
	}

	amount := float64(n) / math.Pow10(asset.Decimals)
	return roundTo(amount, asset.Decimals), asset.Ticker
}

// roundTo rounds x to the given number of decimal places
func roundTo(x float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(x*scale) / scale
}
