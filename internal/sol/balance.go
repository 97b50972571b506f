package sol

import (
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/constants"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/rpc"
)

type tokenHolding struct {
	account  string
	ticker   string
	amount   float64
	decimals int
}

// balanceChanges computes per-account balance deltas for every account the
// transaction touched, and the subset attributable to the wallet. Native
// and token deltas are computed independently; zero deltas are dropped.
func balanceChanges(result *rpc.TransactionResult, walletAccounts map[string]bool, assets map[string]Asset) (BalanceChanges, BalanceChanges) {
	all := balanceChangesNative(result)
	for account, delta := range balanceChangesTokens(result, assets) {
		all[account] = delta
	}

	wallet := make(BalanceChanges)
	for account, delta := range all {
		if walletAccounts[account] {
			wallet[account] = delta
		}
	}
	return all, wallet
}

// balanceChangesNative derives native-asset deltas from pre/post balances,
// scaled to decimal units
func balanceChangesNative(result *rpc.TransactionResult) BalanceChanges {
	accountKeys := accountKeyList(result)
	pre := result.Meta.PreBalances
	post := result.Meta.PostBalances

	changes := make(BalanceChanges)
	for i, account := range accountKeys {
		if i >= len(pre) || i >= len(post) {
			break
		}
		amount := roundTo(float64(post[i]-pre[i])/constants.Lamports, constants.DecimalsSOL)
		if amount != 0 {
			changes[account] = Delta{Ticker: constants.TickerSOL, Amount: amount}
		}
	}
	return changes
}

// balanceChangesTokens derives token deltas by matching pre/post token
// balance rows on account index. A holding present only in the pre list is
// treated as fully withdrawn; present only in the post list, as newly
// created.
func balanceChangesTokens(result *rpc.TransactionResult, assets map[string]Asset) BalanceChanges {
	accountKeys := accountKeyList(result)

	pre := make(map[string]tokenHolding)
	for _, row := range result.Meta.PreTokenBalances {
		if h, ok := tokenRow(row, accountKeys, assets); ok {
			pre[h.account] = h
		}
	}

	changes := make(BalanceChanges)
	inPost := make(map[string]bool)
	for _, row := range result.Meta.PostTokenBalances {
		h, ok := tokenRow(row, accountKeys, assets)
		if !ok {
			continue
		}
		inPost[h.account] = true

		var before float64
		if p, seen := pre[h.account]; seen {
			before = p.amount
		}
		amount := roundTo(h.amount-before, h.decimals)
		if amount != 0 {
			changes[h.account] = Delta{Ticker: h.ticker, Amount: amount}
		}
	}

	// Holdings absent from the post list went to zero balance
	for _, h := range pre {
		if inPost[h.account] {
			continue
		}
		if h.amount != 0 {
			changes[h.account] = Delta{Ticker: h.ticker, Amount: -h.amount}
		}
	}

	return changes
}

func tokenRow(row rpc.TokenBalance, accountKeys []string, assets map[string]Asset) (tokenHolding, bool) {
	if row.AccountIndex < 0 || row.AccountIndex >= len(accountKeys) {
		return tokenHolding{}, false
	}

	ticker := row.Mint
	if asset, ok := assets[row.Mint]; ok {
		ticker = asset.Ticker
	}

	return tokenHolding{
		account:  accountKeys[row.AccountIndex],
		ticker:   ticker,
		amount:   row.UITokenAmount.UIAmount,
		decimals: row.UITokenAmount.Decimals,
	}, true
}

// nativeSum returns the sum of native-asset deltas across all accounts.
// For a successful transaction it equals the negative of the declared fee.
func nativeSum(changes BalanceChanges) float64 {
	var sum float64
	for _, delta := range changes {
		if delta.Ticker == constants.TickerSOL {
			sum += delta.Amount
		}
	}
	return roundTo(sum, constants.DecimalsSOL)
}
