package sol

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/constants"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/rpc"
)

// ErrCounterpartyNotFound means a currency netted to a nonzero value but no
// original leg in that currency exists to source the counterparty from. The
// transaction record is inconsistent; the caller drops it and moves on.
var ErrCounterpartyNotFound = errors.New("counterparty not found for net transfer")

const epsilon = 1e-9

// NetOptions controls one netting pass.
//
// Fee is the declared network fee in native units. FeeEmbedded marks sets
// whose legs were derived from balance deltas, where the fee is folded into
// the wallet's native movement and must be separated out; instruction-derived
// sets never embed the fee, so only a leg exactly matching it is removed.
type NetOptions struct {
	Fee         float64
	FeeEmbedded bool

	// MintTo, when set, appends token mints credited to the wallet as
	// inbound legs after netting
	MintTo *MintToScan
}

// MintToScan carries the instruction context for mint detection
type MintToScan struct {
	Instructions   []rpc.Instruction
	Inner          []rpc.Instruction
	WalletAccounts map[string]bool
	Assets         map[string]Asset
}

// Resolver collapses a TransferSet to at most one leg per currency and
// separates the network fee. It holds the all-accounts balance map so that
// atomic trades, which cancel out on the wallet side, can be re-derived from
// the counterparty side.
type Resolver struct {
	all            BalanceChanges
	walletAccounts map[string]bool
	logger         *logrus.Logger
}

func NewResolver(all BalanceChanges, walletAccounts map[string]bool, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.New()
	}
	return &Resolver{all: all, walletAccounts: walletAccounts, logger: logger}
}

// Net produces the net transfer set and the fee amount it separated out.
// Applying Net to its own output with the same options yields the same set.
func (r *Resolver) Net(ts TransferSet, opts NetOptions) (NetTransferSet, float64, error) {
	currencies, totals := netTotals(ts)

	var (
		net NetTransferSet
		err error
	)
	if len(currencies) == 2 {
		net, err = r.netAtomic(ts, currencies, totals)
	} else {
		net, err = r.netNormal(ts, currencies, totals)
	}
	if err != nil {
		return NetTransferSet{}, 0, err
	}

	net.Unknown = append(net.Unknown, ts.Unknown...)

	fee := extractFee(&net, opts)

	if opts.MintTo != nil {
		appendMinted(&net, opts.MintTo)
	}
	return net, fee, nil
}

// netTotals sums legs per currency, preserving first-seen order
func netTotals(ts TransferSet) ([]string, map[string]float64) {
	var currencies []string
	totals := make(map[string]float64)
	add := func(ticker string, amount float64) {
		if _, seen := totals[ticker]; !seen {
			currencies = append(currencies, ticker)
		}
		totals[ticker] += amount
	}
	for _, leg := range ts.In {
		add(leg.Ticker, leg.Amount)
	}
	for _, leg := range ts.Out {
		add(leg.Ticker, -leg.Amount)
	}
	return currencies, totals
}

// netNormal emits one leg per currency with a nonzero net, taking the
// counterparty from the first original leg in the same currency and
// direction.
func (r *Resolver) netNormal(ts TransferSet, currencies []string, totals map[string]float64) (NetTransferSet, error) {
	var net NetTransferSet
	for _, currency := range currencies {
		total := roundTo(totals[currency], constants.DecimalsSOL)
		switch {
		case total > epsilon:
			leg, ok := firstLeg(ts.In, currency)
			if !ok {
				return NetTransferSet{}, fmt.Errorf("%w: %s in", ErrCounterpartyNotFound, currency)
			}
			leg.Amount = total
			net.In = append(net.In, leg)
		case total < -epsilon:
			leg, ok := firstLeg(ts.Out, currency)
			if !ok {
				return NetTransferSet{}, fmt.Errorf("%w: %s out", ErrCounterpartyNotFound, currency)
			}
			leg.Amount = -total
			net.Out = append(net.Out, leg)
		}
	}
	return net, nil
}

// netAtomic handles the two-currency case. An atomic trade can move a token
// through the wallet with zero net change, leaving only the native fee leg
// visible; the token side is recovered from the counterparty accounts in the
// all-accounts map. The native currency still nets normally. When the scan
// finds no counterparty movement the set is a plain two-currency transfer
// and nets normally too.
func (r *Resolver) netAtomic(ts TransferSet, currencies []string, totals map[string]float64) (NetTransferSet, error) {
	target := ""
	for _, currency := range currencies {
		if currency != constants.TickerSOL {
			target = currency
			break
		}
	}
	if target == "" {
		return r.netNormal(ts, currencies, totals)
	}

	walletNet := roundTo(totals[target], constants.DecimalsSOL)
	legs := r.counterpartyLegs(target, walletNet)
	if len(legs.In)+len(legs.Out) == 0 {
		return r.netNormal(ts, currencies, totals)
	}

	rest := []string{}
	for _, currency := range currencies {
		if currency != target {
			rest = append(rest, currency)
		}
	}
	net, err := r.netNormal(ts, rest, totals)
	if err != nil {
		return NetTransferSet{}, err
	}
	net.In = append(net.In, legs.In...)
	net.Out = append(net.Out, legs.Out...)
	return net, nil
}

// counterpartyLegs scans the all-accounts map for movements of the target
// currency on non-wallet accounts that the wallet net does not explain. The
// sign inverts: an account that lost the asset sent it to the wallet.
func (r *Resolver) counterpartyLegs(currency string, walletNet float64) TransferSet {
	accounts := make([]string, 0, len(r.all))
	for account := range r.all {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	var legs TransferSet
	for _, account := range accounts {
		delta := r.all[account]
		if delta.Ticker != currency || r.walletAccounts[account] {
			continue
		}
		amount := roundTo(delta.Amount, constants.DecimalsSOL)
		if math.Abs(amount-walletNet) <= epsilon || amount == 0 {
			continue
		}
		if amount < 0 {
			legs.In = append(legs.In, Transfer{
				Amount: -amount,
				Ticker: currency,
				Source: account,
			})
		} else {
			legs.Out = append(legs.Out, Transfer{
				Amount:      amount,
				Ticker:      currency,
				Destination: account,
			})
		}
	}
	return legs
}

// extractFee separates the declared network fee from the native legs and
// returns the amount it accounted for
func extractFee(net *NetTransferSet, opts NetOptions) float64 {
	fee := opts.Fee
	if fee <= 0 {
		return 0
	}

	outIdx := legIndex(net.Out, constants.TickerSOL)

	if !opts.FeeEmbedded {
		// Instruction-derived legs never include the fee; only a leg that
		// is exactly the fee is a pure fee payment.
		if outIdx >= 0 && math.Abs(net.Out[outIdx].Amount-fee) <= epsilon {
			net.Out = append(net.Out[:outIdx], net.Out[outIdx+1:]...)
			return fee
		}
		return 0
	}

	if outIdx >= 0 {
		remaining := roundTo(net.Out[outIdx].Amount-fee, constants.DecimalsSOL)
		switch {
		case math.Abs(remaining) <= epsilon:
			net.Out = append(net.Out[:outIdx], net.Out[outIdx+1:]...)
		case remaining > 0:
			net.Out[outIdx].Amount = remaining
		default:
			// Outflow smaller than the fee means the wallet actually
			// received native funds net of fee
			leg := net.Out[outIdx]
			net.Out = append(net.Out[:outIdx], net.Out[outIdx+1:]...)
			net.In = append(net.In, Transfer{
				Amount: -remaining,
				Ticker: constants.TickerSOL,
				Source: leg.Source,
			})
		}
		return fee
	}

	if inIdx := legIndex(net.In, constants.TickerSOL); inIdx >= 0 {
		// Balance deltas report inflow net of the fee paid; restore the
		// gross amount so the fee is not double counted.
		net.In[inIdx].Amount = roundTo(net.In[inIdx].Amount+fee, constants.DecimalsSOL)
		return fee
	}

	// Fee paid with no other native movement: the netting collapsed the
	// fee-only leg already
	return fee
}

// appendMinted adds mint credits for currencies not already received
func appendMinted(net *NetTransferSet, scan *MintToScan) {
	have := make(map[string]bool, len(net.In))
	for _, leg := range net.In {
		have[leg.Ticker] = true
	}
	for _, leg := range mintedTransfers(scan.Instructions, scan.Inner, scan.WalletAccounts, scan.Assets) {
		if have[leg.Ticker] {
			continue
		}
		have[leg.Ticker] = true
		net.In = append(net.In, leg)
	}
}

func firstLeg(legs []Transfer, currency string) (Transfer, bool) {
	for _, leg := range legs {
		if leg.Ticker == currency {
			return leg, true
		}
	}
	return Transfer{}, false
}

func legIndex(legs []Transfer, currency string) int {
	for i, leg := range legs {
		if leg.Ticker == currency {
			return i
		}
	}
	return -1
}
