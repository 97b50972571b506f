package sol

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/constants"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/registry"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/rpc"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/tickers"
)

var (
	reLogInstruction = regexp.MustCompile(`^Program log: Instruction: (.*)`)
	reLogMessage     = regexp.MustCompile(`^Program log: (.*)`)
)

// TokenAccountFetcher enumerates the token accounts owned by a wallet
type TokenAccountFetcher interface {
	GetTokenAccountsByOwner(ctx context.Context, owner string) (map[string]rpc.TokenAccountInfo, error)
}

// ParserConfig holds the dependencies of a Parser
type ParserConfig struct {
	Fetcher TokenAccountFetcher
	Symbols tickers.Lookup
	Aux     *registry.AddressRegistry
	Logger  *logrus.Logger
}

// Parser normalizes raw getTransaction results into Transaction records:
// balance deltas, derived transfer legs, netted legs with the fee separated,
// and the instruction-level pool legs.
type Parser struct {
	fetcher TokenAccountFetcher
	symbols tickers.Lookup
	aux     *registry.AddressRegistry
	logger  *logrus.Logger
}

func NewParser(cfg ParserConfig) *Parser {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Aux == nil {
		cfg.Aux = registry.New()
	}
	return &Parser{
		fetcher: cfg.Fetcher,
		symbols: cfg.Symbols,
		aux:     cfg.Aux,
		logger:  cfg.Logger,
	}
}

// Aux returns the auxiliary address registry the parser feeds
func (p *Parser) Aux() *registry.AddressRegistry { return p.aux }

// Parse normalizes one transaction for the given wallet.
//
// Return convention: (record, nil) for parsed or skipped transactions;
// (nil, nil) for transactions excluded outright (missing metadata or failed
// execution); (nil, err) when the record is internally inconsistent. Errors
// abort only this transaction.
func (p *Parser) Parse(ctx context.Context, txid string, result *rpc.TransactionResult, wallet string) (*Transaction, error) {
	if result == nil || result.BlockTime == nil {
		p.logger.WithFields(logrus.Fields{"txid": txid, "wallet": wallet}).Warn("transaction without block time, skipping")
		return &Transaction{TxID: txid, WalletAddress: wallet, Skipped: true}, nil
	}
	if result.Meta == nil || result.Transaction == nil {
		return nil, nil
	}
	if result.Meta.Err != nil {
		p.logger.WithFields(logrus.Fields{"txid": txid}).Debug("failed transaction, excluding")
		return nil, nil
	}

	tokenAccounts, err := p.fetcher.GetTokenAccountsByOwner(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("fetching token accounts for %s: %w", wallet, err)
	}

	instrs := result.Transaction.Message.Instructions
	inner := result.Meta.InnerInstructionsFlat()
	declaredFee := roundTo(float64(result.Meta.Fee)/constants.Lamports, constants.DecimalsSOL)

	// The fee is charged to the first account key; it belongs on this
	// wallet's report only when the wallet paid it
	fee := 0.0
	if keys := accountKeyList(result); len(keys) > 0 && keys[0] == wallet {
		fee = declaredFee
	}

	accountToMint, assets := buildAssets(result, wallet, tokenAccounts, p.symbols)
	walletAccounts := walletAccountSet(wallet, tokenAccounts, instrs, inner, p.aux)
	changesAll, changesWallet := balanceChanges(result, walletAccounts, assets)

	if diff := math.Abs(nativeSum(changesAll) + declaredFee); diff > epsilon {
		p.logger.WithFields(logrus.Fields{
			"txid": txid,
			"diff": diff,
		}).Warn("native balance deltas do not sum to the declared fee")
	}

	resolver := NewResolver(changesAll, walletAccounts, p.logger)

	transfers := derivedTransfers(changesWallet)
	transfersNet, _, err := resolver.Net(transfers, NetOptions{Fee: fee, FeeEmbedded: true})
	if err != nil {
		return nil, fmt.Errorf("netting balance transfers for %s: %w", txid, err)
	}

	allInstrs := append(append([]rpc.Instruction{}, instrs...), inner...)
	poolTransfers := instructionTransfers(txid, allInstrs, walletAccounts, accountToMint, assets, p.logger)
	poolNet, poolFee, err := resolver.Net(poolTransfers, NetOptions{
		Fee: fee,
		MintTo: &MintToScan{
			Instructions:   instrs,
			Inner:          inner,
			WalletAccounts: walletAccounts,
			Assets:         assets,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("netting instruction transfers for %s: %w", txid, err)
	}

	for _, address := range stakingAddresses(wallet, instrs) {
		p.aux.Add(address)
		p.logger.WithFields(logrus.Fields{"txid": txid, "stake_account": address}).Info("registered delegated stake account")
	}

	logInstrs, logLines := parseLogs(result.Meta.LogMessages)

	return &Transaction{
		TxID:             txid,
		Timestamp:        time.Unix(*result.BlockTime, 0).UTC(),
		WalletAddress:    wallet,
		Fee:              fee,
		Instructions:     instrs,
		Inner:            inner,
		LogInstructions:  logInstrs,
		Log:              logLines,
		WalletAccounts:   walletAccounts,
		AccountToMint:    accountToMint,
		Assets:           assets,
		ChangesAll:       changesAll,
		ChangesWallet:    changesWallet,
		Transfers:        transfers,
		TransfersNet:     transfersNet,
		PoolTransfers:    poolTransfers,
		PoolTransfersNet: poolNet,
		PoolFee:          poolFee,
	}, nil
}

// parseLogs splits program log messages into instruction names and free-form
// log lines
func parseLogs(messages []string) ([]string, []string) {
	var instrs, logs []string
	for _, msg := range messages {
		if m := reLogInstruction.FindStringSubmatch(msg); m != nil {
			instrs = append(instrs, m[1])
			continue
		}
		if m := reLogMessage.FindStringSubmatch(msg); m != nil {
			logs = append(logs, m[1])
		}
	}
	return instrs, logs
}
