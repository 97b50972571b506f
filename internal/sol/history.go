package sol

import (
	"context"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/constants"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/export"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/rpc"
)

// TransactionSource is the slice of the RPC client the history walker needs
type TransactionSource interface {
	GetSignaturesForAddress(ctx context.Context, address string, opts map[string]interface{}) (*rpc.SignaturesResponse, error)
	GetTransaction(ctx context.Context, signature string) (*rpc.TransactionResponse, error)
}

// HistoryConfig holds configuration for the history walker
type HistoryConfig struct {
	Source            TransactionSource
	Parser            *Parser
	RequestsPerSecond float64
	Logger            *logrus.Logger
}

// History replays a wallet's full transaction history in chronological order,
// parsing each transaction and exporting the resulting rows. Individual
// transaction failures are logged and skipped; the walk continues.
type History struct {
	source  TransactionSource
	parser  *Parser
	limiter *rate.Limiter
	logger  *logrus.Logger
}

func NewHistory(cfg HistoryConfig) *History {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = constants.HistoryFetchRate
	}
	return &History{
		source:  cfg.Source,
		parser:  cfg.Parser,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  cfg.Logger,
	}
}

// Run walks the wallet's history and feeds every exported row to the
// exporter. Returns the number of transactions processed.
func (h *History) Run(ctx context.Context, wallet string, exporter export.Exporter) (int, error) {
	if err := validateWallet(wallet); err != nil {
		return 0, err
	}

	signatures, err := h.collectSignatures(ctx, wallet)
	if err != nil {
		return 0, err
	}

	h.logger.WithFields(logrus.Fields{
		"wallet": wallet,
		"count":  len(signatures),
	}).Info("replaying wallet history")

	processed := 0
	for _, sig := range signatures {
		if err := h.limiter.Wait(ctx); err != nil {
			return processed, err
		}

		rec, err := h.fetchAndParse(ctx, sig, wallet)
		if err != nil {
			h.logger.WithError(err).WithField("signature", shortSig(sig)).Warn("failed to process transaction, continuing")
			continue
		}
		if rec == nil {
			continue
		}

		ExportTransaction(rec, exporter)
		processed++
	}

	return processed, nil
}

// collectSignatures pages backwards through getSignaturesForAddress and
// returns the signatures oldest first
func (h *History) collectSignatures(ctx context.Context, wallet string) ([]string, error) {
	var signatures []string
	before := ""

	for {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		opts := map[string]interface{}{
			"limit": constants.SignatureBatchSize,
		}
		if before != "" {
			opts["before"] = before
		}

		resp, err := h.source.GetSignaturesForAddress(ctx, wallet, opts)
		if err != nil {
			return nil, fmt.Errorf("fetching signatures for %s: %w", wallet, err)
		}
		if len(resp.Result) == 0 {
			break
		}

		for _, info := range resp.Result {
			signatures = append(signatures, info.Signature)
		}
		before = resp.Result[len(resp.Result)-1].Signature

		if len(resp.Result) < constants.SignatureBatchSize {
			break
		}
	}

	// The RPC returns newest first; replay oldest first so the auxiliary
	// registry sees stake and escrow registrations before their later use
	for i, j := 0, len(signatures)-1; i < j; i, j = i+1, j-1 {
		signatures[i], signatures[j] = signatures[j], signatures[i]
	}
	return signatures, nil
}

func (h *History) fetchAndParse(ctx context.Context, signature, wallet string) (*Transaction, error) {
	resp, err := h.source.GetTransaction(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("fetching transaction: %w", err)
	}
	return h.parser.Parse(ctx, signature, resp.Result, wallet)
}

func validateWallet(wallet string) error {
	decoded, err := base58.Decode(wallet)
	if err != nil {
		return fmt.Errorf("invalid wallet address %q: %w", wallet, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("invalid wallet address %q: not a 32-byte key", wallet)
	}
	return nil
}

func shortSig(sig string) string {
	if len(sig) > 8 {
		return sig[:8]
	}
	return sig
}
