package algo

import (
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/export"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/registry"
)

// Reference:
// https://github.com/Folks-Finance/folks-finance-js-sdk
// https://docs.folks.finance/developer/contracts

const commentFolks = "Folks Finance"

const (
	appFolksLendingManager uint64 = 465818260
	appFolksGovernance     uint64 = 694427622
	appFolksOracleAdapter  uint64 = 689185988
)

var folksPools = []uint64{
	686498781, // ALGO
	686500029, // USDC
	686500844, // USDT
	686501760, // goBTC
	694405065, // goETH
	694464549, // gALGO3
}

var folksRewardsAggregators = []uint64{
	686860954, // ALGO
	686862190, // USDC
	686875498, // USDT
	686876641, // goBTC
	696044550, // goETH
}

// Operation tags in application arguments, base64 of the ABI selector
const (
	argMint              = "bQ==" // "m"
	argDeposit           = "ZA==" // "d"
	argWithdraw          = "cg==" // "r"
	argAddEscrow         = "YWU=" // "ae"
	argBorrow            = "Yg==" // "b"
	argRepayBorrow       = "cmI=" // "rb"
	argIncreaseBorrow    = "aWI=" // "ib"
	argReduceCollateral  = "cmM=" // "rc"
	argRewardClaim       = "Yw==" // "c"
	argStakedExchange    = "ZQ==" // "e"
	argImmediateExchange = "aWU=" // "ie"
)

// Operation is the closed set of protocol operations the matcher recognizes
type Operation int

const (
	OpUnmatched Operation = iota
	OpOptIn
	OpMint
	OpDeposit
	OpWithdraw
	OpAddEscrow
	OpBorrow
	OpRepayBorrow
	OpIncreaseBorrow
	OpReduceCollateral
	OpRewardImmediateExchange
	OpRewardStakedExchange
)

var operationNames = map[Operation]string{
	OpUnmatched:               "unmatched",
	OpOptIn:                   "opt_in",
	OpMint:                    "mint",
	OpDeposit:                 "deposit",
	OpWithdraw:                "withdraw",
	OpAddEscrow:               "add_escrow",
	OpBorrow:                  "borrow",
	OpRepayBorrow:             "repay_borrow",
	OpIncreaseBorrow:          "increase_borrow",
	OpReduceCollateral:        "reduce_collateral",
	OpRewardImmediateExchange: "reward_immediate_exchange",
	OpRewardStakedExchange:    "reward_staked_exchange",
}

func (op Operation) String() string { return operationNames[op] }

// legPattern is the predicate on one group position. Zero-valued fields are
// not checked; Any skips the position entirely.
type legPattern struct {
	Any          bool
	TxType       string
	AppIDs       []uint64
	AppArg       string
	OnCompletion string
	FromWallet   bool
}

type signature struct {
	Op   Operation
	Legs []legPattern
}

// folksSignatures is evaluated in order, first match wins
var folksSignatures = []signature{
	{OpOptIn, []legPattern{
		{Any: true},
		{TxType: TypeAppCall, AppIDs: []uint64{appFolksGovernance}, OnCompletion: "optin"},
	}},
	{OpMint, []legPattern{
		{TxType: TypeAppCall, AppIDs: []uint64{appFolksGovernance}, AppArg: argMint},
		{Any: true},
	}},
	{OpDeposit, []legPattern{
		{TxType: TypeAppCall, AppIDs: folksPools, AppArg: argDeposit},
		{Any: true},
	}},
	{OpWithdraw, []legPattern{
		{TxType: TypeAppCall, AppIDs: folksPools, AppArg: argWithdraw},
		{Any: true},
	}},
	{OpAddEscrow, []legPattern{
		{TxType: TypePayment, FromWallet: true},
		{TxType: TypeAppCall, AppIDs: folksPools, AppArg: argDeposit},
	}},
	{OpBorrow, []legPattern{
		{TxType: TypeAppCall, AppIDs: []uint64{appFolksOracleAdapter}},
		{TxType: TypeAppCall, AppIDs: folksPools, AppArg: argBorrow},
		{TxType: TypeAppCall, AppIDs: folksPools, AppArg: argBorrow},
		{Any: true},
		{Any: true},
	}},
	{OpRepayBorrow, []legPattern{
		{TxType: TypeAppCall, AppIDs: folksPools, AppArg: argRepayBorrow},
		{TxType: TypeAppCall, AppIDs: folksPools, AppArg: argRepayBorrow},
		{Any: true},
		{Any: true},
	}},
	{OpIncreaseBorrow, []legPattern{
		{TxType: TypeAppCall, AppIDs: []uint64{appFolksOracleAdapter}},
		{TxType: TypeAppCall, AppIDs: folksPools, AppArg: argIncreaseBorrow},
		{Any: true},
		{Any: true},
	}},
	{OpReduceCollateral, []legPattern{
		{TxType: TypeAppCall, AppIDs: []uint64{appFolksOracleAdapter}},
		{TxType: TypeAppCall, AppIDs: folksPools, AppArg: argReduceCollateral},
		{Any: true},
		{Any: true},
	}},
	{OpRewardImmediateExchange, []legPattern{
		{TxType: TypeAppCall, AppIDs: folksRewardsAggregators, AppArg: argImmediateExchange},
		{Any: true},
	}},
	{OpRewardStakedExchange, []legPattern{
		{TxType: TypePayment, FromWallet: true},
		{TxType: TypeAppCall, AppIDs: folksRewardsAggregators, AppArg: argStakedExchange},
		{Any: true},
	}},
}

func (p *legPattern) matches(wallet string, tx *Transaction) bool {
	if p.Any {
		return true
	}
	if p.TxType != "" && tx.TxType != p.TxType {
		return false
	}
	if p.FromWallet && tx.Sender != wallet {
		return false
	}
	if len(p.AppIDs) > 0 || p.AppArg != "" || p.OnCompletion != "" {
		if tx.AppCall == nil {
			return false
		}
		if len(p.AppIDs) > 0 && !containsID(p.AppIDs, tx.AppCall.ApplicationID) {
			return false
		}
		if p.AppArg != "" && !containsArg(tx.AppCall.ApplicationArgs, p.AppArg) {
			return false
		}
		if p.OnCompletion != "" && tx.AppCall.OnCompletion != p.OnCompletion {
			return false
		}
	}
	return true
}

func (s *signature) matches(wallet string, group []Transaction) bool {
	if len(group) != len(s.Legs) {
		return false
	}
	for i := range s.Legs {
		if !s.Legs[i].matches(wallet, &group[i]) {
			return false
		}
	}
	return true
}

func containsID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsArg(args []string, arg string) bool {
	for _, v := range args {
		if v == arg {
			return true
		}
	}
	return false
}

// FolksHandler matches transaction groups against the protocol signatures
// and exports the semantic rows for each recognized operation
type FolksHandler struct {
	aux    *registry.AddressRegistry
	logger *logrus.Logger
}

func NewFolksHandler(aux *registry.AddressRegistry, logger *logrus.Logger) *FolksHandler {
	if logger == nil {
		logger = logrus.New()
	}
	if aux == nil {
		aux = registry.New()
	}
	return &FolksHandler{aux: aux, logger: logger}
}

// Aux returns the auxiliary address registry escrow accounts are added to
func (h *FolksHandler) Aux() *registry.AddressRegistry { return h.aux }

// Match classifies a transaction group. Groups matching no signature return
// OpUnmatched.
func (h *FolksHandler) Match(wallet string, group []Transaction) Operation {
	for i := range folksSignatures {
		if folksSignatures[i].matches(wallet, group) {
			return folksSignatures[i].Op
		}
	}
	return OpUnmatched
}

// IsEscrowAddress reports whether the address was registered as a Folks
// escrow earlier in the run
func (h *FolksHandler) IsEscrowAddress(address string) bool {
	return h.aux.Contains(address)
}

// ProcessGroup matches the group once and exports its rows. Participation
// rewards accrued by the first transaction are always exported, recognized
// or not.
func (h *FolksHandler) ProcessGroup(wallet string, group []Transaction, exporter export.Exporter) Operation {
	if len(group) == 0 {
		return OpUnmatched
	}

	tx := export.TxContext{
		TxID:      group[0].ID,
		Timestamp: group[0].Time(),
		FeeTicker: TickerALGO,
	}
	exportParticipationReward(&group[0], tx, exporter)

	op := h.Match(wallet, group)
	h.logger.WithFields(logrus.Fields{
		"txid":      group[0].ID,
		"operation": op.String(),
		"legs":      len(group),
	}).Debug("processed transaction group")

	switch op {
	case OpOptIn, OpReduceCollateral, OpRewardStakedExchange:
		// No taxable flow of its own

	case OpMint:
		received, _ := innerTransferAsset(&group[0])
		sent, _ := transferAsset(&group[1])
		exporter.Ingest(export.SwapRow(tx, sent.Amount, sent.Ticker, received.Amount, received.Ticker, group[0].FeeAlgo(), commentFolks))

	case OpDeposit:
		sent, _ := transferAsset(&group[1])
		exporter.Ingest(export.DepositCollateralRow(tx, sent.Amount, sent.Ticker, group[0].FeeAlgo(), commentFolks))

	case OpWithdraw:
		received, _ := innerTransferAsset(&group[0])
		exporter.Ingest(export.WithdrawCollateralRow(tx, received.Amount, received.Ticker, group[0].FeeAlgo(), commentFolks))

	case OpAddEscrow:
		h.aux.Add(transferReceiver(&group[0]))

	case OpBorrow, OpIncreaseBorrow:
		received, _ := innerTransferAsset(&group[2])
		exporter.Ingest(export.BorrowRow(tx, received.Amount, received.Ticker, group[1].FeeAlgo(), commentFolks))

	case OpRepayBorrow:
		sent, _ := transferAsset(&group[3])
		exporter.Ingest(export.RepayRow(tx, sent.Amount, sent.Ticker, group[0].FeeAlgo(), commentFolks))

	case OpRewardImmediateExchange:
		reward, _ := innerTransferAsset(&group[0])
		exporter.Ingest(export.RewardRow(tx, reward.Amount, reward.Ticker, group[0].FeeAlgo(), commentFolks))

	default:
		exportUnknownGroup(wallet, group, tx, exporter)
	}
	return op
}

// IsRewardClaim reports whether a single transaction is a reward-aggregator
// claim; such claims arrive outside any group
func IsRewardClaim(tx *Transaction) bool {
	if tx.TxType != TypeAppCall || tx.AppCall == nil {
		return false
	}
	return containsID(folksRewardsAggregators, tx.AppCall.ApplicationID) &&
		containsArg(tx.AppCall.ApplicationArgs, argRewardClaim)
}

// ProcessRewardClaim exports a single-transaction reward claim
func (h *FolksHandler) ProcessRewardClaim(tx *Transaction, exporter export.Exporter) {
	ctx := export.TxContext{TxID: tx.ID, Timestamp: tx.Time(), FeeTicker: TickerALGO}
	exportParticipationReward(tx, ctx, exporter)

	reward, _ := innerTransferAsset(tx)
	exporter.Ingest(export.RewardRow(ctx, reward.Amount, reward.Ticker, tx.FeeAlgo(), commentFolks))
}
