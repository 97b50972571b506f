package sol

import (
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/constants"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/rpc"
)

// derivedTransfers turns wallet balance deltas into directional legs. The
// counterparty side of each leg is left blank; only the wallet side is known
// at this stage.
func derivedTransfers(changes BalanceChanges) TransferSet {
	var set TransferSet
	for account, delta := range changes {
		if delta.Amount > 0 {
			set.In = append(set.In, Transfer{
				Amount:      delta.Amount,
				Ticker:      delta.Ticker,
				Destination: account,
			})
		} else if delta.Amount < 0 {
			set.Out = append(set.Out, Transfer{
				Amount:      -delta.Amount,
				Ticker:      delta.Ticker,
				Source:      account,
			})
		}
	}
	return set
}

// instructionTransfers reconstructs legs from parsed transfer instructions.
// Balance deltas miss moves that net to zero on the wallet (pool deposits
// immediately swapped out, wrapped-SOL round trips); the instruction stream
// still records them.
//
// Direction is decided by wallet-account membership of the parties. A
// transfer where neither side belongs to the wallet lands in the unknown
// bucket and is surfaced via the logger.
func instructionTransfers(txid string, instrs []rpc.Instruction, walletAccounts map[string]bool, accountToMint map[string]string, assets map[string]Asset, logger *logrus.Logger) TransferSet {
	var set TransferSet
	for _, instr := range instrs {
		if instr.Program != constants.ProgramSystem && instr.Program != constants.ProgramSPLToken {
			continue
		}
		parsed, ok := instr.ParsedInfo()
		if !ok || parsed.Type != "transfer" {
			continue
		}
		info := parsed.Info

		amount, ticker := instructionAmount(parsed, accountToMint, assets)
		if amount == 0 {
			continue
		}

		// Moves between two wallet-owned accounts are internal
		if walletAccounts[info.Source] && walletAccounts[info.Destination] {
			continue
		}

		leg := Transfer{
			Amount:      amount,
			Ticker:      ticker,
			Source:      info.Source,
			Destination: info.Destination,
		}
		switch {
		case walletAccounts[info.Source] || walletAccounts[info.Authority]:
			set.Out = append(set.Out, leg)
		case walletAccounts[info.Destination]:
			set.In = append(set.In, leg)
		default:
			logger.WithFields(logrus.Fields{
				"txid":        txid,
				"source":      info.Source,
				"destination": info.Destination,
				"ticker":      ticker,
			}).Error("transfer instruction with no wallet party")
			set.Unknown = append(set.Unknown, leg)
		}
	}
	return set
}

// instructionAmount resolves the amount and currency of one parsed transfer.
// Native transfers carry lamports; token transfers carry a raw amount whose
// mint is implied by the token accounts involved.
func instructionAmount(parsed *rpc.ParsedInstruction, accountToMint map[string]string, assets map[string]Asset) (float64, string) {
	info := parsed.Info

	if info.Lamports != nil {
		amount := roundTo(float64(*info.Lamports)/constants.Lamports, constants.DecimalsSOL)
		return amount, constants.TickerSOL
	}

	raw := info.Amount
	if raw == "" && info.TokenAmount != nil {
		raw = info.TokenAmount.Amount
	}
	if raw == "" {
		return 0, ""
	}

	mint := accountToMint[info.Source]
	if mint == "" || mint == constants.MintSOL {
		if m := accountToMint[info.Destination]; m != "" && m != constants.MintSOL {
			mint = m
		}
	}
	if mint == "" {
		mint = constants.MintSOL
	}
	return amountCurrency(raw, mint, assets)
}

// mintedTransfers finds mintTo instructions crediting a wallet account.
// Token mints change the post balance without any transfer leg, so they are
// appended as inbound legs with no counterparty.
func mintedTransfers(instrs []rpc.Instruction, inner []rpc.Instruction, walletAccounts map[string]bool, assets map[string]Asset) []Transfer {
	var legs []Transfer
	scan := func(list []rpc.Instruction) {
		for _, instr := range list {
			parsed, ok := instr.ParsedInfo()
			if !ok || parsed.Type != "mintTo" {
				continue
			}
			info := parsed.Info
			if !walletAccounts[info.Account] {
				continue
			}
			amount, ticker := amountCurrency(info.Amount, info.Mint, assets)
			if amount == 0 {
				continue
			}
			legs = append(legs, Transfer{Amount: amount, Ticker: ticker})
		}
	}
	scan(instrs)
	scan(inner)
	return legs
}
