package sol

import (
	"strings"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/constants"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/registry"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/rpc"
)

// walletAccountSet resolves the full set of accounts controlled by the wallet
// within one transaction: the wallet itself, its token accounts, accounts the
// instruction stream proves are wallet-owned, and any auxiliary addresses
// registered by earlier transactions (stake accounts, escrows).
func walletAccountSet(wallet string, tokenAccounts map[string]rpc.TokenAccountInfo, instrs []rpc.Instruction, inner []rpc.Instruction, aux *registry.AddressRegistry) map[string]bool {
	accounts := map[string]bool{wallet: true}
	for account := range tokenAccounts {
		accounts[account] = true
	}
	if aux != nil {
		for _, address := range aux.Addresses() {
			accounts[address] = true
		}
	}

	// One transitive expansion: instructions may reference wallet-owned
	// accounts the token lookup missed (freshly created, already closed).
	discovered := instructionAccounts(wallet, accounts, instrs)
	for account := range instructionAccounts(wallet, accounts, inner) {
		discovered[account] = true
	}
	for account := range discovered {
		accounts[account] = true
	}
	return accounts
}

// instructionAccounts scans parsed instructions for accounts tied to the
// wallet. An instruction whose role keys intersect the known set contributes
// its remaining role keys; closeAccount sending rent back to the wallet
// contributes the closed account.
func instructionAccounts(wallet string, known map[string]bool, instrs []rpc.Instruction) map[string]bool {
	found := make(map[string]bool)
	for _, instr := range instrs {
		parsed, ok := instr.ParsedInfo()
		if !ok {
			continue
		}

		switch parsed.Type {
		case "initializeAccount", "initializeAccount3", "approve", "transfer", "transferChecked":
			keys := roleKeys(parsed)
			intersects := false
			for _, key := range keys {
				if known[key] {
					intersects = true
					break
				}
			}
			if !intersects {
				continue
			}
			for _, key := range keys {
				if key == "" || known[key] || strings.HasPrefix(key, "Token") {
					continue
				}
				found[key] = true
			}
		case "closeAccount":
			if parsed.Info.Destination == wallet && parsed.Info.Account != "" {
				found[parsed.Info.Account] = true
			}
		}
	}
	return found
}

func roleKeys(parsed *rpc.ParsedInstruction) []string {
	info := parsed.Info
	return []string{info.Authority, info.Source, info.NewAccount, info.Owner, info.Account}
}

// stakingAddresses finds stake accounts the wallet delegated in this
// transaction. The caller registers them so later transactions (rewards,
// deactivation) attribute their balance changes to the wallet.
func stakingAddresses(wallet string, instrs []rpc.Instruction) []string {
	var addresses []string
	for _, instr := range instrs {
		if instr.Program != constants.ProgramStake {
			continue
		}
		parsed, ok := instr.ParsedInfo()
		if !ok || parsed.Type != constants.InstructionTypeDelegate {
			continue
		}
		if parsed.Info.StakeAuthority == wallet && parsed.Info.StakeAccount != "" {
			addresses = append(addresses, parsed.Info.StakeAccount)
		}
	}
	return addresses
}
