package sol

import (
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/rpc"
)

const (
	testWallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	mintUSDC   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func parsedInstruction(program, typ string, info map[string]interface{}) rpc.Instruction {
	payload, err := json.Marshal(map[string]interface{}{"type": typ, "info": info})
	if err != nil {
		panic(err)
	}
	return rpc.Instruction{
		Program:   program,
		ProgramID: fmt.Sprintf("%sProgram1111111111111111111111111", program),
		Parsed:    json.RawMessage(payload),
	}
}

// txResult builds a jsonParsed transaction result fixture
func txResult(blockTime int64, fee uint64, accounts []string, pre, post []int64) *rpc.TransactionResult {
	keys := make([]rpc.AccountKey, len(accounts))
	for i, a := range accounts {
		keys[i] = rpc.AccountKey{Pubkey: a}
	}
	return &rpc.TransactionResult{
		BlockTime: &blockTime,
		Meta: &rpc.TransactionMeta{
			Fee:          fee,
			PreBalances:  pre,
			PostBalances: post,
		},
		Transaction: &rpc.Transaction{
			Message: rpc.TransactionMessage{AccountKeys: keys},
		},
	}
}

func tokenBalance(accountIndex int, mint string, uiAmount float64, decimals int) rpc.TokenBalance {
	return rpc.TokenBalance{
		AccountIndex: accountIndex,
		Mint:         mint,
		UITokenAmount: rpc.TokenAmount{
			UIAmount: uiAmount,
			Decimals: decimals,
		},
	}
}
