package sol

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/rpc"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/tickers"
)

type fakeFetcher map[string]rpc.TokenAccountInfo

func (f fakeFetcher) GetTokenAccountsByOwner(_ context.Context, _ string) (map[string]rpc.TokenAccountInfo, error) {
	return f, nil
}

func newTestParser(accounts fakeFetcher) *Parser {
	return NewParser(ParserConfig{
		Fetcher: accounts,
		Symbols: tickers.NewResolver(nil),
		Logger:  testLogger(),
	})
}

func TestParseMissingBlockTimeSkips(t *testing.T) {
	p := newTestParser(fakeFetcher{})

	rec, err := p.Parse(context.Background(), "sig1", nil, testWallet)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Skipped)
	assert.Equal(t, "sig1", rec.TxID)

	noTime := &rpc.TransactionResult{Meta: &rpc.TransactionMeta{}}
	rec, err = p.Parse(context.Background(), "sig2", noTime, testWallet)
	require.NoError(t, err)
	assert.True(t, rec.Skipped)
}

func TestParseFailedExecutionExcluded(t *testing.T) {
	p := newTestParser(fakeFetcher{})

	result := txResult(1700000000, 5000, []string{testWallet}, []int64{10}, []int64{5})
	result.Meta.Err = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}

	rec, err := p.Parse(context.Background(), "sig1", result, testWallet)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestParseNativeTransfer(t *testing.T) {
	p := newTestParser(fakeFetcher{})

	result := txResult(1700000000, 5000,
		[]string{testWallet, "receiver"},
		[]int64{2000005000, 0},
		[]int64{1000000000, 1000000000},
	)

	rec, err := p.Parse(context.Background(), "sig1", result, testWallet)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.False(t, rec.Skipped)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), rec.Timestamp)
	assert.Equal(t, 0.000005, rec.Fee)

	require.Len(t, rec.TransfersNet.Out, 1)
	assert.Equal(t, 1.0, rec.TransfersNet.Out[0].Amount)
	assert.Equal(t, "SOL", rec.TransfersNet.Out[0].Ticker)
	assert.Empty(t, rec.TransfersNet.In)
}

func TestParseTokenReceive(t *testing.T) {
	p := newTestParser(fakeFetcher{"walletUSDC": {Mint: mintUSDC, Decimals: 6}})

	result := txResult(1700000000, 5000,
		[]string{"sender", testWallet, "walletUSDC", "senderUSDC"},
		[]int64{1000000000, 500000000, 0, 0},
		[]int64{999995000, 500000000, 0, 0},
	)
	result.Meta.PreTokenBalances = []rpc.TokenBalance{
		tokenBalance(2, mintUSDC, 0, 6),
		tokenBalance(3, mintUSDC, 100, 6),
	}
	result.Meta.PostTokenBalances = []rpc.TokenBalance{
		tokenBalance(2, mintUSDC, 40, 6),
		tokenBalance(3, mintUSDC, 60, 6),
	}

	rec, err := p.Parse(context.Background(), "sig1", result, testWallet)
	require.NoError(t, err)
	require.NotNil(t, rec)

	// The wallet paid no fee here, so nothing is deducted from its legs
	require.Len(t, rec.TransfersNet.In, 1)
	assert.Equal(t, 40.0, rec.TransfersNet.In[0].Amount)
	assert.Equal(t, "USDC", rec.TransfersNet.In[0].Ticker)

	assert.Equal(t, "USDC", rec.Assets[mintUSDC].Ticker)
	assert.Equal(t, mintUSDC, rec.AccountToMint["walletUSDC"])
	assert.True(t, rec.WalletAccounts["walletUSDC"])
}

func TestParseRegistersStakeAccounts(t *testing.T) {
	p := newTestParser(fakeFetcher{})

	result := txResult(1700000000, 5000,
		[]string{testWallet, "stakeAcct1"},
		[]int64{3000005000, 0},
		[]int64{1000000000, 2000000000},
	)
	result.Transaction.Message.Instructions = []rpc.Instruction{
		parsedInstruction("stake", "delegate", map[string]interface{}{
			"stakeAccount": "stakeAcct1", "stakeAuthority": testWallet,
		}),
	}

	_, err := p.Parse(context.Background(), "sig1", result, testWallet)
	require.NoError(t, err)
	assert.True(t, p.Aux().Contains("stakeAcct1"))
}

func TestParseLogMessages(t *testing.T) {
	p := newTestParser(fakeFetcher{})

	result := txResult(1700000000, 5000,
		[]string{testWallet, "receiver"},
		[]int64{1000005000, 0},
		[]int64{0, 1000000000},
	)
	result.Meta.LogMessages = []string{
		"Program 11111111111111111111111111111111 invoke [1]",
		"Program log: Instruction: Transfer",
		"Program log: transfer complete",
		"Program 11111111111111111111111111111111 success",
	}

	rec, err := p.Parse(context.Background(), "sig1", result, testWallet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Transfer"}, rec.LogInstructions)
	assert.Equal(t, []string{"transfer complete"}, rec.Log)
}
