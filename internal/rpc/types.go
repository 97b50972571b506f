package rpc

import "encoding/json"

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// SignatureInfo represents a transaction signature from getSignaturesForAddress
type SignatureInfo struct {
	Signature string      `json:"signature"`
	Slot      int64       `json:"slot"`
	Err       interface{} `json:"err"`
	BlockTime int64       `json:"blockTime"`
}

// SignaturesResponse is the response from getSignaturesForAddress
type SignaturesResponse struct {
	Result []SignatureInfo `json:"result"`
	Error  *RPCError       `json:"error"`
}

// TokenAmount represents token balance information
type TokenAmount struct {
	Amount         string  `json:"amount"`
	Decimals       int     `json:"decimals"`
	UIAmountString string  `json:"uiAmountString"`
	UIAmount       float64 `json:"uiAmount"`
}

// TokenBalance represents a token balance entry
type TokenBalance struct {
	AccountIndex  int         `json:"accountIndex"`
	Mint          string      `json:"mint"`
	UITokenAmount TokenAmount `json:"uiTokenAmount"`
}

// InstructionInfo holds the parsed info block of a jsonParsed instruction.
// Only the fields the transfer and account resolvers care about are mapped.
type InstructionInfo struct {
	Amount         string       `json:"amount,omitempty"`
	Lamports       *uint64      `json:"lamports,omitempty"`
	TokenAmount    *TokenAmount `json:"tokenAmount,omitempty"`
	Authority      string       `json:"authority,omitempty"`
	Source         string       `json:"source,omitempty"`
	Destination    string       `json:"destination,omitempty"`
	Mint           string       `json:"mint,omitempty"`
	Account        string       `json:"account,omitempty"`
	NewAccount     string       `json:"newAccount,omitempty"`
	Owner          string       `json:"owner,omitempty"`
	StakeAccount   string       `json:"stakeAccount,omitempty"`
	StakeAuthority string       `json:"stakeAuthority,omitempty"`
}

// ParsedInstruction is the decoded form of an instruction's "parsed" field
type ParsedInstruction struct {
	Type string          `json:"type"`
	Info InstructionInfo `json:"info"`
}

// Instruction represents one jsonParsed instruction (top level or inner)
type Instruction struct {
	Program   string          `json:"program,omitempty"`
	ProgramID string          `json:"programId"`
	Parsed    json.RawMessage `json:"parsed,omitempty"`
	Accounts  []string        `json:"accounts,omitempty"`
}

// ParsedInfo decodes the instruction's parsed field. The RPC returns either an
// object or a bare string depending on whether the program is known to the
// node, so callers must check ok before using the result.
func (ix *Instruction) ParsedInfo() (*ParsedInstruction, bool) {
	if len(ix.Parsed) == 0 || ix.Parsed[0] != '{' {
		return nil, false
	}
	var p ParsedInstruction
	if err := json.Unmarshal(ix.Parsed, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// InnerInstructionGroup wraps the inner instructions emitted by one top-level
// instruction
type InnerInstructionGroup struct {
	Index        int           `json:"index"`
	Instructions []Instruction `json:"instructions"`
}

// TransactionMeta contains metadata about a transaction
type TransactionMeta struct {
	Err               interface{}             `json:"err"`
	Fee               uint64                  `json:"fee"`
	PreBalances       []int64                 `json:"preBalances"`
	PostBalances      []int64                 `json:"postBalances"`
	PreTokenBalances  []TokenBalance          `json:"preTokenBalances"`
	PostTokenBalances []TokenBalance          `json:"postTokenBalances"`
	InnerInstructions []InnerInstructionGroup `json:"innerInstructions"`
	LogMessages       []string                `json:"logMessages"`
}

// AccountKey represents an account in a transaction
type AccountKey struct {
	Pubkey string `json:"pubkey"`
}

// TransactionMessage contains the transaction message
type TransactionMessage struct {
	AccountKeys  []AccountKey  `json:"accountKeys"`
	Instructions []Instruction `json:"instructions"`
}

// Transaction represents a parsed transaction
type Transaction struct {
	Message TransactionMessage `json:"message"`
}

// TransactionResult contains the full transaction data
type TransactionResult struct {
	BlockTime   *int64           `json:"blockTime"`
	Meta        *TransactionMeta `json:"meta"`
	Transaction *Transaction     `json:"transaction"`
}

// TransactionResponse is the response from getTransaction
type TransactionResponse struct {
	Result *TransactionResult `json:"result"`
	Error  *RPCError          `json:"error"`
}

// TokenAccountInfo describes one token account owned by a wallet
type TokenAccountInfo struct {
	Mint     string
	Decimals int
}

// tokenAccountsResponse is the raw response from getTokenAccountsByOwner
type tokenAccountsResponse struct {
	Result *struct {
		Value []struct {
			Pubkey  string `json:"pubkey"`
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							Mint        string      `json:"mint"`
							TokenAmount TokenAmount `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

// InnerInstructionsFlat flattens all inner instruction groups into one list,
// preserving order
func (m *TransactionMeta) InnerInstructionsFlat() []Instruction {
	if m == nil || len(m.InnerInstructions) == 0 {
		return nil
	}
	var out []Instruction
	for _, group := range m.InnerInstructions {
		out = append(out, group.Instructions...)
	}
	return out
}
