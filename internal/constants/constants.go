package constants

import "time"

// Redis keys
const (
	RedisKeyRecentRows = "rows:recent"
)

// Redis Pub/Sub channels
const (
	PubSubChannelRows = "rows:live"
)

// Limits
const (
	MaxRecentRows      = 200
	SignatureBatchSize = 100
)

// Rate limiting
const (
	// Requests per second against the RPC node while walking history.
	HistoryFetchRate = 4
)

// Native asset
const (
	MintSOL     = "So11111111111111111111111111111111111111112"
	TickerSOL   = "SOL"
	DecimalsSOL = 9
	Lamports    = 1_000_000_000
)

// Program identifiers seen in jsonParsed instructions
const (
	ProgramStake            = "stake"
	ProgramSPLToken         = "spl-token"
	ProgramSystem           = "system"
	InstructionTypeDelegate = "delegate"
)

// Known program addresses
var ProgramAddresses = map[string]string{
	"Jupiter": "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4",
	"Stake":   "Stake11111111111111111111111111111111111111",
}

// Token mint addresses to symbols
var TokenSymbols = map[string]string{
	"So11111111111111111111111111111111111111112":  "SOL",
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "USDC",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": "USDT",
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So":  "mSOL",
	"7dHbWXmci3dT8UFYWYZweBLXgycu7Y3iL6trKn1Y7ARj": "stSOL",
	"7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs": "ETH",
	"3NZ9JMVBmGAqocybic2c7LQCJScmgsAZ6vQqTDzcqmJh": "BTC",
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": "BONK",
	"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN":  "JUP",
	"4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R": "RAY",
	"orcaEKTdK7LKz57vaAYr9QeNsVEPfiu6QeMU1kektZE":  "ORCA",
}

// Default timeouts
const (
	DefaultRPCTimeout = 30 * time.Second
)
