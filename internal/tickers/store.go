package tickers

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	indexKey    = "tickers:index"
	valuePrefix = "tickers:"
)

// Base58 alphabet, the length range of Solana account addresses
var mintRe = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// Store is a Redis-backed registry of mint-to-symbol overrides. It fronts
// the static symbol table so unknown mints discovered during an analysis run
// can be labeled without a redeploy.
type Store struct {
	client redis.Cmdable
}

func NewStore(client redis.Cmdable) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &Store{client: client}, nil
}

func ValidateMint(mint string) error {
	if !mintRe.MatchString(mint) {
		return fmt.Errorf("invalid mint address")
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, mint, symbol string, decimals int) (*Ticker, error) {
	if err := ValidateMint(mint); err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	ticker := &Ticker{Mint: mint, Symbol: symbol, Decimals: decimals, UpdatedAt: time.Now().UTC()}
	b, err := json.Marshal(ticker)
	if err != nil {
		return nil, fmt.Errorf("marshal ticker: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, tickerKey(mint), b, 0)
	pipe.SAdd(ctx, indexKey, mint)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("upsert ticker: %w", err)
	}

	return ticker, nil
}

func (s *Store) Get(ctx context.Context, mint string) (*Ticker, error) {
	if err := ValidateMint(mint); err != nil {
		return nil, err
	}

	val, err := s.client.Get(ctx, tickerKey(mint)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticker: %w", err)
	}

	var t Ticker
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		return nil, fmt.Errorf("unmarshal ticker: %w", err)
	}
	return &t, nil
}

func (s *Store) List(ctx context.Context) ([]*Ticker, error) {
	mints, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list tickers index: %w", err)
	}
	if len(mints) == 0 {
		return []*Ticker{}, nil
	}

	redisKeys := make([]string, 0, len(mints))
	for _, m := range mints {
		if err := ValidateMint(m); err != nil {
			continue
		}
		redisKeys = append(redisKeys, tickerKey(m))
	}
	if len(redisKeys) == 0 {
		return []*Ticker{}, nil
	}

	vals, err := s.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget tickers: %w", err)
	}

	out := make([]*Ticker, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			continue
		}
		var t Ticker
		if err := json.Unmarshal([]byte(str), &t); err != nil {
			continue
		}
		out = append(out, &t)
	}

	return out, nil
}

func (s *Store) Delete(ctx context.Context, mint string) error {
	if err := ValidateMint(mint); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, tickerKey(mint))
	pipe.SRem(ctx, indexKey, mint)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete ticker: %w", err)
	}

	return nil
}

func tickerKey(mint string) string {
	return valuePrefix + mint
}
