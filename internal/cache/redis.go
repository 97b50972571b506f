package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/constants"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisCache keeps the most recent report rows in a capped Redis list and
// fans rows out over Pub/Sub for live consumers.
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedisCache creates a cache with its own Redis connection
func NewRedisCache(addr string, logger *logrus.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	return NewRedisCacheFromClient(client, logger)
}

// NewRedisCacheFromClient wraps an existing Redis client
func NewRedisCacheFromClient(client *redis.Client, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisCache{client: client, logger: logger}
}

// AddRecentRow pushes a row onto the recent list, trimming to the cap
func (r *RedisCache) AddRecentRow(ctx context.Context, row *models.Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentRows, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentRows, 0, constants.MaxRecentRows-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push recent row: %w", err)
	}
	return nil
}

// GetRecentRows returns up to limit most recent rows, newest first
func (r *RedisCache) GetRecentRows(ctx context.Context, limit int64) ([]*models.Row, error) {
	if limit <= 0 {
		limit = constants.MaxRecentRows
	}

	vals, err := r.client.LRange(ctx, constants.RedisKeyRecentRows, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("range recent rows: %w", err)
	}

	out := make([]*models.Row, 0, len(vals))
	for _, v := range vals {
		var row models.Row
		if err := json.Unmarshal([]byte(v), &row); err != nil {
			r.logger.WithError(err).Warn("skipping malformed cached row")
			continue
		}
		out = append(out, &row)
	}
	return out, nil
}

// PublishRow publishes a row on the live channel
func (r *RedisCache) PublishRow(ctx context.Context, row *models.Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}
	return r.client.Publish(ctx, constants.PubSubChannelRows, data).Err()
}

// SubscribeRows subscribes to the live row channel and invokes handler for
// each received row until ctx is cancelled
func (r *RedisCache) SubscribeRows(ctx context.Context, handler func(*models.Row)) error {
	pubsub := r.client.Subscribe(ctx, constants.PubSubChannelRows)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var row models.Row
			if err := json.Unmarshal([]byte(msg.Payload), &row); err != nil {
				r.logger.WithError(err).Warn("skipping malformed published row")
				continue
			}
			handler(&row)
		}
	}
}

// Ping checks the Redis connection
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (r *RedisCache) Close() error {
	return r.client.Close()
}
