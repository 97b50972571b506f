package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/cache"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/config"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/export"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/models"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/rpc"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/sol"
	"github.com/aman-zulfiqar/wallet-tax-indexer/internal/tickers"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main replays one wallet's transaction history and fans the resulting
// report rows out to the Redis cache and the ClickHouse store
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.ValidateAnalyzer(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// Reject malformed wallet addresses before any network traffic
	if _, err := solana.PublicKeyFromBase58(cfg.WalletAddress); err != nil {
		logger.WithError(err).WithField("wallet", cfg.WalletAddress).Fatal("invalid wallet address")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: 0})
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	rowCache := cache.NewRedisCacheFromClient(rclient, logger)
	defer rowCache.Close()

	store, err := cache.NewClickHouseStore(cache.ClickHouseConfig{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDatabase,
		Username: cfg.ClickHouseUsername,
		Password: cfg.ClickHousePassword,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to ClickHouse")
	}
	defer store.Close()

	client := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	tickerStore, err := tickers.NewStore(rclient)
	if err != nil {
		logger.WithError(err).Fatal("failed to create ticker store")
	}

	parser := sol.NewParser(sol.ParserConfig{
		Fetcher: client,
		Symbols: tickers.NewResolver(tickerStore),
		Logger:  logger,
	})

	history := sol.NewHistory(sol.HistoryConfig{
		Source:            client,
		Parser:            parser,
		RequestsPerSecond: cfg.FetchRate,
		Logger:            logger,
	})

	// Fan each row out to the cache, the live channel, and the store
	sink := export.FuncExporter(func(row *models.Row) {
		if err := rowCache.AddRecentRow(ctx, row); err != nil {
			logger.WithError(err).Warn("redis cache error")
		}
		if err := rowCache.PublishRow(ctx, row); err != nil {
			logger.WithError(err).Warn("pubsub error")
		}
		if err := store.InsertRow(ctx, row); err != nil {
			logger.WithError(err).Error("clickhouse insert error")
		}
	})

	processed, err := history.Run(ctx, cfg.WalletAddress, sink)
	if err != nil {
		logger.WithError(err).Fatal("analysis failed")
	}

	logger.WithFields(logrus.Fields{
		"wallet":    cfg.WalletAddress,
		"processed": processed,
	}).Info("analysis complete")
}
