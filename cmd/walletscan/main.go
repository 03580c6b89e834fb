// Command walletscan fetches one wallet's full snapshot (transactions,
// balances, kiosk NFTs) and prints it as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/borkprotocol/bork-wallet-sdk/internal/adapters/defillama"
	"github.com/borkprotocol/bork-wallet-sdk/internal/adapters/graphql"
	"github.com/borkprotocol/bork-wallet-sdk/internal/adapters/kiosk"
	"github.com/borkprotocol/bork-wallet-sdk/internal/adapters/metadata"
	"github.com/borkprotocol/bork-wallet-sdk/internal/adapters/price"
	"github.com/borkprotocol/bork-wallet-sdk/internal/config"
	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"github.com/borkprotocol/bork-wallet-sdk/internal/core/service"
	"github.com/borkprotocol/bork-wallet-sdk/pkg/cache"
	"github.com/borkprotocol/bork-wallet-sdk/pkg/fetch"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	walletFlag := flag.String("wallet", "", "wallet address to scan (falls back to WALLET_ADDRESS)")
	floorFlag := flag.String("floor", "", "collection floor price in SUI, stamped on every kiosk item")
	protocolsFlag := flag.String("protocols", "", "list DeFi protocols for a chain instead of scanning a wallet")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()

	var err error
	if *protocolsFlag != "" {
		err = runProtocols(*protocolsFlag, logger)
	} else {
		err = run(*walletFlag, *floorFlag, logger)
	}
	if err != nil {
		logger.Error("scan failed", zap.Error(err))
		os.Exit(1)
	}
}

func runProtocols(chainArg string, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fetcher := fetch.NewClient(cfg.Retry, logger)
	llama := defillama.NewClient(cfg.ProtocolsEndpoint, fetcher, logger)
	protocols := service.NewProtocolService(llama, logger)

	summary := protocols.FetchProtocols(ctx, domain.ExtractChain(chainArg))
	return printJSON(summary)
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func run(walletArg, floorArg string, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if walletArg == "" {
		walletArg = cfg.WalletAddress
	}
	addr, err := domain.ParseAddress(walletArg)
	if err != nil {
		// Accept free text that merely contains an address.
		extracted, ok := domain.ExtractAddress(walletArg)
		if !ok {
			return err
		}
		addr = extracted
	}

	var floor *decimal.Decimal
	if floorArg != "" {
		value, err := decimal.NewFromString(floorArg)
		if err != nil {
			return fmt.Errorf("invalid floor price %q: %w", floorArg, err)
		}
		floor = &value
	}

	fetcher := fetch.NewClient(cfg.Retry, logger)
	graph := graphql.NewClient(cfg.GraphQLEndpoint, fetcher, logger)
	prices := price.NewDexscreenerClient(cfg.PriceEndpoint, fetcher, logger)
	meta := metadata.NewBlockberryClient(cfg.MetadataEndpoint, cfg.MetadataAPIKey, fetcher, logger)
	kioskIndex := kiosk.NewClient(cfg.KioskEndpoint, fetcher, logger)

	var durable cache.Store
	if cfg.Redis.Address != "" {
		store, err := cache.NewRedisStore(&cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, running with in-memory cache only", zap.Error(err))
		} else {
			durable = store
		}
	}
	layered := cache.NewLayered(cache.NewMemoryStore(0), durable, service.KioskCacheNamespace)
	defer layered.Close()

	kiosks := service.NewKioskService(kioskIndex, graph, meta, layered, logger)
	kiosks.SetConcurrency(cfg.NFTConcurrency)
	kiosks.SetCacheTTL(cfg.CacheTTL)
	activity := service.NewActivityService(graph, prices, logger)
	activity.SetPageDelay(cfg.PageDelay)
	wallet := service.NewWalletService(
		activity,
		service.NewBalanceService(graph, prices, logger),
		kiosks,
		logger,
	)

	snap, err := wallet.Snapshot(ctx, addr, floor)
	if err != nil {
		return err
	}
	return printJSON(snap)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
