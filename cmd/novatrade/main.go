package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"novatrade/internal/infrastructure/config"
	"novatrade/internal/infrastructure/logger"
	"novatrade/internal/infrastructure/svc"
)

func main() {
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	symbol := flag.String("symbol", "", "override the watched market symbol")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	if *symbol != "" {
		cfg.App.Symbol = *symbol
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// No wallet in headless mode: fee quoting and market data work, trade
	// submission reports ErrWalletUnavailable.
	sc, err := svc.New(ctx, cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("service context initialization failed")
	}
	defer sc.Close()

	sc.Feed.OnDegraded(func(symbol string) {
		log.Warn().Str("symbol", symbol).Msg("market feed degraded, data may be stale")
	})
	sc.Start(ctx)

	log.Info().
		Str("config", *configPath).
		Str("symbol", cfg.App.Symbol).
		Msg("novatrade started")

	watch(ctx, sc)
}

// watch logs a feed summary once a minute until shutdown.
func watch(ctx context.Context, sc *svc.ServiceContext) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case <-ticker.C:
			snap := sc.Feed.Snapshot()
			ev := log.Info().
				Str("symbol", snap.Symbol).
				Str("state", string(snap.State)).
				Bool("degraded", snap.Degraded).
				Int("trades", len(snap.Trades)).
				Int("candles", len(snap.Candles))
			if last, ok := sc.Feed.LastPrice(); ok {
				ev = ev.Float64("last_price", last)
			}
			ev.Msg("market feed")
		}
	}
}
