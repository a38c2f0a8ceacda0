package svc

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"novatrade/internal/application/port"
	"novatrade/internal/application/service"
	"novatrade/internal/domain"
	"novatrade/internal/infrastructure/chain"
	"novatrade/internal/infrastructure/config"
	"novatrade/internal/infrastructure/marketdata"
	"novatrade/internal/infrastructure/relay"
	"novatrade/internal/infrastructure/storage"

	// Chain adapters self-register on import.
	_ "novatrade/internal/infrastructure/chain/evm"
	_ "novatrade/internal/infrastructure/chain/nova"
	_ "novatrade/internal/infrastructure/chain/solana"
)

// ServiceContext owns every initialized component and the order they shut
// down in. It is the single entry point for application startup.
type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	Journal port.Journal
	Router  *service.TradeRouter

	Trading   *service.TradeService
	Estimator *service.FeeEstimator
	Feed      *service.MarketFeed

	closerChain []func() error
}

// New builds the full dependency graph: storage, chain adapters, routing,
// market data. Wallet may be nil; submissions then fail with
// ErrWalletUnavailable while quoting keeps working.
func New(ctx context.Context, cfg *config.Config, wallet port.Wallet) (*ServiceContext, error) {
	sc := &ServiceContext{
		Ctx:    ctx,
		Config: cfg,
	}

	if err := sc.initialize(wallet); err != nil {
		_ = sc.Close()
		return nil, err
	}
	return sc, nil
}

func (sc *ServiceContext) initialize(wallet port.Wallet) error {
	if err := sc.initStorage(); err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	if err := sc.initRouter(wallet); err != nil {
		return fmt.Errorf("chain adapter initialization failed: %w", err)
	}

	sink, err := sc.initRelay()
	if err != nil {
		return fmt.Errorf("relay initialization failed: %w", err)
	}

	sc.Trading = service.NewTradeService(domain.MarketSpot, sc.Router, sc.Journal)
	sc.Estimator = service.NewFeeEstimator(sc.Router, sc.Config.FeeDebounce(), sc.Config.FeeRefresh())

	sc.Feed = service.NewMarketFeed(service.MarketFeedDeps{
		Query:       marketdata.NewRESTClient(sc.Config.Market.RestURL),
		Trades:      marketdata.NewTradeStream(sc.Config.Market.WsURL),
		Candles:     marketdata.NewCandleStream(sc.Config.Market.WsURL),
		Sink:        sink,
		TradeBound:  sc.Config.App.TradeWindow,
		CandleBound: sc.Config.App.CandleWindow,
	})

	log.Info().
		Int("chains", len(sc.Router.Chains())).
		Str("symbol", sc.Config.App.Symbol).
		Msg("✓ All components initialized")
	return nil
}

func (sc *ServiceContext) initStorage() error {
	journal, err := storage.Open(sc.Config)
	if err != nil {
		return err
	}
	sc.Journal = journal
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing order journal")
		return journal.Close()
	})

	log.Info().Str("driver", sc.Config.Storage.Driver).Msg("✓ Storage initialized")
	return nil
}

func (sc *ServiceContext) initRouter(wallet port.Wallet) error {
	var adapters []port.ChainAdapter
	for _, name := range sc.Config.EnabledChains() {
		factory, ok := chain.Get(domain.ChainID(name))
		if !ok {
			log.Warn().Str("chain", name).Msg("no adapter registered for enabled chain, skipping")
			continue
		}
		adapters = append(adapters, factory(sc.Config.Chains[name], wallet))
		log.Info().Str("chain", name).Msg("✓ Chain adapter initialized")
	}
	if len(adapters) == 0 {
		return ErrNoChainsEnabled
	}

	sc.Router = service.NewTradeRouter(adapters...)
	return nil
}

func (sc *ServiceContext) initRelay() (port.EventSink, error) {
	if !sc.Config.Relay.Enabled {
		return nil, nil
	}

	sink, err := relay.NewNATSSink(sc.Config.Relay.NatsURL)
	if err != nil {
		return nil, err
	}
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing nats relay")
		sink.Close()
		return nil
	})

	log.Info().Str("url", sc.Config.Relay.NatsURL).Msg("✓ NATS relay initialized")
	return sink, nil
}

// Start launches the background services. Shutdown runs through Close, not
// through the passed context alone.
func (sc *ServiceContext) Start(ctx context.Context) {
	sc.Estimator.Start(ctx)
	sc.Feed.Start(ctx)
	sc.Feed.SetSymbol(sc.Config.App.Symbol)
}

// Close releases every resource in reverse initialization order.
func (sc *ServiceContext) Close() error {
	if sc.Feed != nil {
		sc.Feed.Close()
	}
	if sc.Estimator != nil {
		sc.Estimator.Close()
	}

	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
	return nil
}
