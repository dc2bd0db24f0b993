package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/ovbet/overbot/internal/adapter"
	"github.com/ovbet/overbot/internal/chain"
	"github.com/ovbet/overbot/internal/crypto"
	"github.com/ovbet/overbot/internal/domain"
	"github.com/ovbet/overbot/internal/markets"
	"github.com/ovbet/overbot/internal/notify"
	"github.com/ovbet/overbot/internal/relay"
	"github.com/ovbet/overbot/internal/server"
	"github.com/ovbet/overbot/internal/server/handler"
	"github.com/ovbet/overbot/internal/server/ws"
	"github.com/ovbet/overbot/internal/trading"
)

// tradingStack bundles the submission pipeline built for trade-capable modes.
type tradingStack struct {
	wallet    *chain.Wallet
	processor *trading.Processor
	quoter    *trading.Quoter

	// execBudget is the default live execution budget in seconds, the
	// configured value capped by the processor contract's on-chain bound.
	execBudget int
}

// TradeMode runs the trade submission pipeline behind the HTTP API. The API
// is the submission surface, so trade mode always serves it.
func (a *App) TradeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting trade mode")

	g, ctx := errgroup.WithContext(ctx)

	stack, err := a.buildTradingStack(ctx, deps)
	if err != nil {
		return fmt.Errorf("trade mode: %w", err)
	}
	a.closers = append(a.closers, stack.wallet.Close)

	a.startHTTPServer(ctx, g, deps, stack)

	return g.Wait()
}

// ServerMode serves the read-only HTTP API (tickets, markets, status stream)
// without a wallet, plus the archival loop when enabled. Trade submission
// responds 503 in this mode.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)

	a.startHTTPServer(ctx, g, deps, nil)
	a.startArchiveLoop(ctx, g, deps)

	return g.Wait()
}

// MonitorMode relays ticket transitions from the signal bus to the operator
// notifier. It places no trades and serves no HTTP.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ch, err := deps.SignalBus.Subscribe(ctx, notify.TicketChannel)
		if err != nil {
			return fmt.Errorf("monitor mode: subscribe %s: %w", notify.TicketChannel, err)
		}
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case payload, ok := <-ch:
				if !ok {
					return nil
				}
				a.relayTicketUpdate(ctx, deps, payload)
			}
		}
	})

	return g.Wait()
}

// FullMode runs every subsystem: the trading pipeline, the HTTP API, and the
// archival loop.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	stack, err := a.buildTradingStack(ctx, deps)
	if err != nil {
		return fmt.Errorf("full mode: %w", err)
	}
	a.closers = append(a.closers, stack.wallet.Close)

	a.startHTTPServer(ctx, g, deps, stack)
	a.startArchiveLoop(ctx, g, deps)

	return g.Wait()
}

// buildTradingStack creates the wallet, contract handles, and the trade
// pipeline. The caller owns the wallet and must register its Close.
func (a *App) buildTradingStack(ctx context.Context, deps *Dependencies) (*tradingStack, error) {
	key, err := crypto.LoadKey(crypto.KeyConfig{
		RawPrivateKey: a.cfg.Wallet.PrivateKey,
		KeyfilePath:   a.cfg.Wallet.KeyfilePath,
		KeyPassword:   a.cfg.Wallet.KeyPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("build trading stack: %w", err)
	}

	wallet, err := chain.NewWallet(ctx, a.cfg.Chain.RPCURL, key, a.cfg.Chain.NetworkID, a.logger)
	if err != nil {
		return nil, fmt.Errorf("build trading stack: %w", err)
	}

	contracts, err := a.contractSet()
	if err != nil {
		wallet.Close()
		return nil, fmt.Errorf("build trading stack: %w", err)
	}

	var relayExec trading.RelayExecutor
	if a.cfg.Relay.Host != "" {
		relayExec = relay.NewClient(a.cfg.Relay.Host, a.cfg.Relay.APIKey)
	}

	sink := notify.MultiSink{
		notify.NewStoreSink(deps.TicketStore, a.logger),
		notify.NewBusSink(deps.SignalBus, a.logger),
		notify.NewNotifySink(deps.Notifier),
	}

	poller := trading.NewPoller(
		adapter.NewClient(a.cfg.Overtime.APIHost, a.cfg.Chain.NetworkID),
		sink,
		a.logger,
	)
	poller.SetTickInterval(a.cfg.Trading.TickInterval.Duration)

	pdeps := trading.ProcessorDeps{
		Builder:   trading.NewBuilder(contracts, a.logger),
		Estimator: trading.NewEstimator(wallet, wallet.Address(), a.logger),
		Submitter: trading.NewSubmitter(wallet, relayExec, a.cfg.Chain.NetworkID, a.logger),
		Receipts:  wallet,
		Poller:    poller,
		Contracts: contracts,
		Store:     deps.TicketStore,
		Sink:      sink,
	}
	var liveReader *chain.ProcessorReader
	if contracts.LiveProcessor != nil {
		liveReader = chain.NewProcessorReader(contracts.LiveProcessor, wallet)
		pdeps.LiveReader = liveReader
	}
	if contracts.SGPProcessor != nil {
		pdeps.SGPReader = chain.NewProcessorReader(contracts.SGPProcessor, wallet)
	}

	stack := &tradingStack{
		wallet:     wallet,
		processor:  trading.NewProcessor(pdeps, a.logger),
		execBudget: a.cfg.Trading.DefaultMaxExecutionSec,
	}
	if contracts.SportsAMM != nil {
		stack.quoter = trading.NewQuoter(chain.NewAMMReader(contracts.SportsAMM, wallet))
	}

	if liveReader != nil {
		onchain, err := liveReader.MaxAllowedExecutionDelay(ctx)
		if err != nil {
			a.logger.WarnContext(ctx, "reading max allowed execution delay failed",
				slog.String("error", err.Error()),
			)
		} else {
			stack.execBudget = capExecutionBudget(stack.execBudget, onchain)
		}
	}

	return stack, nil
}

// capExecutionBudget clamps the configured live execution budget to the
// processor contract's maxAllowedExecutionDelay when the contract reports a
// tighter bound. A non-positive on-chain value leaves the configured budget
// untouched.
func capExecutionBudget(configured, onchain int) int {
	if onchain <= 0 {
		return configured
	}
	if configured <= 0 || configured > onchain {
		return onchain
	}
	return configured
}

// contractSet builds contract handles for every configured address. Missing
// addresses leave the handle nil; the builder rejects requests that need one.
func (a *App) contractSet() (trading.Contracts, error) {
	var set trading.Contracts

	bind := func(dst **chain.Contract, role chain.Role, addr string) error {
		if addr == "" {
			return nil
		}
		c, err := chain.NewContract(role, common.HexToAddress(addr))
		if err != nil {
			return fmt.Errorf("contract %s: %w", role, err)
		}
		*dst = c
		return nil
	}

	if err := bind(&set.SportsAMM, chain.RoleSportsAMM, a.cfg.Contracts.SportsAMM); err != nil {
		return set, err
	}
	if err := bind(&set.FreeBetHolder, chain.RoleFreeBetHolder, a.cfg.Contracts.FreeBetHolder); err != nil {
		return set, err
	}
	if err := bind(&set.LiveProcessor, chain.RoleLiveProcessor, a.cfg.Contracts.LiveProcessor); err != nil {
		return set, err
	}
	if err := bind(&set.SGPProcessor, chain.RoleSGPProcessor, a.cfg.Contracts.SGPProcessor); err != nil {
		return set, err
	}

	return set, nil
}

// startHTTPServer adds the HTTP server and WebSocket hub goroutines to the
// given errgroup. When stack is nil the submission and quote endpoints are
// disabled and the API is read-only.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, stack *tradingStack) {
	probes := make(map[string]handler.Pinger, len(deps.HealthProbes))
	for name, probe := range deps.HealthProbes {
		probes[name] = probe
	}
	health := handler.NewHealthHandler(probes, a.logger)

	client := markets.NewClient(a.cfg.Overtime.APIHost, a.cfg.Chain.NetworkID)
	snapshot := markets.NewSnapshot(client, a.logger)
	marketSvc := markets.NewService(snapshot, client, deps.MarketCache, a.logger)

	var trades handler.TradeService
	var quotes *handler.QuoteHandler
	execBudget := a.cfg.Trading.DefaultMaxExecutionSec
	if stack != nil {
		trades = stack.processor
		execBudget = stack.execBudget
		if stack.quoter != nil {
			quotes = handler.NewQuoteHandler(stack.quoter, a.logger)
		}
	}

	tickets := handler.NewTicketHandler(deps.TicketStore, trades, a.logger).
		WithDefaultExecutionBudget(execBudget)

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})

	srv := server.New(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, server.Handlers{
		Health:  health,
		Tickets: tickets,
		Markets: handler.NewMarketHandler(marketSvc, a.logger),
		Quotes:  quotes,
	}, deps.RateLimiter, hub, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// startArchiveLoop adds the settled-ticket archival goroutine when archival
// is configured.
func (a *App) startArchiveLoop(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	if !a.cfg.Archive.Enabled || deps.Archiver == nil {
		return
	}

	interval := a.cfg.Archive.Interval.Duration
	retention := time.Duration(a.cfg.Archive.RetentionDays) * 24 * time.Hour

	g.Go(func() error {
		a.logger.InfoContext(ctx, "archival loop started",
			slog.Duration("interval", interval),
			slog.Int("retention_days", a.cfg.Archive.RetentionDays),
		)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				cutoff := time.Now().UTC().Add(-retention)
				archived, err := deps.Archiver.ArchiveSettled(ctx, cutoff)
				if err != nil {
					a.logger.ErrorContext(ctx, "archival run failed",
						slog.String("error", err.Error()),
					)
					continue
				}
				if archived > 0 {
					a.logger.InfoContext(ctx, "archival run completed",
						slog.Int64("tickets", archived),
						slog.Time("cutoff", cutoff),
					)
				}
			}
		}
	})
}

// relayTicketUpdate forwards one bus transition to the operator notifier.
func (a *App) relayTicketUpdate(ctx context.Context, deps *Dependencies, payload []byte) {
	var u domain.StatusUpdate
	if err := json.Unmarshal(payload, &u); err != nil {
		a.logger.WarnContext(ctx, "monitor: bad ticket update payload",
			slog.String("error", err.Error()),
		)
		return
	}
	title := "Ticket " + u.TicketID
	_ = deps.Notifier.Notify(ctx, string(u.State), title, u.Message)
}
