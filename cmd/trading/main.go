package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-fx/internal/aggregator"
	"github.com/rxtech-lab/argo-fx/internal/broker"
	"github.com/rxtech-lab/argo-fx/internal/config"
	"github.com/rxtech-lab/argo-fx/internal/engine"
	"github.com/rxtech-lab/argo-fx/internal/eventbus"
	"github.com/rxtech-lab/argo-fx/internal/indicator"
	"github.com/rxtech-lab/argo-fx/internal/lifecycle"
	"github.com/rxtech-lab/argo-fx/internal/logger"
	"github.com/rxtech-lab/argo-fx/internal/performance"
	"github.com/rxtech-lab/argo-fx/internal/risk"
	"github.com/rxtech-lab/argo-fx/internal/strategy"
	"github.com/rxtech-lab/argo-fx/internal/tradelog"
	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/internal/version"
)

// tradeAction wires the decision pipeline and runs it until interrupted.
func tradeAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	if cmd.Float("equity") <= 0 {
		return fmt.Errorf("initial equity must be positive")
	}

	// The simulated connector is the only transport wired in; live
	// terminal transports implement the same broker.Connector contract.
	connector := broker.NewSimulated(cmd.Float("equity"), cfg.Spec)
	supervisor := broker.NewSupervisor(connector, cfg.Connector, log)

	bus := eventbus.NewBus(256, log)
	defer bus.Close()

	stop := risk.NewEmergencyStop()

	metrics := performance.NewMetrics()
	registry := prometheus.NewRegistry()

	if err := metrics.Register(registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	snapshotPath := filepath.Join(cfg.DataDir, "performance.yaml")
	tracker := performance.NewTracker(cfg.Risk, stop, bus, metrics, snapshotPath, log)

	tradeLog, err := tradelog.NewWriter(filepath.Join(cfg.DataDir, "trades.csv"))
	if err != nil {
		return fmt.Errorf("failed to open trade log: %w", err)
	}
	defer tradeLog.Close()

	manager := lifecycle.NewManager(connector, cfg.Lifecycle, cfg.Spec, bus, log)
	riskManager := risk.NewManager(cfg.Risk, cfg.Spec, tracker, manager, stop, log)

	strategies, err := strategy.ForNames(cfg.EnabledStrategies)
	if err != nil {
		return fmt.Errorf("failed to build strategies: %w", err)
	}

	eng := engine.NewEngine(engine.Options{
		Config:     cfg,
		Supervisor: supervisor,
		Indicators: indicator.NewEngine(indicator.NewDefaultRegistry(), cfg.Engine.CandleWindowSize, log),
		Aggregator: aggregator.NewAggregator(strategies, cfg.Aggregator, log),
		Risk:       riskManager,
		Lifecycle:  manager,
		Tracker:    tracker,
		Bus:        bus,
		TradeLog:   tradeLog,
		Logger:     log,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutdown requested")
		cancel()
	}()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

		server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()

		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			server.Shutdown(shutdownCtx)
		}()

		log.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
	}

	// Notification subscriber: everything the pipeline announces goes
	// to the structured log; a chat or dashboard notifier would attach
	// the same way.
	go func() {
		for event := range bus.Subscribe() {
			fields := []zap.Field{zap.String("symbol", event.Symbol)}

			for key, value := range event.Details {
				fields = append(fields, zap.String(key, value))
			}

			log.Info(string(event.Type), fields...)
		}
	}()

	log.Info("trading engine starting",
		zap.Strings("symbols", cfg.Symbols),
		zap.Int("timeframes", len(cfg.Timeframes)),
		zap.Strings("strategies", cfg.EnabledStrategies),
	)

	if err := eng.Run(runCtx); err != nil && err != context.Canceled {
		return fmt.Errorf("engine stopped: %w", err)
	}

	stats := tracker.CurrentStats()
	log.Info("trading engine stopped",
		zap.Int("trades", stats.Cumulative.TradesToday),
		zap.Float64("realized_pnl", stats.Cumulative.RealizedPnL),
		zap.Float64("win_rate", stats.Cumulative.WinRate),
		zap.Float64("max_drawdown_pct", stats.Cumulative.MaxDrawdownPct),
	)

	return nil
}

// statsAction prints a persisted performance snapshot.
func statsAction(_ context.Context, cmd *cli.Command) error {
	snapshot, err := types.ReadPerformanceSnapshot(cmd.String("snapshot"))
	if err != nil {
		return fmt.Errorf("failed to read performance snapshot: %w", err)
	}

	fmt.Printf("session start:   %s\n", snapshot.SessionStart.Format(time.RFC3339))
	fmt.Printf("day %s: %d trades, %d wins, %d losses, win rate %.1f%%\n",
		snapshot.Daily.Date, snapshot.Daily.TradesToday, snapshot.Daily.Wins,
		snapshot.Daily.Losses, snapshot.Daily.WinRate*100)
	fmt.Printf("cumulative:      %d trades, pnl %.2f, max drawdown %.2f%%\n",
		snapshot.Cumulative.TradesToday, snapshot.Cumulative.RealizedPnL,
		snapshot.Cumulative.MaxDrawdownPct)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "trading",
		Usage:   "Run the multi-timeframe forex trading engine",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Start the trading engine",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the YAML configuration file",
						Required: true,
					},
					&cli.FloatFlag{
						Name:  "equity",
						Usage: "Initial paper account equity",
						Value: 10000,
					},
				},
				Action: tradeAction,
			},
			{
				Name:  "stats",
				Usage: "Print a persisted performance snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "snapshot",
						Aliases: []string{"s"},
						Usage:   "Path to the performance snapshot file",
						Value:   "data/performance.yaml",
					},
				},
				Action: statsAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
