package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alejandrodnm/tacticalbt/config"
	"github.com/alejandrodnm/tacticalbt/internal/adapters/feed"
	"github.com/alejandrodnm/tacticalbt/internal/adapters/notify"
	"github.com/alejandrodnm/tacticalbt/internal/adapters/storage"
	"github.com/alejandrodnm/tacticalbt/internal/application/backtest"
	"github.com/alejandrodnm/tacticalbt/internal/domain"
	"github.com/alejandrodnm/tacticalbt/internal/report"
	"github.com/alejandrodnm/tacticalbt/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	symbol := flag.String("symbol", "", "run a single-symbol backtest (e.g. AAPL)")
	symbols := flag.String("symbols", "", "comma-separated symbol list (default: all local data)")
	strategyName := flag.String("strategy", "", "strategy: hybrid|rsigap (overrides config)")
	start := flag.String("start", "", "start date YYYY-MM-DD (overrides config)")
	end := flag.String("end", "", "end date YYYY-MM-DD (overrides config)")
	sweep := flag.Bool("sweep", false, "one independent run per symbol over a worker pool")
	workers := flag.Int("workers", 0, "sweep worker count (overrides config)")
	limit := flag.Int("limit", 0, "max symbols to test")
	fetch := flag.String("fetch", "", "download daily data for these symbols (e.g. aapl.us,msft.us) and exit")
	dryRun := flag.Bool("dry-run", false, "skip SQLite persistence and CSV export")
	compact := flag.Bool("compact", false, "summary only, no trade table")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *strategyName != "" {
		cfg.Backtest.Strategy = *strategyName
	}
	if *start != "" {
		cfg.Backtest.Start = *start
	}
	if *end != "" {
		cfg.Backtest.End = *end
	}
	if *workers > 0 {
		cfg.Backtest.Workers = *workers
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *fetch != "" {
		runFetch(ctx, cfg, splitList(*fetch))
		return
	}

	from, err := cfg.StartDate()
	if err != nil {
		slog.Error("bad start date", "err", err)
		os.Exit(1)
	}
	to, err := cfg.EndDate()
	if err != nil {
		slog.Error("bad end date", "err", err)
		os.Exit(1)
	}

	barFeed := feed.NewCSVFeed(cfg.Data.Dir)
	universe := resolveSymbols(barFeed, *symbol, *symbols, *limit)
	if len(universe) == 0 {
		slog.Error("no symbols to test", "data_dir", cfg.Data.Dir)
		os.Exit(1)
	}

	slog.Info("tacticalbt starting",
		"config", *configPath,
		"strategy", cfg.Backtest.Strategy,
		"symbols", len(universe),
		"sweep", *sweep,
		"period", fmt.Sprintf("%s – %s", cfg.Backtest.Start, cfg.Backtest.End),
	)

	var store *storage.SQLiteStorage
	if !*dryRun {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	engineCfg := backtest.Config{
		InitialCash:   cfg.Backtest.InitialCash,
		CommissionBps: cfg.Backtest.CommissionBps,
	}
	console := notify.NewConsole(*compact)

	if *sweep {
		runSweep(ctx, cfg, engineCfg, barFeed, console, store, universe, from, to, *dryRun)
		return
	}

	strat, err := buildStrategy(cfg, len(universe))
	if err != nil {
		slog.Error("bad strategy", "err", err)
		os.Exit(1)
	}

	data := make(map[string][]domain.Bar, len(universe))
	for _, s := range universe {
		bars, err := barFeed.Load(ctx, s, from, to)
		if err != nil {
			slog.Error("failed to load data", "symbol", s, "err", err)
			os.Exit(1)
		}
		data[s] = bars
	}

	engine := backtest.New(engineCfg, strat)
	result, err := engine.Run(ctx, universe, data)
	if err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}

	if err := console.Notify(ctx, *result); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if !*dryRun {
		if err := store.SaveRun(ctx, *result); err != nil {
			slog.Warn("failed to persist run", "err", err)
		}
		exportCSV(cfg.Data.OutputDir, csvTag(universe), result.Trades)
	}
}

// runSweep ejecuta un run independiente por símbolo y agrega resultados.
func runSweep(
	ctx context.Context,
	cfg *config.Config,
	engineCfg backtest.Config,
	barFeed *feed.CSVFeed,
	console *notify.Console,
	store *storage.SQLiteStorage,
	universe []string,
	from, to time.Time,
	dryRun bool,
) {
	factory := func(string) strategy.Strategy {
		// Cada run del barrido es mono-instrumento: universo de 1.
		strat, err := buildStrategy(cfg, 1)
		if err != nil {
			panic(err) // validado antes de llegar aquí
		}
		return strat
	}
	if _, err := buildStrategy(cfg, 1); err != nil {
		slog.Error("bad strategy", "err", err)
		os.Exit(1)
	}

	result := backtest.Sweep(ctx, barFeed, universe, factory, engineCfg, cfg.Backtest.Workers, from, to)
	console.PrintSweep(result.Results, result.Trades, result.Failed)

	fmt.Printf("  Aggregate: $%.2f → $%.2f (%+.2f%%) in %s\n\n",
		result.TotalInitial, result.TotalFinal, result.TotalReturnPct(),
		result.Elapsed.Round(time.Millisecond))

	if dryRun {
		return
	}
	for _, r := range result.Results {
		if err := store.SaveRun(ctx, r); err != nil {
			slog.Warn("failed to persist run", "run_id", r.RunID, "err", err)
		}
	}
	exportCSV(cfg.Data.OutputDir, "sweep", result.Trades)
}

// buildStrategy construye la estrategia configurada para un universo dado.
func buildStrategy(cfg *config.Config, instrumentCount int) (strategy.Strategy, error) {
	switch cfg.Backtest.Strategy {
	case "hybrid":
		return strategy.NewHybrid(strategy.HybridParams{
			TrendPeriod:    cfg.Hybrid.TrendPeriod,
			MomentumPeriod: cfg.Hybrid.MomentumPeriod,
			Volatility:     cfg.Hybrid.Volatility,
			RebalanceDays:  cfg.Hybrid.RebalanceDays,
			EntryThreshold: cfg.Hybrid.EntryThreshold,
			ExitThreshold:  cfg.Hybrid.ExitThreshold,
			PositionSize:   cfg.Hybrid.PositionSize,
			CashReserve:    cfg.Hybrid.CashReserve,
			MaxPositions:   cfg.Hybrid.MaxPositions,
		}, instrumentCount), nil
	case "rsigap":
		return strategy.NewRSIGap(strategy.RSIGapParams{
			RSIPeriod:    cfg.RSIGap.RSIPeriod,
			MaxHoldDays:  cfg.RSIGap.MaxHoldDays,
			ProfitTarget: cfg.RSIGap.ProfitTarget,
			TrailingStop: cfg.RSIGap.TrailingStop,
			MaxGap:       cfg.RSIGap.MaxGap,
			RSIMin:       cfg.RSIGap.RSIMin,
			RSIMax:       cfg.RSIGap.RSIMax,
		}, instrumentCount), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want hybrid|rsigap)", cfg.Backtest.Strategy)
	}
}

// resolveSymbols decide el universo: -symbol > -symbols > todos los locales.
func resolveSymbols(barFeed *feed.CSVFeed, single, list string, limit int) []string {
	var universe []string
	switch {
	case single != "":
		universe = []string{strings.ToUpper(single)}
	case list != "":
		for _, s := range splitList(list) {
			universe = append(universe, strings.ToUpper(s))
		}
	default:
		available, err := barFeed.AvailableSymbols()
		if err != nil {
			slog.Error("failed to list local data", "err", err)
			os.Exit(1)
		}
		universe = available
	}
	if limit > 0 && len(universe) > limit {
		universe = universe[:limit]
	}
	return universe
}

// exportCSV escribe el historial y el resumen; los fallos solo se loguean.
func exportCSV(dir, tag string, trades []domain.TradeRecord) {
	if path, err := report.WriteTradesCSV(dir, tag, trades); err != nil {
		slog.Warn("failed to export trades CSV", "err", err)
	} else {
		slog.Info("trades exported", "path", path)
	}
	if path, err := report.WriteSummaryCSV(dir, tag, report.Summarize(trades)); err != nil {
		slog.Warn("failed to export summary CSV", "err", err)
	} else {
		slog.Info("summary exported", "path", path)
	}
}

func csvTag(universe []string) string {
	if len(universe) == 1 {
		return universe[0]
	}
	return "multi"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
