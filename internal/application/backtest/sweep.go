package backtest

// sweep.go — worker pool para barrer muchos símbolos con runs
// independientes de un solo instrumento.
//
// Cada run usa su propio broker, su propia estrategia y su propio
// recorder: no hay pool de cash compartido ni tabla de posiciones común,
// así que no se necesita locking entre workers. Los símbolos que fallan
// (datos insuficientes, CSV corrupto) se reportan sin abortar el barrido.

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
	"github.com/alejandrodnm/tacticalbt/internal/ports"
	"github.com/alejandrodnm/tacticalbt/internal/strategy"
)

// StrategyFactory construye una estrategia fresca para un run de un solo
// símbolo. Cada worker la invoca una vez por símbolo.
type StrategyFactory func(symbol string) strategy.Strategy

// SweepResult agrega los resultados de un barrido multi-símbolo.
type SweepResult struct {
	Results      []domain.RunResult
	Trades       []domain.TradeRecord // historial fusionado de todos los runs
	Failed       map[string]error
	TotalInitial float64
	TotalFinal   float64
	Elapsed      time.Duration
}

// TotalReturnPct es el retorno agregado del barrido completo.
func (s SweepResult) TotalReturnPct() float64 {
	if s.TotalInitial == 0 {
		return 0
	}
	return (s.TotalFinal - s.TotalInitial) / s.TotalInitial * 100
}

// Sweep ejecuta un run independiente por símbolo sobre un worker pool.
// Si workers <= 0 usa runtime.NumCPU() × 2.
func Sweep(
	ctx context.Context,
	feed ports.BarFeed,
	symbols []string,
	factory StrategyFactory,
	cfg Config,
	workers int,
	from, to time.Time,
) SweepResult {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	started := time.Now()

	type outcome struct {
		symbol string
		result *domain.RunResult
		err    error
	}

	workCh := make(chan string, len(symbols))
	resultCh := make(chan outcome, len(symbols))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range workCh {
				bars, err := feed.Load(ctx, symbol, from, to)
				if err != nil {
					resultCh <- outcome{symbol: symbol, err: err}
					continue
				}
				engine := New(cfg, factory(symbol))
				result, err := engine.Run(ctx, []string{symbol}, map[string][]domain.Bar{symbol: bars})
				resultCh <- outcome{symbol: symbol, result: result, err: err}
			}
		}()
	}

	for _, symbol := range symbols {
		workCh <- symbol
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	sweep := SweepResult{Failed: make(map[string]error)}
	for out := range resultCh {
		if out.err != nil {
			slog.Warn("sweep: symbol failed", "symbol", out.symbol, "err", out.err)
			sweep.Failed[out.symbol] = out.err
			continue
		}
		sweep.Results = append(sweep.Results, *out.result)
		sweep.Trades = append(sweep.Trades, out.result.Trades...)
		sweep.TotalInitial += out.result.InitialCash
		sweep.TotalFinal += out.result.FinalValue
	}

	// Orden determinista para reporting, independiente del orden de llegada.
	sort.Slice(sweep.Results, func(i, j int) bool {
		return sweep.Results[i].Symbols[0] < sweep.Results[j].Symbols[0]
	})
	sort.Slice(sweep.Trades, func(i, j int) bool {
		if !sweep.Trades[i].ExitDate.Equal(sweep.Trades[j].ExitDate) {
			return sweep.Trades[i].ExitDate.Before(sweep.Trades[j].ExitDate)
		}
		return sweep.Trades[i].Symbol < sweep.Trades[j].Symbol
	})

	sweep.Elapsed = time.Since(started)
	slog.Info("sweep complete",
		"symbols", len(symbols),
		"succeeded", len(sweep.Results),
		"failed", len(sweep.Failed),
		"trades", len(sweep.Trades),
		"elapsed", sweep.Elapsed.Round(time.Millisecond),
	)
	return sweep
}
