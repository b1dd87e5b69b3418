package backtest

// engine.go — bucle de simulación síncrono, barra a barra.
//
// En lugar del dispatch por callbacks del framework original (next() por
// barra, notificaciones de órdenes y trades), el engine es un bucle
// explícito: para cada fecha, para cada instrumento en orden fijo, se
// evalúa la política y se aplica su acción al broker. La detección de
// cierre de posición es el valor de retorno de SubmitClose, no un
// callback entrante.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/tacticalbt/internal/adapters/broker"
	"github.com/alejandrodnm/tacticalbt/internal/domain"
	"github.com/alejandrodnm/tacticalbt/internal/strategy"
)

// Config controla una simulación.
type Config struct {
	InitialCash   float64
	CommissionBps float64
}

// Engine ejecuta una simulación completa sobre un conjunto de series.
// Un engine posee en exclusiva su broker, su estrategia y su recorder;
// nunca se comparte entre runs.
type Engine struct {
	cfg      Config
	strategy strategy.Strategy
	broker   *broker.Sim
	recorder *Recorder
}

// New crea un engine listo para un run.
func New(cfg Config, strat strategy.Strategy) *Engine {
	if cfg.InitialCash <= 0 {
		cfg.InitialCash = 100000
	}
	return &Engine{
		cfg:      cfg,
		strategy: strat,
		broker:   broker.NewSim(cfg.InitialCash, cfg.CommissionBps),
		recorder: NewRecorder(),
	}
}

// series empareja un símbolo con su serie y el cursor de avance.
type series struct {
	symbol string
	bars   []domain.Bar
	next   int // índice de la próxima barra no procesada
}

// Run procesa todas las barras en orden cronológico estricto. Dentro de
// una fecha los instrumentos se evalúan en el orden de symbols — sin
// coordinación entre instrumentos. La cancelación del contexto aborta el
// run entero (granularidad de run, no de barra).
func (e *Engine) Run(ctx context.Context, symbols []string, data map[string][]domain.Bar) (*domain.RunResult, error) {
	if len(symbols) == 0 {
		return nil, errors.New("backtest.Run: no symbols")
	}

	started := time.Now()

	all := make([]*series, 0, len(symbols))
	for _, symbol := range symbols {
		bars, ok := data[symbol]
		if !ok || len(bars) == 0 {
			return nil, fmt.Errorf("backtest.Run: no data for %s", symbol)
		}
		all = append(all, &series{symbol: symbol, bars: bars})
	}

	dates := unionDates(all)
	equity := make([]domain.EquityPoint, 0, len(dates))

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest.Run: aborted at %s: %w", date.Format("2006-01-02"), err)
		}

		for _, s := range all {
			if s.next >= len(s.bars) || !s.bars[s.next].Date.Equal(date) {
				continue // el instrumento no cotiza esta fecha
			}
			i := s.next
			s.next++

			bar := s.bars[i]
			e.broker.Mark(s.symbol, bar.Close)

			snap := strategy.Snapshot{
				Cash:       e.broker.Cash(),
				TotalValue: e.broker.TotalValue(),
				Shares:     e.broker.PositionSize(s.symbol),
			}
			action := e.strategy.Evaluate(s.symbol, i, s.bars, snap)
			e.apply(s.symbol, date, action)
		}

		equity = append(equity, domain.EquityPoint{Date: date, Value: e.broker.TotalValue()})
	}

	final := e.broker.TotalValue()
	result := &domain.RunResult{
		RunID:          uuid.NewString(),
		Strategy:       e.strategy.Name(),
		Symbols:        symbols,
		Start:          dates[0],
		End:            dates[len(dates)-1],
		InitialCash:    e.cfg.InitialCash,
		FinalValue:     final,
		TotalReturnPct: (final - e.cfg.InitialCash) / e.cfg.InitialCash * 100,
		Trades:         e.recorder.Trades(),
		OpenPositions:  e.broker.OpenPositions(),
		EquityCurve:    equity,
		Elapsed:        time.Since(started),
	}

	slog.Info("backtest complete",
		"strategy", result.Strategy,
		"symbols", len(symbols),
		"bars", len(dates),
		"trades", len(result.Trades),
		"final_value", fmt.Sprintf("%.2f", final),
		"return_pct", fmt.Sprintf("%.2f", result.TotalReturnPct),
	)
	return result, nil
}

// apply ejecuta la acción de la estrategia contra el broker. Las compras
// rechazadas por cash insuficiente y los cierres sin posición son ramas
// normales de control, no errores del run.
func (e *Engine) apply(symbol string, date time.Time, action domain.Action) {
	switch action.Kind {
	case domain.ActionBuy:
		// Posición residual: se aplana antes de reabrir.
		if e.broker.PositionSize(symbol) > 0 {
			if notice, err := e.broker.SubmitClose(symbol, date); err == nil {
				e.recorder.Record(notice, "strategy_exit")
			}
		}
		if err := e.broker.SubmitBuy(symbol, action.Shares, date); err != nil {
			if errors.Is(err, broker.ErrInsufficientCash) {
				slog.Debug("buy skipped", "symbol", symbol, "shares", action.Shares, "err", err)
				return
			}
			slog.Warn("buy rejected", "symbol", symbol, "shares", action.Shares, "err", err)
			return
		}
		slog.Debug("long entry", "symbol", symbol,
			"date", date.Format("2006-01-02"), "shares", action.Shares, "reason", action.Reason)

	case domain.ActionClose:
		notice, err := e.broker.SubmitClose(symbol, date)
		if err != nil {
			if errors.Is(err, broker.ErrNoPosition) {
				return
			}
			slog.Warn("close rejected", "symbol", symbol, "err", err)
			return
		}
		e.recorder.Record(notice, action.Reason)
		slog.Debug("position closed", "symbol", symbol,
			"date", date.Format("2006-01-02"),
			"pnl", fmt.Sprintf("%.2f", notice.NetPnL), "reason", action.Reason)
	}
}

// unionDates devuelve la unión ordenada de las fechas de todas las series.
func unionDates(all []*series) []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, s := range all {
		for _, b := range s.bars {
			if _, ok := seen[b.Date]; !ok {
				seen[b.Date] = struct{}{}
				dates = append(dates, b.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
