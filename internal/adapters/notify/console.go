package notify

// console.go — presentación del resultado de un run en consola: cabecera
// del run, tabla de trades, desgloses por motivo y por símbolo, y el
// veredicto del win rate.

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
	"github.com/alejandrodnm/tacticalbt/internal/report"
)

// maxTradeRows limita la tabla de trades para barridos grandes.
const maxTradeRows = 50

// Console implementa ports.Notifier.
type Console struct {
	out     io.Writer
	compact bool
}

// NewConsole crea un notificador que escribe a stdout.
// En modo compact solo imprime el resumen, sin tabla de trades.
func NewConsole(compact bool) *Console {
	return &Console{out: os.Stdout, compact: compact}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, compact bool) *Console {
	return &Console{out: w, compact: compact}
}

// Notify imprime el resultado del run en el modo configurado.
func (c *Console) Notify(_ context.Context, result domain.RunResult) error {
	summary := report.Summarize(result.Trades)

	c.printHeader(result)
	if !c.compact && len(result.Trades) > 0 {
		c.printTrades(result.Trades)
	}
	c.printSummary(summary)
	if len(result.OpenPositions) > 0 {
		c.printOpenPositions(result.OpenPositions)
	}
	return nil
}

// PrintSweep imprime la tabla por símbolo de un barrido más el resumen
// agregado de todos los trades.
func (c *Console) PrintSweep(results []domain.RunResult, trades []domain.TradeRecord, failed map[string]error) {
	fmt.Fprintf(c.out, "\n=== SWEEP — %d symbols, %d failed ===\n", len(results), len(failed))

	table := tablewriter.NewWriter(c.out)
	table.Header("Symbol", "Trades", "Final", "Return%", "Profit")
	for _, r := range results {
		table.Append(
			r.Symbols[0],
			fmt.Sprintf("%d", len(r.Trades)),
			fmt.Sprintf("$%.2f", r.FinalValue),
			fmt.Sprintf("%+.2f%%", r.TotalReturnPct),
			fmt.Sprintf("%+.2f", r.Profit()),
		)
	}
	table.Render()

	if len(failed) > 0 {
		symbols := make([]string, 0, len(failed))
		for s := range failed {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)
		for _, s := range symbols {
			fmt.Fprintf(c.out, "  ✗ %s: %v\n", s, failed[s])
		}
	}

	c.printSummary(report.Summarize(trades))
}

func (c *Console) printHeader(result domain.RunResult) {
	fmt.Fprintf(c.out, "\n=== BACKTEST %s — %s ===\n",
		result.Strategy, symbolsLabel(result.Symbols))
	fmt.Fprintf(c.out, "  Period:  %s – %s\n",
		result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))
	fmt.Fprintf(c.out, "  Initial: $%.2f   Final: $%.2f\n", result.InitialCash, result.FinalValue)

	profit := result.Profit()
	switch {
	case profit > 0:
		fmt.Fprintf(c.out, "  Profit:  +$%.2f (%+.2f%%) ✓\n", profit, result.TotalReturnPct)
	case profit < 0:
		fmt.Fprintf(c.out, "  Loss:    -$%.2f (%.2f%%) ✗\n", -profit, result.TotalReturnPct)
	default:
		fmt.Fprintf(c.out, "  Flat:    $0.00 (0.00%%)\n")
	}
	fmt.Fprintf(c.out, "  Trades:  %d closed, %d still open   (%s)\n",
		len(result.Trades), len(result.OpenPositions), result.Elapsed.Round(time.Millisecond))
}

func (c *Console) printTrades(trades []domain.TradeRecord) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Symbol", "Entry", "Exit", "Entry$", "Exit$", "Shares", "PnL", "Ret%", "Reason")

	shown := trades
	if len(shown) > maxTradeRows {
		shown = shown[len(shown)-maxTradeRows:]
	}
	offset := len(trades) - len(shown)

	for i, t := range shown {
		table.Append(
			fmt.Sprintf("%d", offset+i+1),
			t.Symbol,
			t.EntryDate.Format("2006-01-02"),
			t.ExitDate.Format("2006-01-02"),
			fmt.Sprintf("%.2f", t.EntryPrice),
			fmt.Sprintf("%.2f", t.ExitPrice),
			fmt.Sprintf("%d", t.Shares),
			fmt.Sprintf("%+.2f", t.PnL),
			fmt.Sprintf("%+.2f", t.ReturnPct),
			t.ExitReason,
		)
	}
	table.Render()

	if offset > 0 {
		fmt.Fprintf(c.out, "  (últimos %d de %d trades)\n", len(shown), len(trades))
	}
}

func (c *Console) printSummary(s report.Summary) {
	if s.TotalTrades == 0 {
		fmt.Fprintf(c.out, "\n  ⚠ No se ejecutó ningún trade — ajusta las condiciones o amplía el periodo\n\n")
		return
	}

	fmt.Fprintf(c.out, "\n  Avg ret: %+.2f%%  median %+.2f%%  std %.2f%%  (max %+.2f%% / min %+.2f%%)\n",
		s.AvgReturnPct, s.MedianReturnPct, s.StdReturnPct, s.MaxReturnPct, s.MinReturnPct)
	fmt.Fprintf(c.out, "  Win rate: %.1f%% (%dW/%dL) — %s   PnL total: %+.2f\n",
		s.WinRatePct, s.Wins, s.Losses, s.Verdict(), s.TotalPnL)

	if len(s.ByReason) > 1 {
		fmt.Fprintf(c.out, "  Por motivo de salida:\n")
		reasons := make([]string, 0, len(s.ByReason))
		for r := range s.ByReason {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			r := s.ByReason[reason]
			fmt.Fprintf(c.out, "    %-15s ×%-4d avg %+.2f%%  pnl %+.2f\n",
				reason, r.Count, r.AvgReturnPct, r.TotalPnL)
		}
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printOpenPositions(open []domain.OpenPosition) {
	fmt.Fprintf(c.out, "  Posiciones abiertas al cierre del run:\n")
	for _, p := range open {
		fmt.Fprintf(c.out, "    %-8s %d acciones desde %s a %.2f (último %.2f)\n",
			p.Symbol, p.Shares, p.EntryDate.Format("2006-01-02"), p.EntryPrice, p.LastPrice)
	}
	fmt.Fprintln(c.out)
}

func symbolsLabel(symbols []string) string {
	if len(symbols) == 1 {
		return symbols[0]
	}
	return fmt.Sprintf("%d symbols", len(symbols))
}
