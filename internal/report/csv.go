package report

// csv.go — export del historial de trades y del resumen estadístico,
// con el mismo layout de ficheros que producía el sistema original:
// trades_history_<tag>.csv y detailed_statistics_<tag>.csv.

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
)

// WriteTradesCSV vuelca el historial de trades a dir/trades_history_<tag>.csv.
func WriteTradesCSV(dir, tag string, trades []domain.TradeRecord) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("trades_history_%s.csv", tag))
	file, err := createFile(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{
		"symbol", "entry_date", "exit_date", "entry_price", "exit_price",
		"shares", "pnl", "return_pct", "exit_reason",
	}); err != nil {
		return "", fmt.Errorf("report.WriteTradesCSV: header: %w", err)
	}

	for _, t := range trades {
		row := []string{
			t.Symbol,
			t.EntryDate.Format("2006-01-02"),
			t.ExitDate.Format("2006-01-02"),
			formatFloat(t.EntryPrice),
			formatFloat(t.ExitPrice),
			strconv.Itoa(t.Shares),
			formatFloat(t.PnL),
			formatFloat(t.ReturnPct),
			t.ExitReason,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("report.WriteTradesCSV: row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("report.WriteTradesCSV: flush: %w", err)
	}
	return path, nil
}

// WriteSummaryCSV vuelca el resumen a dir/detailed_statistics_<tag>.csv,
// una métrica por fila, más el desglose por motivo de salida.
func WriteSummaryCSV(dir, tag string, s Summary) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("detailed_statistics_%s.csv", tag))
	file, err := createFile(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	rows := [][]string{
		{"metric", "value"},
		{"total_trades", strconv.Itoa(s.TotalTrades)},
		{"win_rate_pct", formatFloat(s.WinRatePct)},
		{"avg_return_pct", formatFloat(s.AvgReturnPct)},
		{"median_return_pct", formatFloat(s.MedianReturnPct)},
		{"std_return_pct", formatFloat(s.StdReturnPct)},
		{"max_return_pct", formatFloat(s.MaxReturnPct)},
		{"min_return_pct", formatFloat(s.MinReturnPct)},
		{"total_pnl", formatFloat(s.TotalPnL)},
		{"avg_win_pnl", formatFloat(s.AvgWinPnL)},
		{"avg_loss_pnl", formatFloat(s.AvgLossPnL)},
		{"verdict", s.Verdict()},
	}

	for _, reason := range sortedKeys(s.ByReason) {
		r := s.ByReason[reason]
		rows = append(rows, []string{
			"exit_reason:" + reason,
			fmt.Sprintf("count=%d avg_return_pct=%s total_pnl=%s",
				r.Count, formatFloat(r.AvgReturnPct), formatFloat(r.TotalPnL)),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("report.WriteSummaryCSV: %w", err)
	}
	return path, nil
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("report: mkdir %q: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("report: create %q: %w", path, err)
	}
	return file, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func sortedKeys(m map[string]ReasonStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
