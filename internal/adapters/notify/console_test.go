package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/tacticalbt/internal/adapters/notify"
	"github.com/alejandrodnm/tacticalbt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeResult(trades ...domain.TradeRecord) domain.RunResult {
	return domain.RunResult{
		RunID:          "test-run",
		Strategy:       "hybrid",
		Symbols:        []string{"SPY"},
		Start:          time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC),
		InitialCash:    100000,
		FinalValue:     104500,
		TotalReturnPct: 4.5,
		Trades:         trades,
		Elapsed:        120 * time.Millisecond,
	}
}

func makeClosedTrade(symbol string, pnl, returnPct float64) domain.TradeRecord {
	entry := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return domain.TradeRecord{
		Symbol:     symbol,
		EntryDate:  entry,
		ExitDate:   entry.AddDate(0, 0, 20),
		EntryPrice: 470.25,
		ExitPrice:  470.25 * (1 + returnPct/100),
		Shares:     10,
		PnL:        pnl,
		ReturnPct:  returnPct,
		ExitReason: "strategy_exit",
	}
}

func TestConsoleNotifyWithTrades(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	result := makeResult(
		makeClosedTrade("SPY", 4500, 9.57),
		makeClosedTrade("SPY", -120, -0.26),
	)
	require.NoError(t, c.Notify(context.Background(), result))

	out := buf.String()
	assert.Contains(t, out, "BACKTEST hybrid — SPY")
	assert.Contains(t, out, "2024-01-02")
	assert.Contains(t, out, "104500.00")
	assert.Contains(t, out, "strategy_exit")
	assert.Contains(t, out, "Win rate: 50.0%")
}

func TestConsoleNotifyCompactSkipsTradeTable(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, c.Notify(context.Background(), makeResult(
		makeClosedTrade("SPY", 4500, 9.57),
	)))

	out := buf.String()
	assert.Contains(t, out, "BACKTEST hybrid")
	// Sin tabla de trades en modo compact.
	assert.NotContains(t, out, "strategy_exit")
	assert.Contains(t, out, "Win rate: 100.0%")
}

func TestConsoleNotifyNoTrades(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, c.Notify(context.Background(), makeResult()))
	assert.Contains(t, buf.String(), "No se ejecutó ningún trade")
}

func TestConsolePrintSweep(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	a := makeResult(makeClosedTrade("AAA", 1000, 2.1))
	a.Symbols = []string{"AAA"}
	b := makeResult(makeClosedTrade("BBB", -500, -1.2))
	b.Symbols = []string{"BBB"}

	c.PrintSweep(
		[]domain.RunResult{a, b},
		append(a.Trades, b.Trades...),
		map[string]error{"CCC": assert.AnError},
	)

	out := buf.String()
	assert.Contains(t, out, "SWEEP — 2 symbols, 1 failed")
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "BBB")
	assert.Contains(t, out, "CCC")
	assert.Contains(t, out, "Win rate: 50.0%")
}
