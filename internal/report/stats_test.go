package report_test

import (
	"testing"
	"time"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
	"github.com/alejandrodnm/tacticalbt/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTrade(symbol string, pnl, returnPct float64, reason string) domain.TradeRecord {
	entry := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return domain.TradeRecord{
		Symbol:     symbol,
		EntryDate:  entry,
		ExitDate:   entry.AddDate(0, 0, 10),
		EntryPrice: 100,
		ExitPrice:  100 * (1 + returnPct/100),
		Shares:     10,
		PnL:        pnl,
		ReturnPct:  returnPct,
		ExitReason: reason,
	}
}

func TestSummarize(t *testing.T) {
	trades := []domain.TradeRecord{
		makeTrade("SPY", 100, 10, "profit_target"),
		makeTrade("SPY", -50, -5, "trailing_stop"),
		makeTrade("QQQ", 200, 20, "profit_target"),
	}

	s := report.Summarize(trades)

	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 66.6667, s.WinRatePct, 1e-3)
	assert.InDelta(t, 8.3333, s.AvgReturnPct, 1e-3)
	assert.InDelta(t, 10, s.MedianReturnPct, 1e-9)
	assert.InDelta(t, 20, s.MaxReturnPct, 1e-9)
	assert.InDelta(t, -5, s.MinReturnPct, 1e-9)
	assert.InDelta(t, 250, s.TotalPnL, 1e-9)
	assert.InDelta(t, 150, s.AvgWinPnL, 1e-9)
	assert.InDelta(t, -50, s.AvgLossPnL, 1e-9)

	require.Contains(t, s.ByReason, "profit_target")
	pt := s.ByReason["profit_target"]
	assert.Equal(t, 2, pt.Count)
	assert.InDelta(t, 15, pt.AvgReturnPct, 1e-9)
	assert.InDelta(t, 300, pt.TotalPnL, 1e-9)

	require.Contains(t, s.BySymbol, "SPY")
	spy := s.BySymbol["SPY"]
	assert.Equal(t, 2, spy.Trades)
	assert.InDelta(t, 2.5, spy.AvgReturnPct, 1e-9)
	assert.InDelta(t, 50, spy.TotalPnL, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := report.Summarize(nil)
	assert.Equal(t, 0, s.TotalTrades)
	assert.Zero(t, s.WinRatePct)
	assert.Zero(t, s.AvgReturnPct)
	assert.Equal(t, "NO_TRADES", s.Verdict())
}

func TestVerdictTiers(t *testing.T) {
	verdict := func(rate float64) string {
		return report.Summary{TotalTrades: 10, WinRatePct: rate}.Verdict()
	}
	assert.Equal(t, "EXCELLENT", verdict(60))
	assert.Equal(t, "GOOD", verdict(55))
	assert.Equal(t, "AVERAGE", verdict(42))
	assert.Equal(t, "POOR", verdict(39.9))
}
