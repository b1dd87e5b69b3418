package backtest_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/alejandrodnm/tacticalbt/internal/application/backtest"
	"github.com/alejandrodnm/tacticalbt/internal/domain"
	"github.com/alejandrodnm/tacticalbt/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFeed sirve series en memoria; los símbolos desconocidos fallan.
type stubFeed struct {
	data map[string][]domain.Bar
}

func (f *stubFeed) Load(_ context.Context, symbol string, _, _ time.Time) ([]domain.Bar, error) {
	bars, ok := f.data[symbol]
	if !ok {
		return nil, fmt.Errorf("stub: no data for %s", symbol)
	}
	return bars, nil
}

func (f *stubFeed) AvailableSymbols() ([]string, error) {
	symbols := make([]string, 0, len(f.data))
	for s := range f.data {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols, nil
}

func TestSweepRunsSymbolsIndependently(t *testing.T) {
	feed := &stubFeed{data: map[string][]domain.Bar{
		"AAA": barsFromCloses(10, 12, 13, 9),
		"BBB": barsFromCloses(20, 24, 26, 18),
	}}
	factory := func(string) strategy.Strategy {
		return strategy.NewHybrid(fastHybridParams(), 1)
	}
	cfg := backtest.Config{InitialCash: 100000}

	sweep := backtest.Sweep(context.Background(), feed,
		[]string{"AAA", "BBB"}, factory, cfg, 4, time.Time{}, time.Time{})

	require.Len(t, sweep.Results, 2)
	require.Empty(t, sweep.Failed)

	// Orden determinista por símbolo, no por llegada de los workers.
	assert.Equal(t, []string{"AAA"}, sweep.Results[0].Symbols)
	assert.Equal(t, []string{"BBB"}, sweep.Results[1].Symbols)

	// Cada run parte de su propio cash: nada de pool compartido.
	assert.InDelta(t, 200000, sweep.TotalInitial, 1e-9)
	assert.InDelta(t, sweep.Results[0].FinalValue+sweep.Results[1].FinalValue,
		sweep.TotalFinal, 1e-9)
	assert.Len(t, sweep.Trades, 2)
}

func TestSweepReportsFailedSymbolsWithoutAborting(t *testing.T) {
	feed := &stubFeed{data: map[string][]domain.Bar{
		"AAA": barsFromCloses(10, 12, 13, 9),
	}}
	factory := func(string) strategy.Strategy {
		return strategy.NewHybrid(fastHybridParams(), 1)
	}

	sweep := backtest.Sweep(context.Background(), feed,
		[]string{"AAA", "MISSING"}, factory, backtest.Config{InitialCash: 100000},
		2, time.Time{}, time.Time{})

	require.Len(t, sweep.Results, 1)
	assert.Equal(t, []string{"AAA"}, sweep.Results[0].Symbols)
	require.Len(t, sweep.Failed, 1)
	assert.Error(t, sweep.Failed["MISSING"])
	assert.InDelta(t, 100000, sweep.TotalInitial, 1e-9)
}

func TestSweepTotalReturnPct(t *testing.T) {
	s := backtest.SweepResult{TotalInitial: 200000, TotalFinal: 210000}
	assert.InDelta(t, 5.0, s.TotalReturnPct(), 1e-9)

	assert.Zero(t, backtest.SweepResult{}.TotalReturnPct())
}
