package strategy_test

import (
	"testing"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
	"github.com/alejandrodnm/tacticalbt/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGapParams() strategy.RSIGapParams {
	p := strategy.DefaultRSIGapParams()
	p.RSIPeriod = 2
	return p
}

// enterGap lleva la estrategia hasta la entrada de la barra 2 y devuelve
// la acción de compra. La serie deja el RSI(2) en ~55.6 y un gap de
// apertura del −4.5%, ambos dentro de los filtros.
func enterGap(t *testing.T, r *strategy.RSIGap, bars []domain.Bar) domain.Action {
	t.Helper()
	snap := strategy.Snapshot{Cash: 10000, TotalValue: 10000}
	for i := 0; i < 2; i++ {
		action := r.Evaluate("XOM", i, bars, snap)
		require.Equal(t, domain.ActionHold, action.Kind, "bar %d", i)
	}
	action := r.Evaluate("XOM", 2, bars, snap)
	require.Equal(t, domain.ActionBuy, action.Kind)
	return action
}

func gapBars(tail ...float64) []domain.Bar {
	closes := append([]float64{10, 11, 10.2}, tail...)
	bars := barsFromCloses(closes...)
	// Gap bajista moderado en la barra de señal.
	bars[2].Open = 10.5
	return bars
}

func TestRSIGapEntry(t *testing.T) {
	r := strategy.NewRSIGap(testGapParams(), 1)
	bars := gapBars()

	action := enterGap(t, r, bars)
	assert.Equal(t, "gap_entry", action.Reason)
	assert.Equal(t, 952, action.Shares) // int(10000 / 10.5)
}

func TestRSIGapEntrySplitsCashAcrossUniverse(t *testing.T) {
	r := strategy.NewRSIGap(testGapParams(), 4)
	bars := gapBars()

	action := enterGap(t, r, bars)
	assert.Equal(t, 238, action.Shares) // int(10000 / 10.5 / 4)
}

func TestRSIGapRejectsWideGap(t *testing.T) {
	r := strategy.NewRSIGap(testGapParams(), 1)
	bars := gapBars()
	bars[2].Open = 12.5 // gap de +13.6%, fuera de rango

	snap := strategy.Snapshot{Cash: 10000, TotalValue: 10000}
	action := r.Evaluate("XOM", 2, bars, snap)
	assert.Equal(t, domain.ActionHold, action.Kind)
}

func TestRSIGapRejectsOverboughtRSI(t *testing.T) {
	r := strategy.NewRSIGap(testGapParams(), 1)
	// Serie solo alcista: RSI 100, por encima del máximo admitido.
	bars := barsFromCloses(10, 11, 12)
	bars[2].Open = 10.9

	snap := strategy.Snapshot{Cash: 10000, TotalValue: 10000}
	action := r.Evaluate("XOM", 2, bars, snap)
	assert.Equal(t, domain.ActionHold, action.Kind)
}

func TestRSIGapProfitTarget(t *testing.T) {
	r := strategy.NewRSIGap(testGapParams(), 1)
	bars := gapBars(10.8) // 10.8 ≥ 10.5 × 1.02

	enterGap(t, r, bars)
	held := strategy.Snapshot{Cash: 4, TotalValue: 10000, Shares: 952}
	action := r.Evaluate("XOM", 3, bars, held)
	require.Equal(t, domain.ActionClose, action.Kind)
	assert.Equal(t, "profit_target", action.Reason)
}

func TestRSIGapTrailingStop(t *testing.T) {
	r := strategy.NewRSIGap(testGapParams(), 1)
	// Sube a 10.6 (nuevo máximo) y luego cae bajo 10.6 × 0.985.
	bars := gapBars(10.6, 10.40)

	enterGap(t, r, bars)
	held := strategy.Snapshot{Cash: 4, TotalValue: 10000, Shares: 952}

	action := r.Evaluate("XOM", 3, bars, held)
	require.Equal(t, domain.ActionHold, action.Kind)

	action = r.Evaluate("XOM", 4, bars, held)
	require.Equal(t, domain.ActionClose, action.Kind)
	assert.Equal(t, "trailing_stop", action.Reason)
}

func TestRSIGapMaxHoldDays(t *testing.T) {
	p := testGapParams()
	p.MaxHoldDays = 2
	r := strategy.NewRSIGap(p, 1)
	// Plano tras la entrada: ni target ni stop, sale por tiempo.
	bars := gapBars(10.5, 10.5)

	enterGap(t, r, bars)
	held := strategy.Snapshot{Cash: 4, TotalValue: 10000, Shares: 952}

	action := r.Evaluate("XOM", 3, bars, held)
	require.Equal(t, domain.ActionHold, action.Kind)

	action = r.Evaluate("XOM", 4, bars, held)
	require.Equal(t, domain.ActionClose, action.Kind)
	assert.Equal(t, "max_hold_days", action.Reason)
}

func TestRSIGapReentersAfterExit(t *testing.T) {
	r := strategy.NewRSIGap(testGapParams(), 1)
	bars := gapBars(10.8)

	enterGap(t, r, bars)
	held := strategy.Snapshot{Cash: 4, TotalValue: 10000, Shares: 952}
	action := r.Evaluate("XOM", 3, bars, held)
	require.Equal(t, domain.ActionClose, action.Kind)

	// Tras el cierre el estado queda limpio y puede evaluar entradas.
	flat := strategy.Snapshot{Cash: 10200, TotalValue: 10200}
	action = r.Evaluate("XOM", 4, append(bars, bars[2]), flat)
	assert.NotEqual(t, domain.ActionClose, action.Kind)
}
