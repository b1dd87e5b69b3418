package strategy

// rsigap.go — reversión a la media sobre gaps de apertura con filtro RSI.
// Máquina de estados distinta a la híbrida: entra en gaps moderados con
// RSI intermedio y sale por profit target, trailing stop o tiempo máximo
// en posición. No se fusiona con la híbrida.

import (
	"github.com/alejandrodnm/tacticalbt/internal/domain"
	"github.com/alejandrodnm/tacticalbt/internal/indicators"
)

// RSIGapParams son los parámetros de la estrategia de gaps.
type RSIGapParams struct {
	RSIPeriod    int     // ventana del RSI
	MaxHoldDays  int     // barras máximas en posición
	ProfitTarget float64 // salida con ganancia (fracción sobre entrada)
	TrailingStop float64 // salida bajo el máximo desde la entrada (fracción)
	MaxGap       float64 // gap de apertura máximo admitido (fracción)
	RSIMin       float64 // RSI mínimo exclusivo para entrar
	RSIMax       float64 // RSI máximo exclusivo para entrar
}

// DefaultRSIGapParams replica la parametrización de referencia.
func DefaultRSIGapParams() RSIGapParams {
	return RSIGapParams{
		RSIPeriod:    14,
		MaxHoldDays:  15,
		ProfitTarget: 0.02,
		TrailingStop: 0.015,
		MaxGap:       0.10,
		RSIMin:       15,
		RSIMax:       60,
	}
}

// gapState es el estado por símbolo mientras hay posición abierta.
type gapState struct {
	held       bool
	entryPrice float64 // open de la barra de señal — referencia de los exits
	highest    float64 // máximo close desde la entrada
	entryBar   int
}

// RSIGap implementa strategy.Strategy.
type RSIGap struct {
	params          RSIGapParams
	instrumentCount int
	states          map[string]*gapState
}

// NewRSIGap crea la estrategia para un universo de instrumentCount símbolos
// (el sizing reparte el cash disponible entre todos).
func NewRSIGap(params RSIGapParams, instrumentCount int) *RSIGap {
	if instrumentCount <= 0 {
		instrumentCount = 1
	}
	return &RSIGap{
		params:          params,
		instrumentCount: instrumentCount,
		states:          make(map[string]*gapState),
	}
}

// Name implements Strategy.
func (r *RSIGap) Name() string { return "rsigap" }

// Clone implements Strategy.
func (r *RSIGap) Clone() Strategy {
	clone := *r
	clone.states = make(map[string]*gapState)
	return &clone
}

// Evaluate implements Strategy.
func (r *RSIGap) Evaluate(symbol string, i int, bars []domain.Bar, snap Snapshot) domain.Action {
	st, ok := r.states[symbol]
	if !ok {
		st = &gapState{}
		r.states[symbol] = st
	}

	if !st.held {
		return r.evaluateEntry(st, i, bars, snap)
	}
	return r.evaluateExit(st, i, bars)
}

func (r *RSIGap) evaluateEntry(st *gapState, i int, bars []domain.Bar, snap Snapshot) domain.Action {
	if i < 1 {
		return domain.Hold()
	}

	gap := (bars[i].Open - bars[i-1].Close) / bars[i-1].Close
	rsi, ok := indicators.RSI(closesOf(bars[:i+1]), i, r.params.RSIPeriod)
	if !ok {
		return domain.Hold()
	}
	if gap >= r.params.MaxGap || rsi <= r.params.RSIMin || rsi >= r.params.RSIMax {
		return domain.Hold()
	}

	// Reparto simple del cash entre todos los instrumentos del universo.
	shares := int(snap.Cash / bars[i].Open / float64(r.instrumentCount))
	if shares <= 0 {
		return domain.Hold()
	}

	st.held = true
	st.entryPrice = bars[i].Open
	st.highest = bars[i].Open
	st.entryBar = i
	return domain.Buy(shares, "gap_entry")
}

func (r *RSIGap) evaluateExit(st *gapState, i int, bars []domain.Bar) domain.Action {
	price := bars[i].Close
	if price > st.highest {
		st.highest = price
	}

	switch {
	case price >= st.entryPrice*(1+r.params.ProfitTarget):
		st.reset()
		return domain.Close("profit_target")
	case price <= st.highest*(1-r.params.TrailingStop):
		st.reset()
		return domain.Close("trailing_stop")
	case i-st.entryBar >= r.params.MaxHoldDays:
		st.reset()
		return domain.Close("max_hold_days")
	}
	return domain.Hold()
}

func (st *gapState) reset() {
	*st = gapState{}
}
