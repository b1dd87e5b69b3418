package strategy

// hybrid.go — táctica trend-following con filtro de momentum.
//
// Reglas:
//   - precio por encima de la media móvil larga (con margen) y momentum
//     positivo → invertido al completo en el instrumento;
//   - precio por debajo de la media (con margen) o crash de momentum →
//     todo a cash;
//   - reevaluación solo cada RebalanceDays barras por instrumento, para
//     no quemar comisiones.

import (
	"github.com/alejandrodnm/tacticalbt/internal/domain"
	"github.com/alejandrodnm/tacticalbt/internal/indicators"
)

// crashMomentum es el umbral de pánico: por debajo de −5% de momentum se
// sale del instrumento aunque siga por encima de su media móvil.
const crashMomentum = -5.0

// HybridParams son los parámetros de la estrategia híbrida.
type HybridParams struct {
	TrendPeriod    int     // media móvil de tendencia (barras)
	MomentumPeriod int     // ventana del ROC
	Volatility     int     // ventana de la desviación típica
	RebalanceDays  int     // cadencia de rebalanceo, en barras por instrumento
	EntryThreshold float64 // close > MA × threshold para entrar
	ExitThreshold  float64 // close < MA × threshold para salir
	PositionSize   float64 // fracción invertible del valor asignado
	CashReserve    float64 // fracción reservada en cash (informativa)
	MaxPositions   int     // tope de instrumentos con capital
}

// DefaultHybridParams son los valores del paper: MA200, ROC60, rebalanceo
// cada 20 barras, margen de entrada/salida del 1%, 95% invertido.
func DefaultHybridParams() HybridParams {
	return HybridParams{
		TrendPeriod:    200,
		MomentumPeriod: 60,
		Volatility:     60,
		RebalanceDays:  20,
		EntryThreshold: 1.01,
		ExitThreshold:  0.99,
		PositionSize:   0.95,
		CashReserve:    0.05,
		MaxPositions:   DefaultMaxPositions,
	}
}

// symbolState es el estado mutable por instrumento de la política.
type symbolState struct {
	lastRebalance int // índice de barra del último rebalanceo
	stance        domain.Stance
}

// Hybrid implementa strategy.Strategy. Mantiene un registro de estado por
// símbolo en un map — nada de arrays paralelos indexados por posición.
type Hybrid struct {
	params       HybridParams
	maxPositions int
	states       map[string]*symbolState
}

// NewHybrid crea la estrategia para un universo de instrumentCount
// instrumentos. El denominador de asignación queda fijado en
// min(MaxPositions, instrumentCount).
func NewHybrid(params HybridParams, instrumentCount int) *Hybrid {
	return &Hybrid{
		params:       params,
		maxPositions: EffectiveMaxPositions(params.MaxPositions, instrumentCount),
		states:       make(map[string]*symbolState),
	}
}

// Name implements Strategy.
func (h *Hybrid) Name() string { return "hybrid" }

// Clone implements Strategy. El clon comparte parámetros pero arranca sin
// estado por símbolo.
func (h *Hybrid) Clone() Strategy {
	clone := *h
	clone.states = make(map[string]*symbolState)
	return &clone
}

// Evaluate decide la postura del instrumento en la barra i.
//
// El tamaño de la compra se calcula sobre el valor vivo del portfolio en
// el momento del rebalanceo de cada instrumento, no sobre un valor
// congelado por ciclo global. Eso hace derivar las asignaciones de un
// reparto 1/N exacto cuando los instrumentos rebalancean en offsets
// distintos; es el comportamiento observado del sistema original y se
// conserva a propósito.
func (h *Hybrid) Evaluate(symbol string, i int, bars []domain.Bar, snap Snapshot) domain.Action {
	st := h.state(symbol)

	// Historia insuficiente: skip silencioso, no un error.
	if i+1 < h.params.TrendPeriod {
		return domain.Hold()
	}

	// Cadencia de rebalanceo, contada en barras de este instrumento.
	if i-st.lastRebalance < h.params.RebalanceDays {
		return domain.Hold()
	}
	st.lastRebalance = i

	closes := closesOf(bars[:i+1])
	close := closes[i]

	trendMA, ok := indicators.SMA(closes, i, h.params.TrendPeriod)
	if !ok {
		return domain.Hold()
	}
	momentum, ok := indicators.ROC(closes, i, h.params.MomentumPeriod)
	if !ok {
		return domain.Hold()
	}

	bullish := close > trendMA*h.params.EntryThreshold
	bearish := close < trendMA*h.params.ExitThreshold

	shouldBeLong := bullish && momentum > 0
	// El crash de momentum manda aunque el precio siga sobre la media.
	shouldBeCash := bearish || momentum < crashMomentum

	switch {
	case shouldBeLong && (snap.Shares == 0 || st.stance == domain.StanceCash):
		// Tope duro de posiciones: con el cupo lleno no se abren nuevas
		// aunque el instrumento dé señal.
		if h.longCount() >= h.maxPositions {
			return domain.Hold()
		}
		shares := TargetShares(snap.TotalValue, h.maxPositions, h.params.PositionSize, close)
		if shares <= 0 {
			return domain.Hold()
		}
		st.stance = domain.StanceLong
		return domain.Buy(shares, "trend_entry")

	case shouldBeCash && (snap.Shares > 0 || st.stance == domain.StanceLong):
		if snap.Shares == 0 {
			// Nada que vender; corrige solo el estado.
			st.stance = domain.StanceCash
			return domain.Hold()
		}
		st.stance = domain.StanceCash
		return domain.Close("strategy_exit")
	}

	return domain.Hold()
}

// Stance expone la postura actual del símbolo (para tests e informes).
func (h *Hybrid) Stance(symbol string) domain.Stance {
	return h.state(symbol).stance
}

// longCount cuenta los instrumentos actualmente en postura long.
func (h *Hybrid) longCount() int {
	n := 0
	for _, st := range h.states {
		if st.stance == domain.StanceLong {
			n++
		}
	}
	return n
}

func (h *Hybrid) state(symbol string) *symbolState {
	st, ok := h.states[symbol]
	if !ok {
		st = &symbolState{stance: domain.StanceNone}
		h.states[symbol] = st
	}
	return st
}

func closesOf(bars []domain.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
