package report

// stats.go — estadísticas agregadas sobre el historial de trades de un
// run o un barrido: retorno medio/mediano, win rate, desviación típica y
// desgloses por motivo de salida y por símbolo.

import (
	"math"
	"sort"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
)

// ReasonStats es el desglose por motivo de salida.
type ReasonStats struct {
	Count        int
	AvgReturnPct float64
	TotalPnL     float64
}

// SymbolStats es el desglose por símbolo.
type SymbolStats struct {
	Trades       int
	AvgReturnPct float64
	TotalPnL     float64
}

// Summary son las estadísticas de un conjunto de trades cerrados.
type Summary struct {
	TotalTrades     int
	Wins            int
	Losses          int
	WinRatePct      float64
	AvgReturnPct    float64
	MedianReturnPct float64
	StdReturnPct    float64
	MaxReturnPct    float64
	MinReturnPct    float64
	TotalPnL        float64
	AvgWinPnL       float64
	AvgLossPnL      float64
	ByReason        map[string]ReasonStats
	BySymbol        map[string]SymbolStats
}

// Verdict clasifica el win rate en los mismos tramos que el informe
// original: excelente ≥60%, bueno ≥50%, regular ≥40%, bajo por debajo.
func (s Summary) Verdict() string {
	switch {
	case s.TotalTrades == 0:
		return "NO_TRADES"
	case s.WinRatePct >= 60:
		return "EXCELLENT"
	case s.WinRatePct >= 50:
		return "GOOD"
	case s.WinRatePct >= 40:
		return "AVERAGE"
	default:
		return "POOR"
	}
}

// Summarize calcula las estadísticas del historial dado. Con cero trades
// devuelve un Summary vacío utilizable (sin NaNs).
func Summarize(trades []domain.TradeRecord) Summary {
	s := Summary{
		ByReason: make(map[string]ReasonStats),
		BySymbol: make(map[string]SymbolStats),
	}
	if len(trades) == 0 {
		return s
	}

	returns := make([]float64, 0, len(trades))
	var winPnL, lossPnL float64

	for _, t := range trades {
		returns = append(returns, t.ReturnPct)
		s.TotalPnL += t.PnL

		if t.PnL > 0 {
			s.Wins++
			winPnL += t.PnL
		} else if t.PnL < 0 {
			s.Losses++
			lossPnL += t.PnL
		}

		r := s.ByReason[t.ExitReason]
		r.Count++
		r.AvgReturnPct += t.ReturnPct
		r.TotalPnL += t.PnL
		s.ByReason[t.ExitReason] = r

		sym := s.BySymbol[t.Symbol]
		sym.Trades++
		sym.AvgReturnPct += t.ReturnPct
		sym.TotalPnL += t.PnL
		s.BySymbol[t.Symbol] = sym
	}

	s.TotalTrades = len(trades)
	s.WinRatePct = float64(s.Wins) / float64(s.TotalTrades) * 100
	s.AvgReturnPct = mean(returns)
	s.MedianReturnPct = median(returns)
	s.StdReturnPct = stddev(returns, s.AvgReturnPct)
	s.MaxReturnPct = maxOf(returns)
	s.MinReturnPct = minOf(returns)
	if s.Wins > 0 {
		s.AvgWinPnL = winPnL / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLossPnL = lossPnL / float64(s.Losses)
	}

	// Los acumuladores de media por grupo se normalizan al final.
	for reason, r := range s.ByReason {
		r.AvgReturnPct /= float64(r.Count)
		s.ByReason[reason] = r
	}
	for symbol, sym := range s.BySymbol {
		sym.AvgReturnPct /= float64(sym.Trades)
		s.BySymbol[symbol] = sym
	}
	return s
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func stddev(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func maxOf(xs []float64) float64 {
	best := xs[0]
	for _, x := range xs[1:] {
		if x > best {
			best = x
		}
	}
	return best
}

func minOf(xs []float64) float64 {
	worst := xs[0]
	for _, x := range xs[1:] {
		if x < worst {
			worst = x
		}
	}
	return worst
}
