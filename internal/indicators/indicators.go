package indicators

// Indicadores de ventana móvil sobre precios de cierre. Todas las funciones
// son puras: evalúan en el índice i usando solo closes[..i] (sin lookahead).
// El segundo valor de retorno es false mientras no haya historia suficiente.

import "math"

// SMA is the arithmetic mean of the last period closes ending at i.
func SMA(closes []float64, i, period int) (float64, bool) {
	if period <= 0 || i >= len(closes) || i+1 < period {
		return 0, false
	}
	sum := 0.0
	for j := i - period + 1; j <= i; j++ {
		sum += closes[j]
	}
	return sum / float64(period), true
}

// ROC is the percentage rate of change over period bars:
// (closes[i] - closes[i-period]) / closes[i-period] × 100.
func ROC(closes []float64, i, period int) (float64, bool) {
	if period <= 0 || i >= len(closes) || i < period {
		return 0, false
	}
	base := closes[i-period]
	if base == 0 {
		return 0, false
	}
	return (closes[i] - base) / base * 100, true
}

// StdDev is the sample standard deviation (n−1 divisor) of the last
// period closes ending at i.
func StdDev(closes []float64, i, period int) (float64, bool) {
	if period <= 1 || i >= len(closes) || i+1 < period {
		return 0, false
	}
	mean, _ := SMA(closes, i, period)
	sum := 0.0
	for j := i - period + 1; j <= i; j++ {
		d := closes[j] - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(period-1)), true
}

// RSI es el índice de fuerza relativa con suavizado de Wilder.
// Necesita al menos period+1 cierres; devuelve 100 cuando no hubo pérdidas
// en la ventana.
func RSI(closes []float64, i, period int) (float64, bool) {
	if period <= 0 || i >= len(closes) || i < period {
		return 0, false
	}

	var gain, loss float64
	for j := 1; j <= period; j++ {
		change := closes[j] - closes[j-1]
		if change >= 0 {
			gain += change
		} else {
			loss -= change
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	// Suavizado de Wilder hasta la barra i.
	for j := period + 1; j <= i; j++ {
		change := closes[j] - closes[j-1]
		g, l := 0.0, 0.0
		if change >= 0 {
			g = change
		} else {
			l = -change
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}
