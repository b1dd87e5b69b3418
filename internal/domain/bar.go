package domain

import (
	"fmt"
	"time"
)

// Bar es una observación OHLCV diaria de un instrumento.
// Inmutable una vez cargada; las series van ordenadas por fecha ascendente.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Validate rechaza precios no positivos y volumen negativo.
// Los feeds deben validar la serie completa antes de entregarla al engine.
func (b Bar) Validate() error {
	if b.Date.IsZero() {
		return fmt.Errorf("domain.Bar: missing date")
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("domain.Bar: non-positive price at %s (O=%.4f H=%.4f L=%.4f C=%.4f)",
			b.Date.Format("2006-01-02"), b.Open, b.High, b.Low, b.Close)
	}
	if b.Volume < 0 {
		return fmt.Errorf("domain.Bar: negative volume at %s", b.Date.Format("2006-01-02"))
	}
	return nil
}

// ValidateSeries comprueba la integridad de una serie completa: barras
// válidas, fechas estrictamente crecientes y longitud mínima. Cualquier
// violación es fatal — el engine asume input limpio.
func ValidateSeries(symbol string, bars []Bar, minBars int) error {
	if len(bars) < minBars {
		return fmt.Errorf("domain.ValidateSeries: %s: not enough bars (%d < %d)", symbol, len(bars), minBars)
	}
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("domain.ValidateSeries: %s: bar %d: %w", symbol, i, err)
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			return fmt.Errorf("domain.ValidateSeries: %s: dates not strictly increasing at bar %d (%s >= %s)",
				symbol, i, bars[i-1].Date.Format("2006-01-02"), b.Date.Format("2006-01-02"))
		}
	}
	return nil
}
