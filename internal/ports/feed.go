package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
)

// BarFeed entrega series OHLCV ya validadas, ordenadas por fecha.
type BarFeed interface {
	// Load devuelve la serie del símbolo recortada al rango [from, to].
	// Un rango con extremos cero significa "sin límite".
	// Cualquier fallo de integridad (columnas, precios, orden, longitud
	// mínima) se devuelve como error — nunca se entrega una serie sucia.
	Load(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error)

	// AvailableSymbols lista los símbolos con datos locales.
	AvailableSymbols() ([]string, error)
}
