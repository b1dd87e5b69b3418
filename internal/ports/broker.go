package ports

import (
	"time"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
)

// Broker es el modelo de ejecución: aplica órdenes a cash y posiciones,
// cobra comisión y reporta el valor del portfolio. Las estrategias lo
// tratan como caja negra — nunca calculan fills ni comisiones.
type Broker interface {
	// Cash returns the uninvested cash balance.
	Cash() float64

	// PositionSize returns the shares currently held for the symbol (0 if flat).
	PositionSize(symbol string) int

	// TotalValue returns cash plus every position marked at its last price.
	TotalValue() float64

	// Mark actualiza el último precio conocido del símbolo. El engine lo
	// llama con el close de cada barra antes de evaluar la estrategia.
	Mark(symbol string, price float64)

	// SubmitBuy fills a buy at the last marked price. Insufficient cash
	// returns ErrInsufficientCash; the caller treats it as a skip.
	SubmitBuy(symbol string, shares int, date time.Time) error

	// SubmitClose flattens the position at the last marked price and
	// returns the close notification. ErrNoPosition if already flat.
	SubmitClose(symbol string, date time.Time) (*domain.CloseNotice, error)

	// OpenPositions returns the positions still held, marked at their
	// last known price.
	OpenPositions() []domain.OpenPosition
}
