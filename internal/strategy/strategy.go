package strategy

import (
	"github.com/alejandrodnm/tacticalbt/internal/domain"
)

// Snapshot es la vista del broker en el momento de la evaluación.
// Shares es la posición actual en el instrumento que se está evaluando.
type Snapshot struct {
	Cash       float64
	TotalValue float64
	Shares     int
}

// Strategy define el contrato de una política de decisión. El engine la
// invoca una vez por instrumento y barra, en orden determinista; la
// estrategia devuelve qué hacer (hold, buy N, close) y nunca toca al
// broker directamente.
type Strategy interface {
	// Name identifies the strategy in results and persistence.
	Name() string

	// Evaluate decide la acción para la barra i del símbolo dado.
	// bars[..i] es la única información disponible — sin lookahead.
	Evaluate(symbol string, i int, bars []domain.Bar, snap Snapshot) domain.Action

	// Clone devuelve una copia con estado por símbolo fresco, para que
	// runs paralelos nunca compartan estado mutable.
	Clone() Strategy
}
