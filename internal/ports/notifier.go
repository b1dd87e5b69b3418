package ports

import (
	"context"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
)

// Notifier presenta el resultado de un run al usuario.
type Notifier interface {
	// Notify muestra el resumen del run y su historial de trades.
	// En la implementación de consola, imprime tablas formateadas.
	Notify(ctx context.Context, result domain.RunResult) error
}
