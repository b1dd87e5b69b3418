package ports

import (
	"context"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
)

// RunStorage persiste los resultados de cada simulación.
type RunStorage interface {
	// SaveRun persiste el resumen del run y todos sus trades en una transacción.
	SaveRun(ctx context.Context, result domain.RunResult) error

	// GetRuns devuelve los últimos runs, el más reciente primero.
	GetRuns(ctx context.Context, limit int) ([]domain.RunResult, error)

	// GetTrades devuelve los trades de un run concreto.
	GetTrades(ctx context.Context, runID string) ([]domain.TradeRecord, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
