package backtest

import (
	"math"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
)

// Recorder acumula los registros de posiciones cerradas de un run.
// El retorno porcentual se calcula sobre el valor absoluto de la posición
// a la entrada; el motivo del cierre viene ya decidido por la política.
type Recorder struct {
	trades []domain.TradeRecord
}

// NewRecorder crea un recorder vacío.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record convierte una notificación de cierre del broker en un registro
// inmutable de trade.
func (r *Recorder) Record(notice *domain.CloseNotice, exitReason string) {
	entryValue := math.Abs(notice.EntryPrice * float64(notice.Shares))
	returnPct := 0.0
	if entryValue > 0 {
		returnPct = notice.NetPnL / entryValue * 100
	}
	r.trades = append(r.trades, domain.TradeRecord{
		Symbol:     notice.Symbol,
		EntryDate:  notice.EntryDate,
		ExitDate:   notice.ExitDate,
		EntryPrice: notice.EntryPrice,
		ExitPrice:  notice.ExitPrice,
		Shares:     notice.Shares,
		PnL:        notice.NetPnL,
		ReturnPct:  returnPct,
		ExitReason: exitReason,
	})
}

// Trades devuelve los registros acumulados en orden de cierre.
func (r *Recorder) Trades() []domain.TradeRecord {
	return r.trades
}
