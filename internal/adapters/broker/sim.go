package broker

// sim.go — broker simulado para backtesting. Ejecuta al último precio
// marcado (el close de la barra de señal), cobra una comisión plana en
// bps sobre el nocional en ambas direcciones y emite un CloseNotice al
// aplanar cada posición. Un broker pertenece a exactamente un run — no
// hay estado compartido ni locking.

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
)

var (
	// ErrInsufficientCash se devuelve cuando el coste de la compra supera
	// el cash disponible. El engine la trata como skip, no como fallo.
	ErrInsufficientCash = errors.New("broker: insufficient cash")

	// ErrNoPosition se devuelve al cerrar un símbolo sin posición.
	ErrNoPosition = errors.New("broker: no open position")

	// ErrNotMarked se devuelve al operar un símbolo sin precio marcado.
	ErrNotMarked = errors.New("broker: symbol has no marked price")
)

type position struct {
	shares     int
	entryPrice float64
	entryDate  time.Time
	entryFee   float64
}

// Sim implementa ports.Broker.
type Sim struct {
	cash          float64
	commissionBps float64
	positions     map[string]*position
	lastPrice     map[string]float64
}

// NewSim crea un broker con el cash inicial y la comisión en basis points
// (10 bps = 0.10% del nocional por ejecución).
func NewSim(initialCash, commissionBps float64) *Sim {
	return &Sim{
		cash:          initialCash,
		commissionBps: commissionBps,
		positions:     make(map[string]*position),
		lastPrice:     make(map[string]float64),
	}
}

// Cash implements ports.Broker.
func (s *Sim) Cash() float64 { return s.cash }

// PositionSize implements ports.Broker.
func (s *Sim) PositionSize(symbol string) int {
	if pos, ok := s.positions[symbol]; ok {
		return pos.shares
	}
	return 0
}

// TotalValue implements ports.Broker. Cash más cada posición marcada a su
// último precio conocido.
func (s *Sim) TotalValue() float64 {
	total := s.cash
	for symbol, pos := range s.positions {
		total += float64(pos.shares) * s.lastPrice[symbol]
	}
	return total
}

// Mark implements ports.Broker.
func (s *Sim) Mark(symbol string, price float64) {
	if price > 0 {
		s.lastPrice[symbol] = price
	}
}

// SubmitBuy implements ports.Broker. Rellena al último precio marcado.
func (s *Sim) SubmitBuy(symbol string, shares int, date time.Time) error {
	if shares <= 0 {
		return fmt.Errorf("broker.SubmitBuy: %s: non-positive size %d", symbol, shares)
	}
	price, ok := s.lastPrice[symbol]
	if !ok {
		return fmt.Errorf("broker.SubmitBuy: %s: %w", symbol, ErrNotMarked)
	}
	if _, held := s.positions[symbol]; held {
		return fmt.Errorf("broker.SubmitBuy: %s: position already open", symbol)
	}

	notional := price * float64(shares)
	fee := notional * s.commissionBps / 10000
	if notional+fee > s.cash {
		return fmt.Errorf("broker.SubmitBuy: %s: need %.2f, have %.2f: %w",
			symbol, notional+fee, s.cash, ErrInsufficientCash)
	}

	s.cash -= notional + fee
	s.positions[symbol] = &position{
		shares:     shares,
		entryPrice: price,
		entryDate:  date,
		entryFee:   fee,
	}
	return nil
}

// SubmitClose implements ports.Broker. Aplana la posición completa y
// devuelve la notificación de cierre con P&L bruto y neto.
func (s *Sim) SubmitClose(symbol string, date time.Time) (*domain.CloseNotice, error) {
	pos, ok := s.positions[symbol]
	if !ok {
		return nil, fmt.Errorf("broker.SubmitClose: %s: %w", symbol, ErrNoPosition)
	}
	price, ok := s.lastPrice[symbol]
	if !ok {
		return nil, fmt.Errorf("broker.SubmitClose: %s: %w", symbol, ErrNotMarked)
	}

	notional := price * float64(pos.shares)
	fee := notional * s.commissionBps / 10000
	s.cash += notional - fee
	delete(s.positions, symbol)

	gross := (price - pos.entryPrice) * float64(pos.shares)
	return &domain.CloseNotice{
		Symbol:     symbol,
		EntryDate:  pos.entryDate,
		ExitDate:   date,
		EntryPrice: pos.entryPrice,
		ExitPrice:  price,
		Shares:     pos.shares,
		GrossPnL:   gross,
		NetPnL:     gross - pos.entryFee - fee,
	}, nil
}

// OpenPositions implements ports.Broker.
func (s *Sim) OpenPositions() []domain.OpenPosition {
	var open []domain.OpenPosition
	for symbol, pos := range s.positions {
		open = append(open, domain.OpenPosition{
			Symbol:     symbol,
			Shares:     pos.shares,
			EntryDate:  pos.entryDate,
			EntryPrice: pos.entryPrice,
			LastPrice:  s.lastPrice[symbol],
		})
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Symbol < open[j].Symbol })
	return open
}
