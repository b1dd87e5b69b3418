package domain

import "time"

// Stance is an instrument's current target exposure state.
type Stance string

const (
	StanceNone Stance = "none" // never entered / no data yet
	StanceLong Stance = "long" // holding shares
	StanceCash Stance = "cash" // flat, eligible to re-enter
)

// ActionKind is what a strategy wants done with an instrument on a bar.
type ActionKind int

const (
	ActionHold ActionKind = iota
	ActionBuy
	ActionClose
)

// Action es la decisión de una estrategia para un instrumento en una barra.
// Buy lleva el número de acciones; Close lleva el motivo de salida.
type Action struct {
	Kind   ActionKind
	Shares int
	Reason string
}

// Hold is the no-op action.
func Hold() Action { return Action{Kind: ActionHold} }

// Buy opens (or adds to) a long position of the given size.
func Buy(shares int, reason string) Action {
	return Action{Kind: ActionBuy, Shares: shares, Reason: reason}
}

// Close flattens the full position.
func Close(reason string) Action {
	return Action{Kind: ActionClose, Reason: reason}
}

// CloseNotice is emitted by the broker when a position fully closes.
type CloseNotice struct {
	Symbol     string
	EntryDate  time.Time
	ExitDate   time.Time
	EntryPrice float64
	ExitPrice  float64
	Shares     int
	GrossPnL   float64
	NetPnL     float64 // gross minus entry and exit commission
}

// TradeRecord es el registro inmutable de una posición cerrada.
type TradeRecord struct {
	Symbol     string
	EntryDate  time.Time
	ExitDate   time.Time
	EntryPrice float64
	ExitPrice  float64
	Shares     int
	PnL        float64 // neto de comisiones
	ReturnPct  float64 // PnL / |valor de entrada| × 100
	ExitReason string
}
