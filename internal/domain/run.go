package domain

import "time"

// EquityPoint is one sample of total portfolio value after a trading date.
type EquityPoint struct {
	Date  time.Time
	Value float64
}

// OpenPosition describes a position still held when the run ends.
// The engine reports these instead of force-closing them.
type OpenPosition struct {
	Symbol     string
	Shares     int
	EntryDate  time.Time
	EntryPrice float64
	LastPrice  float64
}

// RunResult contiene todo lo producido por una simulación completa.
type RunResult struct {
	RunID          string
	Strategy       string
	Symbols        []string
	Start          time.Time
	End            time.Time
	InitialCash    float64
	FinalValue     float64
	TotalReturnPct float64
	Trades         []TradeRecord
	OpenPositions  []OpenPosition
	EquityCurve    []EquityPoint
	Elapsed        time.Duration
}

// Profit is the absolute gain or loss over the run.
func (r RunResult) Profit() float64 {
	return r.FinalValue - r.InitialCash
}
