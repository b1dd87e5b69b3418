package strategy

import "math"

// DefaultMaxPositions es el tope fijo de instrumentos con capital asignado.
// Diversificación deliberada, no un sizer basado en riesgo.
const DefaultMaxPositions = 20

// TargetShares convierte el valor total del portfolio en un número entero
// de acciones: reparto equitativo entre maxPositions instrumentos,
// invirtiendo solo la fracción investable (el resto queda como reserva de
// cash). Devuelve 0 si el resultado no es comprable — no es un error.
func TargetShares(totalValue float64, maxPositions int, investable, price float64) int {
	if totalValue <= 0 || maxPositions <= 0 || investable <= 0 || price <= 0 {
		return 0
	}
	allocation := totalValue / float64(maxPositions)
	shares := int(math.Floor(allocation * investable / price))
	if shares <= 0 {
		return 0
	}
	return shares
}

// EffectiveMaxPositions aplica el tope fijo: min(cap, instrumentos cargados).
func EffectiveMaxPositions(cap, instrumentCount int) int {
	if cap <= 0 {
		cap = DefaultMaxPositions
	}
	if instrumentCount > 0 && instrumentCount < cap {
		return instrumentCount
	}
	return cap
}
