package strategy_test

import (
	"testing"

	"github.com/alejandrodnm/tacticalbt/internal/strategy"
	"github.com/stretchr/testify/assert"
)

func TestTargetShares(t *testing.T) {
	// 100k / 20 posiciones = 5000; 5000 × 0.95 = 4750; 4750 / 23.21 → 204.
	assert.Equal(t, 204, strategy.TargetShares(100000, 20, 0.95, 23.21))

	// Universo de un solo instrumento: todo el valor a una posición.
	assert.Equal(t, 7916, strategy.TargetShares(100000, 1, 0.95, 12))

	// Truncado hacia abajo, nunca redondeo al alza.
	assert.Equal(t, 4, strategy.TargetShares(100, 1, 1.0, 20.5))
}

func TestTargetSharesDegenerate(t *testing.T) {
	assert.Equal(t, 0, strategy.TargetShares(0, 20, 0.95, 10))
	assert.Equal(t, 0, strategy.TargetShares(-5000, 20, 0.95, 10))
	assert.Equal(t, 0, strategy.TargetShares(100000, 0, 0.95, 10))
	assert.Equal(t, 0, strategy.TargetShares(100000, 20, 0, 10))
	assert.Equal(t, 0, strategy.TargetShares(100000, 20, 0.95, 0))
	assert.Equal(t, 0, strategy.TargetShares(100000, 20, 0.95, -3))

	// Asignación menor que el precio de una acción.
	assert.Equal(t, 0, strategy.TargetShares(100, 20, 0.95, 10))
}

func TestEffectiveMaxPositions(t *testing.T) {
	assert.Equal(t, 20, strategy.EffectiveMaxPositions(20, 35))
	assert.Equal(t, 5, strategy.EffectiveMaxPositions(20, 5))
	assert.Equal(t, 1, strategy.EffectiveMaxPositions(20, 1))

	// Cap no positivo cae al tope por defecto.
	assert.Equal(t, strategy.DefaultMaxPositions, strategy.EffectiveMaxPositions(0, 35))
	assert.Equal(t, 3, strategy.EffectiveMaxPositions(0, 3))
}
