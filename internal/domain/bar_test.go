package domain_test

import (
	"testing"
	"time"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBar(day int) domain.Bar {
	return domain.Bar{
		Date:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Open:   100,
		High:   101,
		Low:    99,
		Close:  100.5,
		Volume: 1000,
	}
}

func TestBarValidate(t *testing.T) {
	require.NoError(t, validBar(2).Validate())

	b := validBar(2)
	b.Close = 0
	assert.ErrorContains(t, b.Validate(), "non-positive price")

	b = validBar(2)
	b.Low = -1
	assert.Error(t, b.Validate())

	b = validBar(2)
	b.Volume = -1
	assert.ErrorContains(t, b.Validate(), "negative volume")

	b = validBar(2)
	b.Date = time.Time{}
	assert.ErrorContains(t, b.Validate(), "missing date")
}

func TestValidateSeries(t *testing.T) {
	bars := []domain.Bar{validBar(2), validBar(3), validBar(4)}
	require.NoError(t, domain.ValidateSeries("SPY", bars, 3))

	assert.ErrorContains(t, domain.ValidateSeries("SPY", bars, 4), "not enough bars")

	// Fecha repetida: las series deben ser estrictamente crecientes.
	dup := []domain.Bar{validBar(2), validBar(2), validBar(3)}
	assert.ErrorContains(t, domain.ValidateSeries("SPY", dup, 2), "not strictly increasing")
}
