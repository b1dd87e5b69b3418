package feed_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/tacticalbt/internal/adapters/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seriesStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// writeSeries genera <dir>/<symbol>.csv con n barras diarias sintéticas.
func writeSeries(t *testing.T, dir, symbol string, n int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume\n")
	for i := 0; i < n; i++ {
		date := seriesStart.AddDate(0, 0, i)
		price := 100 + float64(i)*0.1
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f,%d\n",
			date.Format("2006-01-02"), price, price*1.01, price*0.99, price, 1000+i)
	}
	writeFile(t, dir, symbol, b.String())
}

func writeFile(t *testing.T, dir, symbol, content string) {
	t.Helper()
	path := filepath.Join(dir, symbol+".csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCSVFeedLoad(t *testing.T) {
	dir := t.TempDir()
	writeSeries(t, dir, "SPY", 120)

	f := feed.NewCSVFeed(dir)
	bars, err := f.Load(context.Background(), "SPY", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, bars, 120)

	assert.True(t, bars[0].Date.Equal(seriesStart))
	assert.InDelta(t, 100, bars[0].Close, 1e-9)
	assert.InDelta(t, 111.9, bars[119].Close, 1e-9)
}

func TestCSVFeedClipsRange(t *testing.T) {
	dir := t.TempDir()
	writeSeries(t, dir, "SPY", 120)

	from := seriesStart.AddDate(0, 0, 10)
	to := seriesStart.AddDate(0, 0, 19)

	f := feed.NewCSVFeed(dir)
	bars, err := f.Load(context.Background(), "SPY", from, to)
	require.NoError(t, err)
	require.Len(t, bars, 10)
	assert.True(t, bars[0].Date.Equal(from))
	assert.True(t, bars[9].Date.Equal(to))
}

func TestCSVFeedRejectsShortSeries(t *testing.T) {
	dir := t.TempDir()
	writeSeries(t, dir, "SPY", 50)

	f := feed.NewCSVFeed(dir)
	_, err := f.Load(context.Background(), "SPY", time.Time{}, time.Time{})
	assert.ErrorContains(t, err, "not enough bars")
}

func TestCSVFeedRejectsMissingColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "SPY", "Date,Open,Close\n2024-01-02,100,101\n")

	f := feed.NewCSVFeed(dir)
	_, err := f.Load(context.Background(), "SPY", time.Time{}, time.Time{})
	assert.ErrorContains(t, err, "missing columns")
}

func TestCSVFeedRejectsNonPositivePrice(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume\n")
	for i := 0; i < 120; i++ {
		date := seriesStart.AddDate(0, 0, i)
		close := 100.0
		if i == 60 {
			close = 0 // fila corrupta en mitad de la serie
		}
		fmt.Fprintf(&b, "%s,100,101,99,%.2f,1000\n", date.Format("2006-01-02"), close)
	}
	writeFile(t, dir, "SPY", b.String())

	f := feed.NewCSVFeed(dir)
	_, err := f.Load(context.Background(), "SPY", time.Time{}, time.Time{})
	assert.ErrorContains(t, err, "non-positive price")
}

func TestCSVFeedRejectsUnorderedDates(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume\n")
	for i := 119; i >= 0; i-- {
		date := seriesStart.AddDate(0, 0, i)
		fmt.Fprintf(&b, "%s,100,101,99,100,1000\n", date.Format("2006-01-02"))
	}
	writeFile(t, dir, "SPY", b.String())

	f := feed.NewCSVFeed(dir)
	_, err := f.Load(context.Background(), "SPY", time.Time{}, time.Time{})
	assert.ErrorContains(t, err, "not strictly increasing")
}

func TestCSVFeedUnknownSymbol(t *testing.T) {
	f := feed.NewCSVFeed(t.TempDir())
	_, err := f.Load(context.Background(), "NOPE", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestCSVFeedAvailableSymbols(t *testing.T) {
	dir := t.TempDir()
	writeSeries(t, dir, "SPY", 120)
	writeSeries(t, dir, "AAPL", 120)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	f := feed.NewCSVFeed(dir)
	symbols, err := f.AvailableSymbols()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "SPY"}, symbols)
}
