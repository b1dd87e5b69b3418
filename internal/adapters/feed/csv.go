package feed

// csv.go — feed de barras desde CSVs locales, uno por símbolo.
//
// Formato: <dir>/<SYMBOL>.csv con cabecera Date,Open,High,Low,Close,Volume
// y fechas YYYY-MM-DD. La validación es estricta: columnas que faltan,
// precios no positivos, fechas desordenadas o series demasiado cortas
// abortan la carga con error. El engine asume input limpio y aquí es
// donde se garantiza.

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
)

// MinBars es la longitud mínima aceptada para una serie local.
const MinBars = 100

var columns = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// CSVFeed implementa ports.BarFeed sobre un directorio de CSVs.
type CSVFeed struct {
	dir     string
	minBars int
}

// NewCSVFeed crea el feed sobre el directorio dado.
func NewCSVFeed(dir string) *CSVFeed {
	return &CSVFeed{dir: dir, minBars: MinBars}
}

// AvailableSymbols lista los símbolos con fichero CSV en el directorio.
func (f *CSVFeed) AvailableSymbols() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("feed.AvailableSymbols: read dir %q: %w", f.dir, err)
	}
	var symbols []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		symbols = append(symbols, strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Load lee y valida la serie del símbolo, recortada al rango [from, to].
func (f *CSVFeed) Load(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(f.dir, symbol+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("feed.Load: %s: %w", symbol, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("feed.Load: %s: parse CSV: %w", symbol, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("feed.Load: %s: empty data file", symbol)
	}

	index, err := columnIndex(records[0])
	if err != nil {
		return nil, fmt.Errorf("feed.Load: %s: %w", symbol, err)
	}

	bars := make([]domain.Bar, 0, len(records)-1)
	for n, row := range records[1:] {
		bar, err := parseBar(row, index)
		if err != nil {
			return nil, fmt.Errorf("feed.Load: %s: row %d: %w", symbol, n+2, err)
		}
		bars = append(bars, bar)
	}

	// Validar la serie completa antes de recortar: una serie corrupta es
	// fatal aunque el rango pedido caiga en la parte sana.
	if err := domain.ValidateSeries(symbol, bars, f.minBars); err != nil {
		return nil, fmt.Errorf("feed.Load: %w", err)
	}

	bars = clipRange(bars, from, to)
	if len(bars) == 0 {
		return nil, fmt.Errorf("feed.Load: %s: no bars in range %s – %s",
			symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return bars, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, col := range columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func parseBar(row []string, index map[string]int) (domain.Bar, error) {
	field := func(col string) (string, error) {
		i := index[col]
		if i >= len(row) {
			return "", fmt.Errorf("short row, missing %s", col)
		}
		return strings.TrimSpace(row[i]), nil
	}

	dateStr, err := field("Date")
	if err != nil {
		return domain.Bar{}, err
	}
	// Los exports traen a veces timestamp completo; solo importa el día.
	if i := strings.IndexAny(dateStr, " T"); i > 0 {
		dateStr = dateStr[:i]
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("bad date %q: %w", dateStr, err)
	}

	values := make(map[string]float64, 5)
	for _, col := range columns[1:] {
		s, err := field(col)
		if err != nil {
			return domain.Bar{}, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("bad %s %q: %w", col, s, err)
		}
		values[col] = v
	}

	return domain.Bar{
		Date:   date,
		Open:   values["Open"],
		High:   values["High"],
		Low:    values["Low"],
		Close:  values["Close"],
		Volume: values["Volume"],
	}, nil
}

func clipRange(bars []domain.Bar, from, to time.Time) []domain.Bar {
	out := bars
	if !from.IsZero() {
		i := sort.Search(len(out), func(i int) bool { return !out[i].Date.Before(from) })
		out = out[i:]
	}
	if !to.IsZero() {
		i := sort.Search(len(out), func(i int) bool { return out[i].Date.After(to) })
		out = out[:i]
	}
	return out
}
