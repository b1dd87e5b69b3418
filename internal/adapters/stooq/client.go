package stooq

// client.go — descarga de series diarias desde Stooq con rate limiting y
// retries. Alimenta el directorio de datos local que consume el CSVFeed;
// el engine nunca habla con la red.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBase = "https://stooq.com"

	// Stooq no documenta límites; 2 req/s con burst corto es conservador
	// y no ha disparado bloqueos en la práctica.
	requestsPerSec = 2
	burst          = 4

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client descarga CSVs diarios de Stooq.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient crea un Client. Si base está vacío usa el URL de producción.
func NewClient(base string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(requestsPerSec, burst),
	}
}

// FetchDaily descarga la serie diaria completa del símbolo (sufijo de
// mercado incluido, p. ej. "aapl.us") y devuelve el CSV crudo.
func (c *Client) FetchDaily(ctx context.Context, symbol string) ([]byte, error) {
	q := url.Values{}
	q.Set("s", strings.ToLower(symbol))
	q.Set("i", "d")
	endpoint := fmt.Sprintf("%s/q/d/l/?%s", c.base, q.Encode())

	body, err := c.getWithRetry(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("stooq.FetchDaily: %s: %w", symbol, err)
	}
	// Stooq responde 200 con un cuerpo de error para símbolos desconocidos.
	if strings.HasPrefix(string(body), "No data") || len(body) == 0 {
		return nil, fmt.Errorf("stooq.FetchDaily: %s: no data", symbol)
	}
	return body, nil
}

// Download guarda la serie diaria como <dir>/<SYMBOL>.csv. El nombre de
// fichero usa el símbolo sin sufijo de mercado, en mayúsculas.
func (c *Client) Download(ctx context.Context, symbol, dir string) error {
	body, err := c.FetchDaily(ctx, symbol)
	if err != nil {
		return err
	}

	name := strings.ToUpper(symbol)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	path := filepath.Join(dir, name+".csv")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("stooq.Download: mkdir %q: %w", dir, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("stooq.Download: write %q: %w", path, err)
	}

	slog.Info("downloaded daily series", "symbol", symbol, "path", path, "bytes", len(body))
	return nil
}

// getWithRetry hace un GET con backoff exponencial, respetando el limiter.
func (c *Client) getWithRetry(ctx context.Context, endpoint string) ([]byte, error) {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return nil, fmt.Errorf("status %d after %d retries", resp.StatusCode, maxRetries)
			}
			slog.Warn("stooq retrying", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return body, nil
	}
	return nil, fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
