package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/tacticalbt/config"
	"github.com/alejandrodnm/tacticalbt/internal/adapters/stooq"
)

// runFetch descarga las series diarias pedidas al directorio de datos
// local. Los símbolos llevan sufijo de mercado al estilo Stooq
// ("aapl.us"); el fichero local queda como AAPL.csv.
func runFetch(ctx context.Context, cfg *config.Config, symbols []string) {
	slog.Info("=== FETCH MODE: downloading daily series ===",
		"symbols", len(symbols), "dir", cfg.Data.Dir)

	client := stooq.NewClient(cfg.Data.StooqBase)

	failed := 0
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			slog.Warn("fetch aborted", "err", err)
			os.Exit(1)
		}
		if err := client.Download(ctx, symbol, cfg.Data.Dir); err != nil {
			slog.Error("download failed", "symbol", symbol, "err", err)
			failed++
		}
	}

	slog.Info("fetch complete", "requested", len(symbols), "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
