package storage

// sqlite.go — persistencia de runs y trades.
//
// Esquema:
//   - `runs`: una fila por simulación (resumen + curva no incluida).
//   - `trades`: una fila por posición cerrada, ligada a su run.
// Los runs antiguos se podan al arrancar para mantener la DB ligera.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/tacticalbt/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id           TEXT PRIMARY KEY,
    strategy         TEXT NOT NULL,
    symbols          TEXT NOT NULL,
    start_date       DATETIME,
    end_date         DATETIME,
    initial_cash     REAL NOT NULL,
    final_value      REAL NOT NULL,
    total_return_pct REAL NOT NULL DEFAULT 0,
    total_trades     INTEGER NOT NULL DEFAULT 0,
    open_positions   INTEGER NOT NULL DEFAULT 0,
    elapsed_ms       INTEGER NOT NULL DEFAULT 0,
    created_at       DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id      TEXT NOT NULL,
    symbol      TEXT NOT NULL,
    entry_date  DATETIME NOT NULL,
    exit_date   DATETIME NOT NULL,
    entry_price REAL NOT NULL,
    exit_price  REAL NOT NULL,
    shares      INTEGER NOT NULL,
    pnl         REAL NOT NULL,
    return_pct  REAL NOT NULL,
    exit_reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_run   ON trades(run_id);
`

// retentionRuns limita el histórico: runs de más de 90 días se podan.
const retentionRuns = 90 * 24 * time.Hour

// SQLiteStorage implementa ports.RunStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada,
// aplica el schema y poda runs antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persiste el resumen del run y todos sus trades en una transacción.
func (s *SQLiteStorage) SaveRun(ctx context.Context, result domain.RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
			(run_id, strategy, symbols, start_date, end_date, initial_cash,
			 final_value, total_return_pct, total_trades, open_positions,
			 elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.Strategy,
		strings.Join(result.Symbols, ","),
		result.Start.UTC(),
		result.End.UTC(),
		result.InitialCash,
		result.FinalValue,
		result.TotalReturnPct,
		len(result.Trades),
		len(result.OpenPositions),
		result.Elapsed.Milliseconds(),
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run %s: %w", result.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
			(run_id, symbol, entry_date, exit_date, entry_price, exit_price,
			 shares, pnl, return_pct, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare: %w", err)
	}
	defer stmt.Close()

	for _, t := range result.Trades {
		if _, err := stmt.ExecContext(ctx,
			result.RunID, t.Symbol,
			t.EntryDate.UTC(), t.ExitDate.UTC(),
			t.EntryPrice, t.ExitPrice, t.Shares,
			t.PnL, t.ReturnPct, t.ExitReason,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert trade %s: %w", t.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// GetRuns devuelve los últimos runs, el más reciente primero.
func (s *SQLiteStorage) GetRuns(ctx context.Context, limit int) ([]domain.RunResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, strategy, symbols, start_date, end_date, initial_cash,
		       final_value, total_return_pct, elapsed_ms
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunResult
	for rows.Next() {
		var r domain.RunResult
		var symbols string
		var elapsedMS int64
		if err := rows.Scan(
			&r.RunID, &r.Strategy, &symbols, &r.Start, &r.End,
			&r.InitialCash, &r.FinalValue, &r.TotalReturnPct, &elapsedMS,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: scan row: %w", err)
		}
		if symbols != "" {
			r.Symbols = strings.Split(symbols, ",")
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetTrades devuelve los trades de un run en orden de cierre.
func (s *SQLiteStorage) GetTrades(ctx context.Context, runID string) ([]domain.TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, entry_date, exit_date, entry_price, exit_price,
		       shares, pnl, return_pct, exit_reason
		FROM trades
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrades: query: %w", err)
	}
	defer rows.Close()

	var trades []domain.TradeRecord
	for rows.Next() {
		var t domain.TradeRecord
		if err := rows.Scan(
			&t.Symbol, &t.EntryDate, &t.ExitDate, &t.EntryPrice, &t.ExitPrice,
			&t.Shares, &t.PnL, &t.ReturnPct, &t.ExitReason,
		); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: scan row: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld elimina runs (y sus trades) más antiguos que la retención.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns)
	s.db.ExecContext(ctx, `DELETE FROM trades WHERE run_id IN (SELECT run_id FROM runs WHERE created_at < ?)`, cutoff)
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
}
