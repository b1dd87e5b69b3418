package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del backtester.
type Config struct {
	Backtest BacktestConfig `yaml:"backtest"`
	Hybrid   HybridConfig   `yaml:"hybrid"`
	RSIGap   RSIGapConfig   `yaml:"rsi_gap"`
	Data     DataConfig     `yaml:"data"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// BacktestConfig controla la simulación.
type BacktestConfig struct {
	Strategy      string  `yaml:"strategy"`       // hybrid | rsigap
	InitialCash   float64 `yaml:"initial_cash"`
	CommissionBps float64 `yaml:"commission_bps"` // comisión por ejecución, en basis points
	Start         string  `yaml:"start"`          // YYYY-MM-DD, vacío = sin límite
	End           string  `yaml:"end"`
	Workers       int     `yaml:"workers"`        // workers del sweep paralelo
}

// HybridConfig son los parámetros de la estrategia trend/momentum.
type HybridConfig struct {
	TrendPeriod    int     `yaml:"trend_period"`
	MomentumPeriod int     `yaml:"momentum_period"`
	Volatility     int     `yaml:"volatility_lookback"`
	RebalanceDays  int     `yaml:"rebalance_days"`
	EntryThreshold float64 `yaml:"entry_threshold"`
	ExitThreshold  float64 `yaml:"exit_threshold"`
	PositionSize   float64 `yaml:"position_size"`
	CashReserve    float64 `yaml:"cash_reserve"`
	MaxPositions   int     `yaml:"max_positions"`
}

// RSIGapConfig son los parámetros de la estrategia de gaps con RSI.
type RSIGapConfig struct {
	RSIPeriod    int     `yaml:"rsi_period"`
	MaxHoldDays  int     `yaml:"max_hold_days"`
	ProfitTarget float64 `yaml:"profit_target"`
	TrailingStop float64 `yaml:"trailing_stop"`
	MaxGap       float64 `yaml:"max_gap"`
	RSIMin       float64 `yaml:"rsi_min"`
	RSIMax       float64 `yaml:"rsi_max"`
}

// DataConfig controla de dónde salen las series OHLCV.
type DataConfig struct {
	Dir       string `yaml:"dir"`        // directorio de CSVs locales
	StooqBase string `yaml:"stooq_base"` // base URL para -fetch (vacío = producción)
	OutputDir string `yaml:"output_dir"` // destino de los exports CSV
}

// StorageConfig controla dónde se persisten los runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Las variables de entorno sobreescriben el YAML para las keys
// que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// StartDate devuelve el inicio del rango como time.Time (cero = sin límite).
func (c *Config) StartDate() (time.Time, error) {
	return parseDate(c.Backtest.Start, "backtest.start")
}

// EndDate devuelve el final del rango como time.Time (cero = sin límite).
func (c *Config) EndDate() (time.Time, error) {
	return parseDate(c.Backtest.End, "backtest.end")
}

func parseDate(s, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: %s: bad date %q: %w", field, s, err)
	}
	return t, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Backtest.Strategy == "" {
		cfg.Backtest.Strategy = "hybrid"
	}
	if cfg.Backtest.InitialCash <= 0 {
		cfg.Backtest.InitialCash = 100000
	}
	if cfg.Backtest.Workers <= 0 {
		cfg.Backtest.Workers = 20
	}

	if cfg.Hybrid.TrendPeriod <= 0 {
		cfg.Hybrid.TrendPeriod = 200
	}
	if cfg.Hybrid.MomentumPeriod <= 0 {
		cfg.Hybrid.MomentumPeriod = 60
	}
	if cfg.Hybrid.Volatility <= 0 {
		cfg.Hybrid.Volatility = 60
	}
	if cfg.Hybrid.RebalanceDays <= 0 {
		cfg.Hybrid.RebalanceDays = 20
	}
	if cfg.Hybrid.EntryThreshold <= 0 {
		cfg.Hybrid.EntryThreshold = 1.01
	}
	if cfg.Hybrid.ExitThreshold <= 0 {
		cfg.Hybrid.ExitThreshold = 0.99
	}
	if cfg.Hybrid.PositionSize <= 0 {
		cfg.Hybrid.PositionSize = 0.95
	}
	if cfg.Hybrid.CashReserve <= 0 {
		cfg.Hybrid.CashReserve = 0.05
	}
	if cfg.Hybrid.MaxPositions <= 0 {
		cfg.Hybrid.MaxPositions = 20
	}

	if cfg.RSIGap.RSIPeriod <= 0 {
		cfg.RSIGap.RSIPeriod = 14
	}
	if cfg.RSIGap.MaxHoldDays <= 0 {
		cfg.RSIGap.MaxHoldDays = 15
	}
	if cfg.RSIGap.ProfitTarget <= 0 {
		cfg.RSIGap.ProfitTarget = 0.02
	}
	if cfg.RSIGap.TrailingStop <= 0 {
		cfg.RSIGap.TrailingStop = 0.015
	}
	if cfg.RSIGap.MaxGap <= 0 {
		cfg.RSIGap.MaxGap = 0.10
	}
	if cfg.RSIGap.RSIMin <= 0 {
		cfg.RSIGap.RSIMin = 15
	}
	if cfg.RSIGap.RSIMax <= 0 {
		cfg.RSIGap.RSIMax = 60
	}

	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "data/stocks"
	}
	if cfg.Data.OutputDir == "" {
		cfg.Data.OutputDir = "output"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "tacticalbt.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
