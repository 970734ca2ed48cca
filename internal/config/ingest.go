package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// IngestConfig holds configuration for the ingest command.
type IngestConfig struct {
	In           string
	Driver       string
	PGDSN        string
	Schema       string
	BatchSize    int
	StateFile    string
	EnsureSchema bool
	LogLevel     string
	MetricsAddr  string
}

// LoadIngest merges config file, environment variables, and flags into IngestConfig.
func LoadIngest(cfgFile string, flags *pflag.FlagSet) (IngestConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"driver":     DriverPostgres,
		"batch-size": 500,
		"log-level":  "info",
	})
	if err != nil {
		return IngestConfig{}, err
	}

	cfg := IngestConfig{
		In:           v.GetString("in"),
		Driver:       strings.ToLower(strings.TrimSpace(v.GetString("driver"))),
		PGDSN:        v.GetString("pg-dsn"),
		Schema:       v.GetString("schema"),
		BatchSize:    v.GetInt("batch-size"),
		StateFile:    v.GetString("state-file"),
		EnsureSchema: v.GetBool("ensure-schema"),
		LogLevel:     v.GetString("log-level"),
		MetricsAddr:  v.GetString("metrics-addr"),
	}

	if cfg.In == "" {
		return IngestConfig{}, fmt.Errorf("input path is required")
	}
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.PGDSN == "" {
			return IngestConfig{}, fmt.Errorf("pg dsn is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return IngestConfig{}, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return cfg, nil
}

// QueryConfig holds configuration for commands that read or prepare the ledger.
type QueryConfig struct {
	PGDSN    string
	Schema   string
	LogLevel string
}

// LoadQuery merges config file, environment variables, and flags into QueryConfig.
func LoadQuery(cfgFile string, flags *pflag.FlagSet) (QueryConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"log-level": "info",
	})
	if err != nil {
		return QueryConfig{}, err
	}

	return QueryConfig{
		PGDSN:    v.GetString("pg-dsn"),
		Schema:   v.GetString("schema"),
		LogLevel: v.GetString("log-level"),
	}, nil
}
