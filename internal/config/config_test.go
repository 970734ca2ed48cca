package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/pflag"

	"stakeLedger/internal/model"
)

func compareFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("compare", pflag.ContinueOnError)
	flags.String("old-database-url", "", "")
	flags.String("new-database-url", "", "")
	flags.String("network-schema", DefaultNetworkSchema, "")
	flags.String("old-schema", DefaultOldSchema, "")
	flags.StringSlice("tables", nil, "")
	flags.Int("examples", DefaultExamples, "")
	return flags
}

func TestLoadCompareFromEnv(t *testing.T) {
	t.Setenv("OLD_DATABASE_URL", "postgres://old")
	t.Setenv("NEW_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "postgres://new")
	t.Setenv("NETWORK_SCHEMA", "mainnet")

	cfg, err := LoadCompare("", compareFlags())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OldDatabaseURL != "postgres://old" || cfg.NewDatabaseURL != "postgres://new" {
		t.Fatalf("unexpected urls: %+v", cfg)
	}
	if cfg.NetworkSchema != "mainnet" || cfg.OldSchema != DefaultOldSchema || cfg.Examples != 5 {
		t.Fatalf("unexpected settings: %+v", cfg)
	}
}

func TestLoadCompareNewURLWinsOverDatabaseURL(t *testing.T) {
	t.Setenv("OLD_DATABASE_URL", "postgres://old")
	t.Setenv("NEW_DATABASE_URL", "postgres://preferred")
	t.Setenv("DATABASE_URL", "postgres://fallback")
	t.Setenv("NETWORK_SCHEMA", "")

	cfg, err := LoadCompare("", compareFlags())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.NewDatabaseURL != "postgres://preferred" {
		t.Fatalf("expected NEW_DATABASE_URL, got %q", cfg.NewDatabaseURL)
	}
	if cfg.NetworkSchema != DefaultNetworkSchema {
		t.Fatalf("expected default schema, got %q", cfg.NetworkSchema)
	}
}

func TestLoadCompareMissingURL(t *testing.T) {
	t.Setenv("OLD_DATABASE_URL", "")
	t.Setenv("NEW_DATABASE_URL", "postgres://new")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadCompare("", compareFlags()); !errors.Is(err, ErrMissingDatabaseURL) {
		t.Fatalf("expected ErrMissingDatabaseURL, got %v", err)
	}

	t.Setenv("OLD_DATABASE_URL", "postgres://old")
	t.Setenv("NEW_DATABASE_URL", "")
	if _, err := LoadCompare("", compareFlags()); !errors.Is(err, ErrMissingDatabaseURL) {
		t.Fatalf("expected ErrMissingDatabaseURL, got %v", err)
	}
}

func TestLoadCompareFlagsOverrideEnv(t *testing.T) {
	t.Setenv("OLD_DATABASE_URL", "postgres://old")
	t.Setenv("NEW_DATABASE_URL", "postgres://new")
	t.Setenv("NETWORK_SCHEMA", "mainnet")

	flags := compareFlags()
	if err := flags.Parse([]string{"--network-schema=testnet", "--tables=slashed,deposit"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := LoadCompare("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.NetworkSchema != "testnet" {
		t.Fatalf("expected flag to win, got %q", cfg.NetworkSchema)
	}
	if !reflect.DeepEqual(cfg.Tables, []string{"slashed", "deposit"}) {
		t.Fatalf("unexpected tables: %v", cfg.Tables)
	}
}

func TestLoadDecodeFactoryMapFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "decode.yaml")
	content := []byte(`in: ./data/logs.jsonl
factory-map:
  "0x1111111111111111111111111111111111111111": MATP
  "0x2222222222222222222222222222222222222222": NCATP
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadDecode(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]model.PositionType{
		"0x1111111111111111111111111111111111111111": model.PositionMATP,
		"0x2222222222222222222222222222222222222222": model.PositionNCATP,
	}
	if !reflect.DeepEqual(cfg.Factories, want) {
		t.Fatalf("factories mismatch: %v", cfg.Factories)
	}
	if cfg.Sink != "jsonl" || cfg.Errors == "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseFactoryMapRejectsUnknownType(t *testing.T) {
	_, err := ParseFactoryMap(map[string]string{"0x1111111111111111111111111111111111111111": "VATP"})
	if err == nil {
		t.Fatalf("expected invalid position type error")
	}
	_, err = ParseFactoryMap(map[string]string{"0x11": "MATP"})
	if err == nil {
		t.Fatalf("expected invalid address error")
	}
}

func TestLoadIngestValidation(t *testing.T) {
	flags := pflag.NewFlagSet("ingest", pflag.ContinueOnError)
	flags.String("in", "", "")
	flags.String("driver", DriverPostgres, "")
	flags.String("pg-dsn", "", "")
	if err := flags.Parse([]string{"--in=events.jsonl"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	t.Setenv("INDEXER_PG_DSN", "")
	if _, err := LoadIngest("", flags); err == nil {
		t.Fatalf("expected missing dsn error")
	}

	if err := flags.Set("driver", DriverMemory); err != nil {
		t.Fatalf("set driver: %v", err)
	}
	cfg, err := LoadIngest("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Driver != DriverMemory || cfg.BatchSize != 500 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
