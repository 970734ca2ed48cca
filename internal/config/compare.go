package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// ErrMissingDatabaseURL is returned when either comparison database is unset.
var ErrMissingDatabaseURL = errors.New("missing database url")

const (
	DefaultNetworkSchema = "sepolia"
	DefaultOldSchema     = "public"
	DefaultExamples      = 5
)

// CompareConfig holds configuration for the compare command.
type CompareConfig struct {
	OldDatabaseURL string
	NewDatabaseURL string
	NetworkSchema  string
	OldSchema      string
	Tables         []string
	Examples       int
	LogLevel       string
}

// LoadCompare reads the comparison settings. Besides the INDEXER_* variables,
// the plain OLD_DATABASE_URL, NEW_DATABASE_URL (or DATABASE_URL),
// NETWORK_SCHEMA and OLD_SCHEMA variables are honored.
func LoadCompare(cfgFile string, flags *pflag.FlagSet) (CompareConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"network-schema": DefaultNetworkSchema,
		"old-schema":     DefaultOldSchema,
		"examples":       DefaultExamples,
		"log-level":      "info",
	})
	if err != nil {
		return CompareConfig{}, err
	}

	bindings := map[string][]string{
		"old-database-url": {"OLD_DATABASE_URL", envPrefix + "_OLD_DATABASE_URL"},
		"new-database-url": {"NEW_DATABASE_URL", "DATABASE_URL", envPrefix + "_NEW_DATABASE_URL"},
		"network-schema":   {"NETWORK_SCHEMA", envPrefix + "_NETWORK_SCHEMA"},
		"old-schema":       {"OLD_SCHEMA", envPrefix + "_OLD_SCHEMA"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return CompareConfig{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg := CompareConfig{
		OldDatabaseURL: strings.TrimSpace(v.GetString("old-database-url")),
		NewDatabaseURL: strings.TrimSpace(v.GetString("new-database-url")),
		NetworkSchema:  strings.TrimSpace(v.GetString("network-schema")),
		OldSchema:      strings.TrimSpace(v.GetString("old-schema")),
		Tables:         stringList(v, "tables"),
		Examples:       v.GetInt("examples"),
		LogLevel:       v.GetString("log-level"),
	}

	if cfg.OldDatabaseURL == "" {
		return cfg, fmt.Errorf("%w: set OLD_DATABASE_URL", ErrMissingDatabaseURL)
	}
	if cfg.NewDatabaseURL == "" {
		return cfg, fmt.Errorf("%w: set NEW_DATABASE_URL or DATABASE_URL", ErrMissingDatabaseURL)
	}
	if cfg.NetworkSchema == "" {
		cfg.NetworkSchema = DefaultNetworkSchema
	}
	if cfg.OldSchema == "" {
		cfg.OldSchema = DefaultOldSchema
	}
	if cfg.Examples < 0 {
		cfg.Examples = DefaultExamples
	}
	return cfg, nil
}
