package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "INDEXER"

// Config holds settings for the run command.
type Config struct {
	RPCURL            string
	FromBlock         uint64
	ToBlock           uint64
	Confirmations     uint64
	Addresses         []string
	Topic0            []string
	BatchSize         uint64
	Out               string
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	LogLevel          string
	MetricsAddr       string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"batch-size":         uint64(2000),
		"out":                "./data/logs.jsonl",
		"checkpoint":         "./data/checkpoint.json",
		"checkpoint-enabled": true,
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
		"log-level":          "info",
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RPCURL:            v.GetString("rpc"),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		Confirmations:     v.GetUint64("confirmations"),
		Addresses:         stringList(v, "address"),
		Topic0:            stringList(v, "topic0"),
		BatchSize:         v.GetUint64("batch-size"),
		Out:               v.GetString("out"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		LogLevel:          v.GetString("log-level"),
		MetricsAddr:       v.GetString("metrics-addr"),
	}

	if cfg.RPCURL == "" {
		return Config{}, fmt.Errorf("rpc url is required")
	}
	if cfg.ToBlock != 0 && cfg.ToBlock < cfg.FromBlock {
		return Config{}, fmt.Errorf("to block %d is before from block %d", cfg.ToBlock, cfg.FromBlock)
	}
	return cfg, nil
}

// newViper builds a viper instance with the shared precedence: flags, then
// INDEXER_* environment variables, then the config file, then defaults.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

// stringList reads a list given as a config-file sequence, a slice flag or a
// comma-separated string. Blank items are dropped.
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	switch typed := v.Get(key).(type) {
	case string:
		raw = strings.Split(typed, ",")
	case []string:
		raw = typed
	case []any:
		for _, item := range typed {
			raw = append(raw, fmt.Sprint(item))
		}
	}

	var out []string
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// keyValues reads a mapping given as a config-file table or as
// "k1=v1,k2=v2". Pairs with an empty side are dropped.
func keyValues(v *viper.Viper, key string) map[string]string {
	out := make(map[string]string)
	add := func(k, val string) {
		k, val = strings.TrimSpace(k), strings.TrimSpace(val)
		if k != "" && val != "" {
			out[k] = val
		}
	}

	switch typed := v.Get(key).(type) {
	case string:
		for _, pair := range strings.Split(typed, ",") {
			if k, val, ok := strings.Cut(pair, "="); ok {
				add(k, val)
			}
		}
	case map[string]string:
		for k, val := range typed {
			add(k, val)
		}
	case map[string]any:
		for k, val := range typed {
			add(k, fmt.Sprint(val))
		}
	}
	return out
}
