package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"stakeLedger/internal/model"
)

// DecodeConfig holds configuration for the decode command.
type DecodeConfig struct {
	In           string
	Sink         string
	Out          string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaTLS     bool
	Errors       string
	Factories    map[string]model.PositionType
	LogLevel     string
	MetricsAddr  string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"sink":        "jsonl",
		"out":         "./data/events.jsonl",
		"errors":      "./data/decode_errors.jsonl",
		"kafka-topic": "stake-ledger-events",
		"log-level":   "info",
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	factories, err := ParseFactoryMap(keyValues(v, "factory-map"))
	if err != nil {
		return DecodeConfig{}, err
	}

	cfg := DecodeConfig{
		In:           v.GetString("in"),
		Sink:         strings.ToLower(strings.TrimSpace(v.GetString("sink"))),
		Out:          v.GetString("out"),
		KafkaBrokers: stringList(v, "kafka-brokers"),
		KafkaTopic:   v.GetString("kafka-topic"),
		KafkaTLS:     v.GetBool("kafka-tls"),
		Errors:       v.GetString("errors"),
		Factories:    factories,
		LogLevel:     v.GetString("log-level"),
		MetricsAddr:  v.GetString("metrics-addr"),
	}

	if cfg.In == "" {
		return DecodeConfig{}, fmt.Errorf("input path is required")
	}
	if cfg.Errors == "" {
		return DecodeConfig{}, fmt.Errorf("errors path is required")
	}
	return cfg, nil
}

// ParseFactoryMap validates factory address -> position type pairs.
func ParseFactoryMap(raw map[string]string) (map[string]model.PositionType, error) {
	out := make(map[string]model.PositionType, len(raw))
	for addr, typ := range raw {
		addr = strings.TrimSpace(addr)
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid factory address: %s", addr)
		}
		positionType, err := model.ParsePositionType(strings.TrimSpace(typ))
		if err != nil {
			return nil, fmt.Errorf("factory %s: %w", addr, err)
		}
		out[strings.ToLower(addr)] = positionType
	}
	return out, nil
}
