package model

import (
	"fmt"
	"strings"
)

// LogRecord is the normalized representation of a chain log for storage.
type LogRecord struct {
	ChainID     uint64   `json:"chain_id"`
	BlockNumber uint64   `json:"block_number"`
	BlockHash   string   `json:"block_hash"`
	TxHash      string   `json:"tx_hash"`
	TxIndex     uint64   `json:"tx_index"`
	LogIndex    uint32   `json:"log_index"`
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	Removed     bool     `json:"removed"`
	Timestamp   uint64   `json:"timestamp"`
	IngestedAt  string   `json:"ingested_at"`
}

// Key returns the (txHash, logIndex) identity of the log.
func (lr LogRecord) Key() LogKey {
	return LogKey{TxHash: lr.TxHash, LogIndex: lr.LogIndex}
}

// Provenance returns the provenance quadruple carried by every event decoded from this log.
func (lr LogRecord) Provenance() Provenance {
	return Provenance{
		BlockNumber: lr.BlockNumber,
		TxHash:      lr.TxHash,
		LogIndex:    lr.LogIndex,
		Timestamp:   lr.Timestamp,
	}
}

// LogKey identifies a single blockchain log. Tx hashes compare case-insensitively.
type LogKey struct {
	TxHash   string `json:"tx_hash"`
	LogIndex uint32 `json:"log_index"`
}

func (k LogKey) String() string {
	return fmt.Sprintf("%s:%d", strings.ToLower(strings.TrimSpace(k.TxHash)), k.LogIndex)
}

// EventID builds the denormalized primary key used by log-keyed tables.
func EventID(txHash string, logIndex uint32) string {
	return fmt.Sprintf("%s-%d", strings.ToLower(txHash), logIndex)
}
