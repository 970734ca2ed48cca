package indexer

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"stakeLedger/internal/model"
)

// logRecord converts a chain log into its JSONL form. The emitter address is
// lower-cased; hashes from go-ethereum already are.
func logRecord(chainID uint64, log types.Log, timestamp uint64, ingestedAt time.Time) model.LogRecord {
	record := model.LogRecord{
		ChainID:     chainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash.Hex(),
		TxHash:      log.TxHash.Hex(),
		TxIndex:     uint64(log.TxIndex),
		LogIndex:    uint32(log.Index),
		Address:     strings.ToLower(log.Address.Hex()),
		Topics:      make([]string, len(log.Topics)),
		Data:        hexutil.Encode(log.Data),
		Removed:     log.Removed,
		Timestamp:   timestamp,
		IngestedAt:  ingestedAt.UTC().Format(time.RFC3339Nano),
	}
	for i, topic := range log.Topics {
		record.Topics[i] = topic.Hex()
	}
	return record
}
