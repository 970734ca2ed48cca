package model

// Provenance is carried by every ledger record. Sequence is assigned by the
// ledger store at ingestion and is zero until the record is appended.
type Provenance struct {
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint32 `json:"log_index"`
	Timestamp   uint64 `json:"timestamp"`
	Sequence    uint64 `json:"sequence,omitempty"`
}

// Meta returns a pointer to the provenance so stores can stamp the sequence.
func (p *Provenance) Meta() *Provenance {
	return p
}

// LogKey returns the (txHash, logIndex) identity.
func (p Provenance) LogKey() LogKey {
	return LogKey{TxHash: p.TxHash, LogIndex: p.LogIndex}
}

func (p *Provenance) values() []any {
	return []any{int64(p.BlockNumber), p.TxHash, int32(p.LogIndex), int64(p.Timestamp), int64(p.Sequence)}
}

func (p *Provenance) fields() []any {
	return []any{&p.BlockNumber, &p.TxHash, &p.LogIndex, &p.Timestamp, &p.Sequence}
}

// Before reports whether a sorts before b in canonical (blockNumber, logIndex) order.
func Before(a, b *Provenance) bool {
	if a.BlockNumber != b.BlockNumber {
		return a.BlockNumber < b.BlockNumber
	}
	return a.LogIndex < b.LogIndex
}

var provenanceColumns = []Column{
	{Name: "block_number", Type: TypeBigint},
	{Name: "tx_hash", Type: TypeText},
	{Name: "log_index", Type: TypeInteger},
	{Name: "timestamp", Type: TypeBigint},
	{Name: "sequence", Type: TypeBigint},
}
