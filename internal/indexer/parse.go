package indexer

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseAddresses converts contract addresses, dropping blanks and repeats.
func ParseAddresses(inputs []string) ([]common.Address, error) {
	seen := make(map[common.Address]struct{}, len(inputs))
	addresses := make([]common.Address, 0, len(inputs))
	for _, input := range trimmed(inputs) {
		if !common.IsHexAddress(input) {
			return nil, fmt.Errorf("invalid address: %s", input)
		}
		addr := common.HexToAddress(input)
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

// ParseTopic0 converts 32-byte topic hashes, dropping blanks and repeats.
func ParseTopic0(inputs []string) ([]common.Hash, error) {
	seen := make(map[common.Hash]struct{}, len(inputs))
	topics := make([]common.Hash, 0, len(inputs))
	for _, input := range trimmed(inputs) {
		data, err := hexutil.Decode(input)
		if err != nil {
			return nil, fmt.Errorf("invalid topic0: %s", input)
		}
		if len(data) != common.HashLength {
			return nil, fmt.Errorf("invalid topic0 length: %s", input)
		}
		topic := common.BytesToHash(data)
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
	}
	return topics, nil
}

func trimmed(inputs []string) []string {
	out := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if input = strings.TrimSpace(input); input != "" {
			out = append(out, input)
		}
	}
	return out
}
