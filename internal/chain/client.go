package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const timestampCacheSize = 100_000

// Client is the read-only view of the chain used by the log runner.
type Client struct {
	rpc *rpc.Client
	eth *ethclient.Client

	chainMu sync.Mutex
	chainID *big.Int

	tsMu    sync.Mutex
	tsCache map[uint64]uint64
	tsOrder []uint64
}

func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	return &Client{
		rpc:     rpcClient,
		eth:     ethclient.NewClient(rpcClient),
		tsCache: make(map[uint64]uint64),
	}, nil
}

func (c *Client) Close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
}

// GetChainID returns the chain id, asking the node only once.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	c.chainMu.Lock()
	defer c.chainMu.Unlock()

	if c.chainID == nil {
		id, err := c.eth.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("chain id: %w", err)
		}
		c.chainID = id
	}
	return new(big.Int).Set(c.chainID), nil
}

func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	head, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}
	return head, nil
}

// BlockTimestamp returns a block's timestamp. The oldest cached entry is
// evicted once the cache is full.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.tsMu.Lock()
	ts, ok := c.tsCache[number]
	c.tsMu.Unlock()
	if ok {
		return ts, nil
	}

	header, err := c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, fmt.Errorf("header %d: %w", number, err)
	}

	c.tsMu.Lock()
	defer c.tsMu.Unlock()
	if _, ok := c.tsCache[number]; !ok {
		if len(c.tsOrder) >= timestampCacheSize {
			delete(c.tsCache, c.tsOrder[0])
			c.tsOrder = c.tsOrder[1:]
		}
		c.tsOrder = append(c.tsOrder, number)
	}
	c.tsCache[number] = header.Time
	return header.Time, nil
}

// FilterLogs fetches logs emitted by addresses in [fromBlock, toBlock]. An
// empty topic0 list matches every event.
func (c *Client) FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error) {
	var topics [][]common.Hash
	if len(topic0) > 0 {
		topics = [][]common.Hash{topic0}
	}
	return c.eth.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: addresses,
		Topics:    topics,
	})
}
